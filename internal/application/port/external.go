package port

import (
	"context"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/internal/render"
)

// DocumentRenderer produces invoice PDFs. Download and email share it so both
// paths receive identical bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, inv *entity.Invoice, lang i18n.Language, profile *entity.CompanyProfile) (*render.Document, error)
}

// Previewer converts the first page of a PDF to a PNG image
type Previewer interface {
	FirstPage(pdf []byte) ([]byte, error)
}

// OutgoingEmail is one message with a single attachment
type OutgoingEmail struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
	ContentType    string
}

// Mailer delivers emails
type Mailer interface {
	Send(ctx context.Context, msg OutgoingEmail) error
}
