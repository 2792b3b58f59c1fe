package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/email"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/internal/render"
)

func newEmailFixture(cfg EmailConfig) (EmailService, *mockEmailJobRepo, *mockRenderer) {
	inv := validInvoice()
	inv.ID = "inv-1"
	inv.InvoiceNumber = "INV-001"
	invoices := newMockInvoiceRepo(inv)
	renderer := &mockRenderer{}
	profiles := NewProfileService(&mockProfileRepo{}, newMockStorage(), ProfileConfig{}, nopLogger{})
	docs := NewDocumentService(invoices, profiles, renderer, &mockPreviewer{}, nopLogger{})
	jobs := &mockEmailJobRepo{}
	return NewEmailService(invoices, jobs, docs, cfg, nopLogger{}), jobs, renderer
}

func TestEmailService_Queue_Defaults(t *testing.T) {
	svc, jobs, _ := newEmailFixture(EmailConfig{})

	job, err := svc.Queue(context.Background(), "inv-1", EmailRequest{})
	require.NoError(t, err)

	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "asha@example.com", job.Recipient)
	assert.Equal(t, "Invoice INV-001", job.Subject)
	assert.Equal(t, "Please find attached invoice INV-001.", job.Body)
	assert.Equal(t, "invoice_INV-001.pdf", job.AttachmentName)
	assert.Equal(t, []byte("%PDF-1.3 INV-001"), job.Attachment)
	assert.Equal(t, entity.EmailStatusPending, job.Status)
	assert.Len(t, jobs.created, 1)
}

func TestEmailService_Queue_Japanese(t *testing.T) {
	svc, _, _ := newEmailFixture(EmailConfig{})

	job, err := svc.Queue(context.Background(), "inv-1", EmailRequest{
		To:       "keiri@example.jp",
		Language: "ja-JP",
	})
	require.NoError(t, err)

	assert.Equal(t, "keiri@example.jp", job.Recipient)
	assert.Equal(t, "請求書 INV-001", job.Subject)
	assert.Equal(t, "請求書_INV-001.pdf", job.AttachmentName)
	assert.Equal(t, string(i18n.Japanese), job.Language)
}

func TestEmailService_Queue_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		invoiceID string
		req       EmailRequest
		cfg       EmailConfig
		wantErr   error
	}{
		{name: "unknown invoice", invoiceID: "missing", wantErr: ErrInvoiceNotFound},
		{name: "bad address", invoiceID: "inv-1", req: EmailRequest{To: "not-an-address"}, wantErr: ErrInvalidEmailRequest},
		{name: "bad language", invoiceID: "inv-1", req: EmailRequest{Language: "fr"}, wantErr: ErrInvalidEmailRequest},
		{name: "attachment too large", invoiceID: "inv-1", cfg: EmailConfig{MaxAttachmentBytes: 4}, wantErr: email.ErrAttachmentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, jobs, _ := newEmailFixture(tt.cfg)

			_, err := svc.Queue(context.Background(), tt.invoiceID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, jobs.created)
		})
	}
}

func TestEmailService_Queue_SameBytesAsDownload(t *testing.T) {
	svc, jobs, renderer := newEmailFixture(EmailConfig{})
	renderer.renderFunc = func(ctx context.Context, inv *entity.Invoice, lang i18n.Language, profile *entity.CompanyProfile) (*render.Document, error) {
		return &render.Document{Bytes: bytes.Repeat([]byte{7}, 10), Filename: render.Filename(inv.InvoiceNumber, lang)}, nil
	}

	_, err := svc.Queue(context.Background(), "inv-1", EmailRequest{})
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{7}, 10), jobs.created[0].Attachment)

	history, err := svc.History(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
