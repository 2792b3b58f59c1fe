package port

import (
	"context"
	"time"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

// InvoiceRepository defines persistence operations for Invoice.
// Services are stored with their invoice and returned in their original order.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	Update(ctx context.Context, inv *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	// Search returns invoices matching filter, newest first
	Search(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, error)
	Count(ctx context.Context, filter entity.InvoiceFilter) (int, error)
}

// ProfileRepository stores the single company profile
type ProfileRepository interface {
	Get(ctx context.Context) (*entity.CompanyProfile, error)
	Save(ctx context.Context, profile *entity.CompanyProfile) error
}

// EmailJobRepository defines persistence operations for the email outbox
type EmailJobRepository interface {
	Create(ctx context.Context, job *entity.EmailJob) error
	GetByID(ctx context.Context, id string) (*entity.EmailJob, error)
	// GetDue returns pending jobs whose next attempt is at or before now, oldest first
	GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkRetry(ctx context.Context, id string, attempts int, lastError string, nextAttemptAt time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int, lastError string) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.EmailJob, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
