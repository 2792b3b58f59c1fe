package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/email"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/pkg/utils"
)

// EmailRequest asks for an invoice to be emailed.
// Empty fields default to the employee email and the catalog subject and body.
type EmailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Language string `json:"language"`
}

// EmailConfig configures the email service
type EmailConfig struct {
	MaxAttachmentBytes int
}

// EmailService queues rendered invoices for delivery
type EmailService interface {
	Queue(ctx context.Context, invoiceID string, req EmailRequest) (*entity.EmailJob, error)
	History(ctx context.Context, invoiceID string) ([]*entity.EmailJob, error)
}

type emailServiceImpl struct {
	invoices  port.InvoiceRepository
	jobs      port.EmailJobRepository
	documents DocumentService
	cfg       EmailConfig
	logger    Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(
	invoices port.InvoiceRepository,
	jobs port.EmailJobRepository,
	documents DocumentService,
	cfg EmailConfig,
	logger Logger,
) EmailService {
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = email.DefaultMaxAttachmentBytes
	}
	return &emailServiceImpl{
		invoices:  invoices,
		jobs:      jobs,
		documents: documents,
		cfg:       cfg,
		logger:    logger,
	}
}

// Queue validates the recipient, renders the invoice with the shared assembler
// and stores an outbox job
func (s *emailServiceImpl) Queue(ctx context.Context, invoiceID string, req EmailRequest) (*entity.EmailJob, error) {
	lang := i18n.English
	if req.Language != "" {
		parsed, err := i18n.ParseLanguage(req.Language)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEmailRequest, err)
		}
		lang = parsed
	}

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		to = strings.TrimSpace(inv.EmployeeEmail)
	}
	if err := utils.ValidateEmail(to); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmailRequest, err)
	}

	doc, err := s.documents.Render(ctx, invoiceID, lang)
	if err != nil {
		return nil, err
	}

	if len(doc.Bytes) > s.cfg.MaxAttachmentBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d",
			email.ErrAttachmentTooLarge, len(doc.Bytes), s.cfg.MaxAttachmentBytes)
	}

	cat := i18n.CatalogFor(lang)
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = fmt.Sprintf(cat.EmailSubject, inv.InvoiceNumber)
	}
	body := req.Body
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf(cat.EmailBody, inv.InvoiceNumber)
	}

	job := &entity.EmailJob{
		InvoiceID:      invoiceID,
		Recipient:      to,
		Subject:        subject,
		Body:           body,
		AttachmentName: doc.Filename,
		Attachment:     doc.Bytes,
		Language:       string(lang),
		Status:         entity.EmailStatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.logger.Error("Failed to queue email", "invoice_id", invoiceID, "error", err)
		return nil, fmt.Errorf("failed to queue email: %w", err)
	}

	s.logger.Info("Invoice email queued",
		"invoice_id", invoiceID,
		"job_id", job.ID,
		"language", string(lang),
		"attachment_bytes", len(doc.Bytes))
	return job, nil
}

// History lists the email jobs of an invoice
func (s *emailServiceImpl) History(ctx context.Context, invoiceID string) ([]*entity.EmailJob, error) {
	jobs, err := s.jobs.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list email jobs: %w", err)
	}
	return jobs, nil
}
