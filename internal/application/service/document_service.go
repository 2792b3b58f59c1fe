package service

import (
	"context"
	"fmt"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/internal/render"
)

// DocumentService renders stored invoices
type DocumentService interface {
	Render(ctx context.Context, invoiceID string, lang i18n.Language) (*render.Document, error)
	// Preview renders the invoice and returns page one as PNG
	Preview(ctx context.Context, invoiceID string, lang i18n.Language) ([]byte, error)
}

type documentServiceImpl struct {
	invoices  port.InvoiceRepository
	profiles  ProfileService
	renderer  port.DocumentRenderer
	previewer port.Previewer
	logger    Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	invoices port.InvoiceRepository,
	profiles ProfileService,
	renderer port.DocumentRenderer,
	previewer port.Previewer,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		invoices:  invoices,
		profiles:  profiles,
		renderer:  renderer,
		previewer: previewer,
		logger:    logger,
	}
}

// Render loads the invoice and current profile and builds the PDF
func (s *documentServiceImpl) Render(ctx context.Context, invoiceID string, lang i18n.Language) (*render.Document, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}

	profile, err := s.profiles.Resolve(ctx, nil)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.Render(ctx, inv, lang, profile)
	if err != nil {
		s.logger.Error("Failed to render invoice",
			"invoice_id", invoiceID,
			"language", string(lang),
			"error", err)
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	if n := doc.Fallbacks(); n > 0 {
		s.logger.Info("Invoice rendered with text fallbacks",
			"invoice_id", invoiceID,
			"fallbacks", n)
	}
	return doc, nil
}

// Preview renders the invoice and converts its first page
func (s *documentServiceImpl) Preview(ctx context.Context, invoiceID string, lang i18n.Language) ([]byte, error) {
	doc, err := s.Render(ctx, invoiceID, lang)
	if err != nil {
		return nil, err
	}

	img, err := s.previewer.FirstPage(doc.Bytes)
	if err != nil {
		s.logger.Error("Failed to build preview", "invoice_id", invoiceID, "error", err)
		return nil, fmt.Errorf("failed to build preview: %w", err)
	}
	return img, nil
}
