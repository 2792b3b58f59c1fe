package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/domain/tax"
	"github.com/garyjia/invoice-studio/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// InvoiceSummary is an invoice with its computed totals
type InvoiceSummary struct {
	*entity.Invoice
	Totals tax.Breakdown `json:"totals"`
}

// InvoicePage is one page of search results
type InvoicePage struct {
	Items  []*InvoiceSummary `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// InvoiceService manages invoice records
type InvoiceService interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	Get(ctx context.Context, id string) (*entity.Invoice, error)
	Update(ctx context.Context, id string, inv *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter entity.InvoiceFilter) (*InvoicePage, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*InvoiceSummary, error)
	// Import creates all invoices in one transaction
	Import(ctx context.Context, invoices []*entity.Invoice) error
}

type invoiceServiceImpl struct {
	repo      port.InvoiceRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	repo port.InvoiceRepository,
	txManager port.TransactionManager,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

// Create validates and stores a new invoice with fresh ids
func (s *invoiceServiceImpl) Create(ctx context.Context, inv *entity.Invoice) error {
	prepareInvoice(inv)
	if err := ValidateInvoice(inv); err != nil {
		return err
	}

	inv.ID = uuid.New().String()
	for i := range inv.Services {
		inv.Services[i].ID = uuid.New().String()
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		s.logger.Error("Failed to create invoice", "invoice_number", inv.InvoiceNumber, "error", err)
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("Invoice created",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"services", len(inv.Services))
	return nil
}

// Get returns the invoice or ErrInvoiceNotFound
func (s *invoiceServiceImpl) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// Update replaces an existing invoice, keeping its id and creation time
func (s *invoiceServiceImpl) Update(ctx context.Context, id string, inv *entity.Invoice) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	prepareInvoice(inv)
	if err := ValidateInvoice(inv); err != nil {
		return err
	}

	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	for i := range inv.Services {
		if inv.Services[i].ID == "" {
			inv.Services[i].ID = uuid.New().String()
		}
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		s.logger.Error("Failed to update invoice", "invoice_id", id, "error", err)
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.Info("Invoice updated", "invoice_id", id, "invoice_number", inv.InvoiceNumber)
	return nil
}

// Delete removes an invoice and its queued emails
func (s *invoiceServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete invoice", "invoice_id", id, "error", err)
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.logger.Info("Invoice deleted", "invoice_id", id)
	return nil
}

// Search returns one page of matching invoices with totals
func (s *invoiceServiceImpl) Search(ctx context.Context, filter entity.InvoiceFilter) (*InvoicePage, error) {
	if !filter.Country.IsValid() {
		return nil, fmt.Errorf("%w: unknown country %q", ErrInvalidInvoice, filter.Country)
	}

	invoices, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search invoices: %w", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	return &InvoicePage{
		Items:  summarize(invoices),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// ListByEmployee returns every invoice of one employee, newest first
func (s *invoiceServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]*InvoiceSummary, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrInvalidInvoice)
	}

	filter := entity.InvoiceFilter{EmployeeID: employeeID}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	filter.Limit = total

	invoices, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee invoices: %w", err)
	}
	return summarize(invoices), nil
}

// Import validates every invoice first, then stores them together
func (s *invoiceServiceImpl) Import(ctx context.Context, invoices []*entity.Invoice) error {
	for i, inv := range invoices {
		prepareInvoice(inv)
		if err := ValidateInvoice(inv); err != nil {
			return fmt.Errorf("invoice %d (%s): %w", i+1, inv.InvoiceNumber, err)
		}
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, inv := range invoices {
			inv.ID = uuid.New().String()
			for i := range inv.Services {
				inv.Services[i].ID = uuid.New().String()
			}
			if err := s.repo.Create(ctx, inv); err != nil {
				return fmt.Errorf("failed to import invoice %s: %w", inv.InvoiceNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Invoice import failed", "count", len(invoices), "error", err)
		return err
	}

	s.logger.Info("Invoices imported", "count", len(invoices))
	return nil
}

// ValidateInvoice checks the fields an invoice needs to be stored and rendered
func ValidateInvoice(inv *entity.Invoice) error {
	if inv == nil {
		return fmt.Errorf("%w: invoice is required", ErrInvalidInvoice)
	}

	checks := []error{
		utils.ValidateRequired("invoiceNumber", inv.InvoiceNumber),
		utils.ValidateRequired("employeeName", inv.EmployeeName),
		utils.ValidateISODate("date", inv.Date),
		utils.ValidateNonNegative("taxRate", inv.TaxRate),
	}
	if inv.DueDate != "" {
		checks = append(checks, utils.ValidateISODate("dueDate", inv.DueDate))
	}
	if inv.EmployeeEmail != "" {
		checks = append(checks, utils.ValidateEmail(inv.EmployeeEmail))
	}
	if !inv.Country.IsValid() {
		checks = append(checks, fmt.Errorf("unknown country %q", inv.Country))
	}
	for i, item := range inv.Services {
		checks = append(checks,
			utils.ValidateNonNegative(fmt.Sprintf("services[%d].hours", i), item.Hours),
			utils.ValidateNonNegative(fmt.Sprintf("services[%d].rate", i), item.Rate),
		)
	}

	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInvoice, err)
		}
	}
	return nil
}

// prepareInvoice trims input and applies the india default
func prepareInvoice(inv *entity.Invoice) {
	if inv == nil {
		return
	}
	inv.InvoiceNumber = strings.TrimSpace(inv.InvoiceNumber)
	inv.EmployeeName = utils.SanitizeString(strings.TrimSpace(inv.EmployeeName))
	inv.EmployeeEmail = strings.TrimSpace(inv.EmployeeEmail)
	inv.Date = strings.TrimSpace(inv.Date)
	inv.DueDate = strings.TrimSpace(inv.DueDate)
	if inv.Country.IsValid() {
		inv.Country = inv.Country.Normalize()
	}
	if inv.Services == nil {
		inv.Services = []entity.ServiceItem{}
	}
	for i := range inv.Services {
		inv.Services[i].Description = utils.SanitizeString(inv.Services[i].Description)
	}
}

func summarize(invoices []*entity.Invoice) []*InvoiceSummary {
	out := make([]*InvoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, &InvoiceSummary{Invoice: inv, Totals: tax.ForInvoice(inv)})
	}
	return out
}
