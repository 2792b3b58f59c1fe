package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/infrastructure/persistence/sqlite"
)

// DefaultSearchLimit caps searches that do not set a limit
const DefaultSearchLimit = 50

var invoiceColumns = []string{
	"id", "invoice_number", "invoice_date", "due_date", "employee_name",
	"employee_id", "employee_email", "employee_address", "employee_mobile",
	"tax_rate", "country", "created_at", "updated_at",
}

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	tx     *sqlite.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		tx:     sqlite.NewDB(db, logger),
		logger: logger,
	}
}

// Create inserts the invoice and its service lines in one transaction
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := dbTime(time.Now())
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	inv.Country = inv.Country.Normalize()

	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO invoices (
				id, invoice_number, invoice_date, due_date, employee_name,
				employee_id, employee_email, employee_address, employee_mobile,
				tax_rate, country, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := r.getExecutor(ctx).ExecContext(ctx, query,
			inv.ID,
			inv.InvoiceNumber,
			inv.Date,
			inv.DueDate,
			inv.EmployeeName,
			inv.EmployeeID,
			inv.EmployeeEmail,
			inv.EmployeeAddress,
			inv.EmployeeMobile,
			inv.TaxRate,
			string(inv.Country),
			dbTime(inv.CreatedAt),
			inv.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create invoice",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err))
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		return r.insertServices(ctx, inv)
	})
}

// GetByID retrieves an invoice with its services
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query, args, err := sq.Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	inv, err := scanInvoice(r.getExecutor(ctx).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.attachServices(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// Update replaces the invoice fields and its full service list
func (r *InvoiceRepository) Update(ctx context.Context, inv *entity.Invoice) error {
	inv.UpdatedAt = dbTime(time.Now())
	inv.Country = inv.Country.Normalize()

	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		query := `
			UPDATE invoices
			SET invoice_number = ?, invoice_date = ?, due_date = ?, employee_name = ?,
				employee_id = ?, employee_email = ?, employee_address = ?, employee_mobile = ?,
				tax_rate = ?, country = ?, updated_at = ?
			WHERE id = ?
		`

		_, err := r.getExecutor(ctx).ExecContext(ctx, query,
			inv.InvoiceNumber,
			inv.Date,
			inv.DueDate,
			inv.EmployeeName,
			inv.EmployeeID,
			inv.EmployeeEmail,
			inv.EmployeeAddress,
			inv.EmployeeMobile,
			inv.TaxRate,
			string(inv.Country),
			inv.UpdatedAt,
			inv.ID,
		)
		if err != nil {
			r.logger.Error("Failed to update invoice", zap.String("id", inv.ID), zap.Error(err))
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		if _, err := r.getExecutor(ctx).ExecContext(ctx,
			`DELETE FROM service_items WHERE invoice_id = ?`, inv.ID); err != nil {
			r.logger.Error("Failed to clear invoice services", zap.String("id", inv.ID), zap.Error(err))
			return fmt.Errorf("failed to clear services: %w", err)
		}

		return r.insertServices(ctx, inv)
	})
}

// Delete removes an invoice. Service lines and email jobs cascade.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.getExecutor(ctx).ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete invoice", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// Search returns invoices matching filter, newest first
func (r *InvoiceRepository) Search(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	stmt := applyInvoiceFilter(sq.Select(invoiceColumns...).From("invoices"), filter).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))
	if filter.Offset > 0 {
		stmt = stmt.Offset(uint64(filter.Offset))
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to search invoices", zap.String("query", filter.Query), zap.Error(err))
		return nil, fmt.Errorf("failed to search invoices: %w", err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachServices(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Count returns the number of invoices matching filter, ignoring paging
func (r *InvoiceRepository) Count(ctx context.Context, filter entity.InvoiceFilter) (int, error) {
	query, args, err := applyInvoiceFilter(sq.Select("COUNT(*)").From("invoices"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.getExecutor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count invoices", zap.Error(err))
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

func applyInvoiceFilter(stmt sq.SelectBuilder, filter entity.InvoiceFilter) sq.SelectBuilder {
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		stmt = stmt.Where(sq.Or{
			sq.Like{"invoice_number": pattern},
			sq.Like{"employee_name": pattern},
		})
	}
	if filter.EmployeeID != "" {
		stmt = stmt.Where(sq.Eq{"employee_id": filter.EmployeeID})
	}
	if filter.Country != "" {
		stmt = stmt.Where(sq.Eq{"country": string(filter.Country.Normalize())})
	}
	if filter.DateFrom != "" {
		stmt = stmt.Where(sq.GtOrEq{"invoice_date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		stmt = stmt.Where(sq.LtOrEq{"invoice_date": filter.DateTo})
	}
	return stmt
}

func (r *InvoiceRepository) insertServices(ctx context.Context, inv *entity.Invoice) error {
	if len(inv.Services) == 0 {
		return nil
	}

	stmt := sq.Insert("service_items").
		Columns("id", "invoice_id", "position", "description", "hours", "rate")
	for i := range inv.Services {
		s := &inv.Services[i]
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		stmt = stmt.Values(s.ID, inv.ID, i, s.Description, s.Hours, s.Rate)
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.getExecutor(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert services",
			zap.String("invoice_id", inv.ID),
			zap.Int("count", len(inv.Services)),
			zap.Error(err))
		return fmt.Errorf("failed to insert services: %w", err)
	}
	return nil
}

// attachServices loads the service lines of all invoices with one query
func (r *InvoiceRepository) attachServices(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	byID := make(map[string]*entity.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		inv.Services = []entity.ServiceItem{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	query, args, err := sq.Select("invoice_id", "id", "description", "hours", "rate").
		From("service_items").
		Where(sq.Eq{"invoice_id": ids}).
		OrderBy("invoice_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load services", zap.Int("invoices", len(ids)), zap.Error(err))
		return fmt.Errorf("failed to load services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var invoiceID string
		var s entity.ServiceItem
		if err := rows.Scan(&invoiceID, &s.ID, &s.Description, &s.Hours, &s.Rate); err != nil {
			return fmt.Errorf("failed to scan service: %w", err)
		}
		if inv, ok := byID[invoiceID]; ok {
			inv.Services = append(inv.Services, s)
		}
	}
	return rows.Err()
}

func (r *InvoiceRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var country string

	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.Date,
		&inv.DueDate,
		&inv.EmployeeName,
		&inv.EmployeeID,
		&inv.EmployeeEmail,
		&inv.EmployeeAddress,
		&inv.EmployeeMobile,
		&inv.TaxRate,
		&country,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Country = entity.Country(country)
	return &inv, nil
}

func scanInvoices(rows *sql.Rows) ([]*entity.Invoice, error) {
	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// dbTime drops sub-second precision so stored timestamps sort as text
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
