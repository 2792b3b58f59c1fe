package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/infrastructure/persistence/sqlite"
)

const emailJobColumns = `id, invoice_id, recipient, subject, body, attachment_name, attachment,
	language, status, attempts, last_error, next_attempt_at, sent_at, created_at, updated_at`

// EmailJobRepository implements port.EmailJobRepository
type EmailJobRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmailJobRepository creates a new email outbox repository
func NewEmailJobRepository(db *sql.DB, logger *zap.Logger) port.EmailJobRepository {
	return &EmailJobRepository{
		db:     db,
		logger: logger,
	}
}

// Create enqueues a job
func (r *EmailJobRepository) Create(ctx context.Context, job *entity.EmailJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = entity.EmailStatusPending
	}
	now := dbTime(time.Now())
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.NextAttemptAt.IsZero() {
		job.NextAttemptAt = now
	}
	job.NextAttemptAt = dbTime(job.NextAttemptAt)

	query := `INSERT INTO email_jobs (` + emailJobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		job.ID,
		job.InvoiceID,
		job.Recipient,
		job.Subject,
		job.Body,
		job.AttachmentName,
		job.Attachment,
		job.Language,
		job.Status,
		job.Attempts,
		job.LastError,
		job.NextAttemptAt,
		nullTime(job.SentAt),
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create email job",
			zap.String("invoice_id", job.InvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to create email job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID
func (r *EmailJobRepository) GetByID(ctx context.Context, id string) (*entity.EmailJob, error) {
	query := `SELECT ` + emailJobColumns + ` FROM email_jobs WHERE id = ?`

	job, err := scanEmailJob(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get email job", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get email job: %w", err)
	}
	return job, nil
}

// GetDue returns pending jobs whose next attempt is due, oldest first
func (r *EmailJobRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error) {
	query := `SELECT ` + emailJobColumns + `
		FROM email_jobs
		WHERE status = ? AND next_attempt_at <= ?
		ORDER BY next_attempt_at ASC, created_at ASC
		LIMIT ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, entity.EmailStatusPending, dbTime(now), limit)
	if err != nil {
		r.logger.Error("Failed to get due email jobs", zap.Error(err))
		return nil, fmt.Errorf("failed to get due email jobs: %w", err)
	}
	defer rows.Close()

	return scanEmailJobs(rows)
}

// MarkSent records a successful delivery
func (r *EmailJobRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE email_jobs
		SET status = ?, sent_at = ?, attempts = attempts + 1, last_error = '', updated_at = ?
		WHERE id = ?`

	return r.update(ctx, "mark email job sent", query,
		entity.EmailStatusSent, dbTime(sentAt), dbTime(time.Now()), id)
}

// MarkRetry records a failed attempt and schedules the next one
func (r *EmailJobRepository) MarkRetry(ctx context.Context, id string, attempts int, lastError string, nextAttemptAt time.Time) error {
	query := `UPDATE email_jobs
		SET attempts = ?, last_error = ?, next_attempt_at = ?, updated_at = ?
		WHERE id = ?`

	return r.update(ctx, "reschedule email job", query,
		attempts, lastError, dbTime(nextAttemptAt), dbTime(time.Now()), id)
}

// MarkFailed gives up on a job
func (r *EmailJobRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	query := `UPDATE email_jobs
		SET status = ?, attempts = ?, last_error = ?, updated_at = ?
		WHERE id = ?`

	return r.update(ctx, "mark email job failed", query,
		entity.EmailStatusFailed, attempts, lastError, dbTime(time.Now()), id)
}

// ListByInvoice returns the jobs of one invoice, newest first
func (r *EmailJobRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.EmailJob, error) {
	query := `SELECT ` + emailJobColumns + `
		FROM email_jobs
		WHERE invoice_id = ?
		ORDER BY created_at DESC`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to list email jobs", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list email jobs: %w", err)
	}
	defer rows.Close()

	return scanEmailJobs(rows)
}

func (r *EmailJobRepository) update(ctx context.Context, action, query string, args ...interface{}) error {
	id := args[len(args)-1]
	if _, err := r.getExecutor(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to "+action, zap.Any("id", id), zap.Error(err))
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}

func (r *EmailJobRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

func scanEmailJob(row rowScanner) (*entity.EmailJob, error) {
	var job entity.EmailJob
	var sentAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.InvoiceID,
		&job.Recipient,
		&job.Subject,
		&job.Body,
		&job.AttachmentName,
		&job.Attachment,
		&job.Language,
		&job.Status,
		&job.Attempts,
		&job.LastError,
		&job.NextAttemptAt,
		&sentAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sentAt.Valid {
		job.SentAt = &sentAt.Time
	}
	return &job, nil
}

func scanEmailJobs(rows *sql.Rows) ([]*entity.EmailJob, error) {
	var jobs []*entity.EmailJob
	for rows.Next() {
		job, err := scanEmailJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(*t), Valid: true}
}

// Verify interface compliance
var _ port.EmailJobRepository = (*EmailJobRepository)(nil)
