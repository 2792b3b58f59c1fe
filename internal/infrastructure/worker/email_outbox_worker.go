package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/email"
)

// EmailOutboxConfig holds configuration for the email outbox worker
type EmailOutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// RetryBackoff is multiplied by the attempt number
	RetryBackoff time.Duration
	SendTimeout  time.Duration
}

// DefaultEmailOutboxConfig returns default configuration
func DefaultEmailOutboxConfig() EmailOutboxConfig {
	return EmailOutboxConfig{
		PollInterval: 15 * time.Second,
		BatchSize:    10,
		MaxAttempts:  3,
		RetryBackoff: time.Minute,
		SendTimeout:  30 * time.Second,
	}
}

// OutboxStats summarises the worker's activity since start
type OutboxStats struct {
	Sent      int
	Retried   int
	Failed    int
	LastRun   time.Time
	LastError string
}

// EmailOutboxWorker delivers queued invoice emails
type EmailOutboxWorker struct {
	config EmailOutboxConfig
	jobs   port.EmailJobRepository
	mailer port.Mailer
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	stats     OutboxStats
}

// NewEmailOutboxWorker creates a new outbox worker
func NewEmailOutboxWorker(
	config EmailOutboxConfig,
	jobs port.EmailJobRepository,
	mailer port.Mailer,
	logger *zap.Logger,
) *EmailOutboxWorker {
	defaults := DefaultEmailOutboxConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	return &EmailOutboxWorker{
		config: config,
		jobs:   jobs,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// Start begins polling in the background
func (w *EmailOutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("email outbox worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("EmailOutboxWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
		zap.Int("max_attempts", w.config.MaxAttempts))

	go w.pollLoop(runCtx, w.done)
	return nil
}

// Stop cancels polling and waits for the current batch to finish
func (w *EmailOutboxWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	stats := w.Stats()
	w.logger.Info("EmailOutboxWorker stopped",
		zap.Int("sent", stats.Sent),
		zap.Int("retried", stats.Retried),
		zap.Int("failed", stats.Failed))
	return nil
}

// Name returns the worker name for identification
func (w *EmailOutboxWorker) Name() string {
	return "EmailOutboxWorker"
}

// Stats returns a snapshot of the counters
func (w *EmailOutboxWorker) Stats() OutboxStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *EmailOutboxWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("Failed to process email outbox", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue sends one batch of due jobs
func (w *EmailOutboxWorker) ProcessDue(ctx context.Context) error {
	now := w.now()
	jobs, err := w.jobs.GetDue(ctx, now, w.config.BatchSize)

	w.mu.Lock()
	w.stats.LastRun = now
	if err != nil {
		w.stats.LastError = err.Error()
	}
	w.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to get due email jobs: %w", err)
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.deliver(ctx, job); err != nil {
			w.logger.Error("Failed to update email job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return nil
}

func (w *EmailOutboxWorker) deliver(ctx context.Context, job *entity.EmailJob) error {
	sendCtx, cancel := context.WithTimeout(ctx, w.config.SendTimeout)
	defer cancel()

	sendErr := w.mailer.Send(sendCtx, port.OutgoingEmail{
		To:             job.Recipient,
		Subject:        job.Subject,
		Body:           job.Body,
		AttachmentName: job.AttachmentName,
		Attachment:     job.Attachment,
		ContentType:    "application/pdf",
	})

	if sendErr == nil {
		w.record(func(s *OutboxStats) { s.Sent++ })
		w.logger.Info("Invoice email delivered",
			zap.String("job_id", job.ID),
			zap.String("invoice_id", job.InvoiceID),
			zap.String("to", job.Recipient))
		return w.jobs.MarkSent(ctx, job.ID, w.now())
	}

	attempts := job.Attempts + 1
	w.record(func(s *OutboxStats) { s.LastError = sendErr.Error() })

	if attempts >= w.config.MaxAttempts || permanent(sendErr) {
		w.record(func(s *OutboxStats) { s.Failed++ })
		w.logger.Error("Invoice email failed permanently",
			zap.String("job_id", job.ID),
			zap.Int("attempts", attempts),
			zap.Error(sendErr))
		return w.jobs.MarkFailed(ctx, job.ID, attempts, sendErr.Error())
	}

	next := w.now().Add(time.Duration(attempts) * w.config.RetryBackoff)
	w.record(func(s *OutboxStats) { s.Retried++ })
	w.logger.Warn("Invoice email will be retried",
		zap.String("job_id", job.ID),
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", next),
		zap.Error(sendErr))
	return w.jobs.MarkRetry(ctx, job.ID, attempts, sendErr.Error(), next)
}

func (w *EmailOutboxWorker) record(update func(*OutboxStats)) {
	w.mu.Lock()
	update(&w.stats)
	w.mu.Unlock()
}

// permanent reports errors that retrying cannot fix
func permanent(err error) bool {
	return errors.Is(err, email.ErrAttachmentTooLarge) || errors.Is(err, email.ErrNoRecipient)
}
