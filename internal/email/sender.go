package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/garyjia/invoice-studio/internal/application/port"
)

// DefaultMaxAttachmentBytes keeps messages under common relay limits
const DefaultMaxAttachmentBytes = 9 * 1024 * 1024

var (
	// ErrAttachmentTooLarge is returned when an attachment exceeds the configured limit
	ErrAttachmentTooLarge = errors.New("attachment too large")
	// ErrNoRecipient is returned for messages without a To address
	ErrNoRecipient = errors.New("recipient is required")
)

// Config holds SMTP settings
type Config struct {
	Host               string
	Port               int
	Username           string
	Password           string
	FromAddress        string
	FromName           string
	MaxAttachmentBytes int
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers invoice emails over SMTP
type SMTPSender struct {
	cfg    Config
	dialer dialer
	logger *zap.Logger
}

// NewSMTPSender creates a sender that dials cfg.Host for every message
func NewSMTPSender(cfg Config, logger *zap.Logger) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	return newSender(cfg, d, logger)
}

func newSender(cfg Config, d dialer, logger *zap.Logger) *SMTPSender {
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: d,
		logger: logger,
	}
}

// CheckAttachment rejects attachments over the configured limit
func (s *SMTPSender) CheckAttachment(size int) error {
	if size > s.cfg.MaxAttachmentBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrAttachmentTooLarge, size, s.cfg.MaxAttachmentBytes)
	}
	return nil
}

// Send delivers one message with its attachment
func (s *SMTPSender) Send(ctx context.Context, msg port.OutgoingEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := s.CheckAttachment(len(msg.Attachment)); err != nil {
		return err
	}

	m := s.buildMessage(msg)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("attachment", msg.AttachmentName),
		zap.Int("attachment_bytes", len(msg.Attachment)))
	return nil
}

func (s *SMTPSender) buildMessage(msg port.OutgoingEmail) *gomail.Message {
	m := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)

	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if len(msg.Attachment) > 0 {
		contentType := msg.ContentType
		if contentType == "" {
			contentType = "application/pdf"
		}
		data := msg.Attachment
		m.Attach(msg.AttachmentName,
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m
}

var _ port.Mailer = (*SMTPSender)(nil)
