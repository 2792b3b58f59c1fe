// Package container provides dependency injection and lifecycle management
// for the invoice service.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/email"
	"github.com/garyjia/invoice-studio/internal/infrastructure/worker"
	"github.com/garyjia/invoice-studio/internal/preview"
	"github.com/garyjia/invoice-studio/internal/render"
)

// Config holds all configuration for the Container.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Storage configuration
	Storage StorageConfig

	// Render configuration
	Render RenderConfig

	// Email configuration
	Email EmailConfig

	// Server configuration
	Server ServerConfig

	// Worker configuration
	Worker worker.EmailOutboxConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file, or database.MemoryPath
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	// UploadDir is the root of uploaded files, served under /uploads
	UploadDir string

	// MaxLogoBytes bounds logo uploads
	MaxLogoBytes int
}

// RenderConfig holds PDF rendering settings.
type RenderConfig struct {
	Creator string
	Author  string

	// FontPath is a CJK-capable TrueType/OpenType font. Without it,
	// Japanese text falls back to vector output.
	FontPath     string
	BoldFontPath string

	// BaseURL resolves relative logo URLs
	BaseURL      string
	LogoTimeout  time.Duration
	LogoMaxBytes int64

	PreviewDPI float64

	FallbackProfile entity.CompanyProfile
	FallbackBank    entity.BankDetails
}

// EmailConfig holds SMTP settings. An empty Host disables delivery;
// jobs are still queued.
type EmailConfig struct {
	SMTP email.Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration

	// MaxUploadBytes bounds multipart uploads
	MaxUploadBytes int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/invoices.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			UploadDir:    "data/uploads",
			MaxLogoBytes: 2 << 20,
		},
		Render: RenderConfig{
			Creator:      "invoice-studio",
			LogoTimeout:  render.DefaultLogoConfig().Timeout,
			LogoMaxBytes: render.DefaultLogoConfig().MaxBytes,
			PreviewDPI:   preview.DefaultDPI,
		},
		Email: EmailConfig{
			SMTP: email.Config{
				Port:               587,
				MaxAttachmentBytes: email.DefaultMaxAttachmentBytes,
			},
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxUploadBytes: 10 << 20,
		},
		Worker: worker.DefaultEmailOutboxConfig(),
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	if c.Email.SMTP.Host != "" && c.Email.SMTP.FromAddress == "" {
		return fmt.Errorf("email.from_address is required when email.smtp_host is set")
	}
	return nil
}
