package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Render   RenderConfig   `mapstructure:"render"`
	Email    EmailConfig    `mapstructure:"email"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	// PublicURL resolves relative logo URLs when rendering
	PublicURL string `mapstructure:"public_url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RenderConfig holds PDF rendering configuration
type RenderConfig struct {
	Creator      string        `mapstructure:"creator"`
	Author       string        `mapstructure:"author"`
	FontPath     string        `mapstructure:"font_path"`
	BoldFontPath string        `mapstructure:"bold_font_path"`
	LogoTimeout  time.Duration `mapstructure:"logo_timeout"`
	LogoMaxBytes int64         `mapstructure:"logo_max_bytes"`
	PreviewDPI   float64       `mapstructure:"preview_dpi"`
	Company      CompanyConfig `mapstructure:"company"`
	Bank         BankConfig    `mapstructure:"bank"`
}

// CompanyConfig is the profile used when none has been saved
type CompanyConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	TaxID   string `mapstructure:"tax_id"`
	Phone   string `mapstructure:"phone"`
	Email   string `mapstructure:"email"`
	LogoURL string `mapstructure:"logo_url"`
}

// BankConfig fills bank fields missing from the profile
type BankConfig struct {
	BankName          string `mapstructure:"bank_name"`
	AccountNumber     string `mapstructure:"account_number"`
	AccountHolderName string `mapstructure:"account_holder_name"`
	IFSCCode          string `mapstructure:"ifsc_code"`
	BranchName        string `mapstructure:"branch_name"`
	BranchCode        string `mapstructure:"branch_code"`
	AccountType       string `mapstructure:"account_type"`
}

// EmailConfig holds SMTP configuration. Without a host, emails stay queued.
type EmailConfig struct {
	SMTPHost           string `mapstructure:"smtp_host"`
	SMTPPort           int    `mapstructure:"smtp_port"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	FromAddress        string `mapstructure:"from_address"`
	FromName           string `mapstructure:"from_name"`
	MaxAttachmentBytes int    `mapstructure:"max_attachment_bytes"`
}

// Enabled reports whether an SMTP host is configured
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != ""
}

// StorageConfig holds upload storage configuration
type StorageConfig struct {
	UploadDir    string `mapstructure:"upload_dir"`
	MaxLogoBytes int    `mapstructure:"max_logo_bytes"`
}

// WorkerConfig holds email outbox worker configuration
type WorkerConfig struct {
	EmailPollInterval time.Duration `mapstructure:"email_poll_interval"`
	EmailBatchSize    int           `mapstructure:"email_batch_size"`
	EmailMaxAttempts  int           `mapstructure:"email_max_attempts"`
	EmailRetryBackoff time.Duration `mapstructure:"email_retry_backoff"`
	EmailSendTimeout  time.Duration `mapstructure:"email_send_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// A .env file in the working directory is applied to the environment first.
// A missing config file is not an error: defaults and environment apply.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// Database defaults
	v.SetDefault("database.path", "data/invoices.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Render defaults
	v.SetDefault("render.creator", "invoice-studio")
	v.SetDefault("render.logo_timeout", 3*time.Second)
	v.SetDefault("render.logo_max_bytes", 5<<20)
	v.SetDefault("render.preview_dpi", 96)

	// Email defaults
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.max_attachment_bytes", 9<<20)

	// Storage defaults
	v.SetDefault("storage.upload_dir", "data/uploads")
	v.SetDefault("storage.max_logo_bytes", 2<<20)

	// Worker defaults
	v.SetDefault("worker.email_poll_interval", 15*time.Second)
	v.SetDefault("worker.email_batch_size", 10)
	v.SetDefault("worker.email_max_attempts", 3)
	v.SetDefault("worker.email_retry_backoff", time.Minute)
	v.SetDefault("worker.email_send_timeout", 30*time.Second)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.public_url", "PUBLIC_URL")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("render.font_path", "CJK_FONT_PATH")

	// Sensitive credentials from environment
	_ = v.BindEnv("email.smtp_host", "SMTP_HOST")
	_ = v.BindEnv("email.smtp_port", "SMTP_PORT")
	_ = v.BindEnv("email.username", "SMTP_USERNAME")
	_ = v.BindEnv("email.password", "SMTP_PASSWORD")
	_ = v.BindEnv("email.from_address", "EMAIL_FROM")
	_ = v.BindEnv("render.bank.account_number", "BANK_ACCOUNT_NUMBER")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	if c.Render.PreviewDPI <= 0 {
		return fmt.Errorf("render.preview_dpi must be positive")
	}

	// SMTP is optional, but a host needs a sender address
	if c.Email.Enabled() && c.Email.FromAddress == "" {
		return fmt.Errorf("email.from_address is required when email.smtp_host is set")
	}

	return nil
}
