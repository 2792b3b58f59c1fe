package config

import (
	"github.com/garyjia/invoice-studio/internal/container"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/email"
	"github.com/garyjia/invoice-studio/internal/infrastructure/worker"
)

// ToContainerConfig converts the application Config to a container.Config.
func (c *Config) ToContainerConfig() *container.Config {
	fallbackBank := entity.BankDetails{
		BankName:          c.Render.Bank.BankName,
		AccountNumber:     c.Render.Bank.AccountNumber,
		AccountHolderName: c.Render.Bank.AccountHolderName,
		IFSCCode:          c.Render.Bank.IFSCCode,
		BranchName:        c.Render.Bank.BranchName,
		BranchCode:        c.Render.Bank.BranchCode,
		AccountType:       c.Render.Bank.AccountType,
	}

	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Storage: container.StorageConfig{
			UploadDir:    c.Storage.UploadDir,
			MaxLogoBytes: c.Storage.MaxLogoBytes,
		},
		Render: container.RenderConfig{
			Creator:      c.Render.Creator,
			Author:       c.Render.Author,
			FontPath:     c.Render.FontPath,
			BoldFontPath: c.Render.BoldFontPath,
			BaseURL:      c.Server.PublicURL,
			LogoTimeout:  c.Render.LogoTimeout,
			LogoMaxBytes: c.Render.LogoMaxBytes,
			PreviewDPI:   c.Render.PreviewDPI,
			FallbackProfile: entity.CompanyProfile{
				CompanyName:    c.Render.Company.Name,
				CompanyAddress: c.Render.Company.Address,
				TaxID:          c.Render.Company.TaxID,
				Phone:          c.Render.Company.Phone,
				Email:          c.Render.Company.Email,
				CompanyLogoURL: c.Render.Company.LogoURL,
			},
			FallbackBank: fallbackBank,
		},
		Email: container.EmailConfig{
			SMTP: email.Config{
				Host:               c.Email.SMTPHost,
				Port:               c.Email.SMTPPort,
				Username:           c.Email.Username,
				Password:           c.Email.Password,
				FromAddress:        c.Email.FromAddress,
				FromName:           c.Email.FromName,
				MaxAttachmentBytes: c.Email.MaxAttachmentBytes,
			},
		},
		Server: container.ServerConfig{
			Host:           c.Server.Host,
			Port:           c.Server.Port,
			ReadTimeout:    c.Server.ReadTimeout,
			WriteTimeout:   c.Server.WriteTimeout,
			MaxUploadBytes: c.Server.MaxUploadBytes,
		},
		Worker: worker.EmailOutboxConfig{
			PollInterval: c.Worker.EmailPollInterval,
			BatchSize:    c.Worker.EmailBatchSize,
			MaxAttempts:  c.Worker.EmailMaxAttempts,
			RetryBackoff: c.Worker.EmailRetryBackoff,
			SendTimeout:  c.Worker.EmailSendTimeout,
		},
	}
}
