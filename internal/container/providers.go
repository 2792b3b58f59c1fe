package container

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/application/service"
	"github.com/garyjia/invoice-studio/internal/email"
	"github.com/garyjia/invoice-studio/internal/infrastructure/persistence/repository"
	"github.com/garyjia/invoice-studio/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/invoice-studio/internal/infrastructure/storage"
	"github.com/garyjia/invoice-studio/internal/infrastructure/worker"
	"github.com/garyjia/invoice-studio/internal/preview"
	"github.com/garyjia/invoice-studio/internal/render"
	"github.com/garyjia/invoice-studio/migrations"
	"github.com/garyjia/invoice-studio/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// RenderBundle holds the PDF renderer and the preview rasterizer.
type RenderBundle struct {
	Assembler   *render.Assembler
	Thumbnailer *preview.Thumbnailer
}

// ProvideDatabase opens the database and applies the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Invoice:  repository.NewInvoiceRepository(db.DB, logger),
		Profile:  repository.NewProfileRepository(db.DB, logger),
		EmailJob: repository.NewEmailJobRepository(db.DB, logger),
	}, nil
}

// ProvideStorage creates the upload storage rooted at cfg.UploadDir.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	return storage.NewLocalFileStorage(cfg.UploadDir, logger)
}

// ProvideRenderer creates the assembler and thumbnailer. A missing or unreadable
// CJK font is logged and rendering continues with vector text only.
func ProvideRenderer(cfg *RenderConfig, uploadDir string, logger *zap.Logger) (*RenderBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("render config is required")
	}

	var raster render.Rasterizer
	if cfg.FontPath != "" {
		glyphs, err := render.LoadGlyphRasterizer(cfg.FontPath, cfg.BoldFontPath)
		if err != nil {
			logger.Warn("CJK font unavailable, Japanese text will use vector fallback",
				zap.String("font_path", cfg.FontPath),
				zap.Error(err))
		} else {
			raster = glyphs
		}
	} else {
		logger.Warn("No CJK font configured, Japanese text will use vector fallback")
	}

	logoCfg := render.DefaultLogoConfig()
	logoCfg.BaseURL = cfg.BaseURL
	logoCfg.UploadDir = uploadDir
	if cfg.LogoTimeout > 0 {
		logoCfg.Timeout = cfg.LogoTimeout
	}
	if cfg.LogoMaxBytes > 0 {
		logoCfg.MaxBytes = cfg.LogoMaxBytes
	}
	logos := render.NewHTTPLogoLoader(logoCfg, logger)

	assembler := render.NewAssembler(render.Config{
		Creator:         cfg.Creator,
		Author:          cfg.Author,
		FallbackProfile: cfg.FallbackProfile,
		FallbackBank:    cfg.FallbackBank,
		Contact: render.Contact{
			Phone: cfg.FallbackProfile.Phone,
			Email: cfg.FallbackProfile.Email,
		},
	}, raster, logos, logger)

	return &RenderBundle{
		Assembler:   assembler,
		Thumbnailer: preview.NewThumbnailer(cfg.PreviewDPI, logger),
	}, nil
}

// ProvideMailer creates the SMTP sender, or returns nil when no host is configured.
func ProvideMailer(cfg *EmailConfig, logger *zap.Logger) port.Mailer {
	if cfg == nil || cfg.SMTP.Host == "" {
		logger.Warn("SMTP host not configured, invoice emails will stay queued")
		return nil
	}
	return email.NewSMTPSender(cfg.SMTP, logger)
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Storage    port.FileStorage
	Renderer   port.DocumentRenderer
	Previewer  port.Previewer
	StorageCfg *StorageConfig
	EmailCfg   *EmailConfig
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := &ZapLoggerAdapter{logger: deps.Logger}

	invoices := service.NewInvoiceService(deps.Repos.Invoice, deps.TxManager, logger)
	profiles := service.NewProfileService(deps.Repos.Profile, deps.Storage, service.ProfileConfig{
		MaxLogoBytes: deps.StorageCfg.MaxLogoBytes,
	}, logger)
	documents := service.NewDocumentService(deps.Repos.Invoice, profiles, deps.Renderer, deps.Previewer, logger)
	emails := service.NewEmailService(deps.Repos.Invoice, deps.Repos.EmailJob, documents, service.EmailConfig{
		MaxAttachmentBytes: deps.EmailCfg.SMTP.MaxAttachmentBytes,
	}, logger)

	return &ServiceBundle{
		Invoice:  invoices,
		Profile:  profiles,
		Document: documents,
		Email:    emails,
	}, nil
}

// WorkerDeps holds dependencies for creating workers.
type WorkerDeps struct {
	Repos     *RepositoryBundle
	Mailer    port.Mailer
	WorkerCfg *worker.EmailOutboxConfig
	Logger    *zap.Logger
}

// ProvideWorkers creates the worker manager. The outbox worker is registered
// only when a mailer is available.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, error) {
	if deps == nil {
		return nil, fmt.Errorf("worker dependencies are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	manager := worker.NewWorkerManager(deps.Logger)
	if deps.Mailer == nil {
		return manager, nil
	}

	outbox := worker.NewEmailOutboxWorker(*deps.WorkerCfg, deps.Repos.EmailJob, deps.Mailer, deps.Logger)
	if err := manager.Register(outbox); err != nil {
		return nil, fmt.Errorf("failed to register email outbox worker: %w", err)
	}
	return manager, nil
}
