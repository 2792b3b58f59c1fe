package service

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/pkg/utils"
)

// DefaultMaxLogoBytes limits uploaded logos
const DefaultMaxLogoBytes = 2 * 1024 * 1024

// LogoDir is the storage directory of uploaded logos
const LogoDir = "logos"

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
}

// ProfileConfig configures the profile service
type ProfileConfig struct {
	MaxLogoBytes int
	// URLPrefix is where the HTTP server exposes the storage root
	URLPrefix string
}

// ProfileService manages the issuing company's profile
type ProfileService interface {
	Get(ctx context.Context) (*entity.CompanyProfile, error)
	Save(ctx context.Context, profile *entity.CompanyProfile) error
	// Resolve returns explicit when given, else the stored profile.
	// A nil result leaves the renderer's configured fallback in effect.
	Resolve(ctx context.Context, explicit *entity.CompanyProfile) (*entity.CompanyProfile, error)
	// UploadLogo stores an image and points the profile at it
	UploadLogo(ctx context.Context, data []byte) (string, error)
}

type profileServiceImpl struct {
	repo    port.ProfileRepository
	storage port.FileStorage
	cfg     ProfileConfig
	logger  Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	repo port.ProfileRepository,
	storage port.FileStorage,
	cfg ProfileConfig,
	logger Logger,
) ProfileService {
	if cfg.MaxLogoBytes <= 0 {
		cfg.MaxLogoBytes = DefaultMaxLogoBytes
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/uploads"
	}
	return &profileServiceImpl{
		repo:    repo,
		storage: storage,
		cfg:     cfg,
		logger:  logger,
	}
}

// Get returns the stored profile or ErrProfileNotFound
func (s *profileServiceImpl) Get(ctx context.Context) (*entity.CompanyProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Save validates and stores the profile
func (s *profileServiceImpl) Save(ctx context.Context, profile *entity.CompanyProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is required", ErrInvalidProfile)
	}
	profile.CompanyName = utils.SanitizeString(profile.CompanyName)
	profile.CompanyAddress = utils.SanitizeString(profile.CompanyAddress)

	if err := utils.ValidateRequired("companyName", profile.CompanyName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if profile.Email != "" {
		if err := utils.ValidateEmail(profile.Email); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		s.logger.Error("Failed to save profile", "company_name", profile.CompanyName, "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Company profile saved",
		"company_name", profile.CompanyName,
		"has_bank_details", profile.BankDetails != nil)
	return nil
}

// Resolve applies explicit > stored
func (s *profileServiceImpl) Resolve(ctx context.Context, explicit *entity.CompanyProfile) (*entity.CompanyProfile, error) {
	if explicit != nil {
		return explicit, nil
	}
	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UploadLogo validates the image type and size, stores it and returns its URL
func (s *profileServiceImpl) UploadLogo(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrInvalidLogo)
	}
	if len(data) > s.cfg.MaxLogoBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidLogo, len(data), s.cfg.MaxLogoBytes)
	}

	contentType := http.DetectContentType(data)
	ext, ok := logoExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %s", ErrInvalidLogo, contentType)
	}

	rel := path.Join(LogoDir, uuid.New().String()+ext)
	if err := s.storage.Save(ctx, rel, data); err != nil {
		s.logger.Error("Failed to store logo", "path", rel, "error", err)
		return "", fmt.Errorf("failed to store logo: %w", err)
	}

	url := path.Join(s.cfg.URLPrefix, rel)

	profile, err := s.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		profile = &entity.CompanyProfile{}
	}
	previous := profile.CompanyLogoURL
	profile.CompanyLogoURL = url

	if err := s.repo.Save(ctx, profile); err != nil {
		_ = s.storage.Delete(ctx, rel)
		return "", fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Company logo uploaded",
		"url", url,
		"content_type", contentType,
		"bytes", len(data),
		"previous", previous)
	return url, nil
}
