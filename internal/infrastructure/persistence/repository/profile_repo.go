package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/port"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/infrastructure/persistence/sqlite"
)

// ProfileRepository implements port.ProfileRepository on a single-row table
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB, logger *zap.Logger) port.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored profile, or nil when none has been saved
func (r *ProfileRepository) Get(ctx context.Context) (*entity.CompanyProfile, error) {
	query := `
		SELECT company_name, company_address, tax_id, phone, email,
			company_logo_url, bank_details
		FROM company_profile
		WHERE id = 1
	`

	var profile entity.CompanyProfile
	var bankJSON sql.NullString

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query).Scan(
		&profile.CompanyName,
		&profile.CompanyAddress,
		&profile.TaxID,
		&profile.Phone,
		&profile.Email,
		&profile.CompanyLogoURL,
		&bankJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get company profile", zap.Error(err))
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}

	if bankJSON.Valid && bankJSON.String != "" {
		var bank entity.BankDetails
		if err := json.Unmarshal([]byte(bankJSON.String), &bank); err != nil {
			r.logger.Error("Failed to decode bank details", zap.Error(err))
			return nil, fmt.Errorf("failed to decode bank details: %w", err)
		}
		profile.BankDetails = &bank
	}

	return &profile, nil
}

// Save inserts or replaces the profile
func (r *ProfileRepository) Save(ctx context.Context, profile *entity.CompanyProfile) error {
	var bankJSON sql.NullString
	if profile.BankDetails != nil {
		data, err := json.Marshal(profile.BankDetails)
		if err != nil {
			return fmt.Errorf("failed to encode bank details: %w", err)
		}
		bankJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO company_profile (
			id, company_name, company_address, tax_id, phone, email,
			company_logo_url, bank_details, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_name = excluded.company_name,
			company_address = excluded.company_address,
			tax_id = excluded.tax_id,
			phone = excluded.phone,
			email = excluded.email,
			company_logo_url = excluded.company_logo_url,
			bank_details = excluded.bank_details,
			updated_at = excluded.updated_at
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		profile.CompanyName,
		profile.CompanyAddress,
		profile.TaxID,
		profile.Phone,
		profile.Email,
		profile.CompanyLogoURL,
		bankJSON,
		dbTime(time.Now()),
	)
	if err != nil {
		r.logger.Error("Failed to save company profile",
			zap.String("company_name", profile.CompanyName),
			zap.Error(err))
		return fmt.Errorf("failed to save company profile: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.ProfileRepository = (*ProfileRepository)(nil)
