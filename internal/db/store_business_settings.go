package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inkwell-labs/inkwell/internal/models"
)

// ErrSettingsNotFound is returned when the business settings row has not been
// created yet.
var ErrSettingsNotFound = errors.New("business settings not found")

// GetBusinessSettings returns the singleton business settings row.
func (db *DB) GetBusinessSettings(ctx context.Context) (*models.BusinessSettings, error) {
	var s models.BusinessSettings
	err := db.Pool.QueryRow(ctx, `
		SELECT id, business_name, business_address, business_phone, business_email,
		       business_logo_url, signature_url, tax_rate, currency, created_at, updated_at
		FROM business_settings
		WHERE id = $1
	`, models.BusinessSettingsID).Scan(
		&s.ID, &s.BusinessName, &s.BusinessAddress, &s.BusinessPhone, &s.BusinessEmail,
		&s.BusinessLogoURL, &s.SignatureURL, &s.TaxRate, &s.Currency, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get business settings: %w", err)
	}
	return &s, nil
}

// UpsertBusinessSettings creates or fully overwrites the singleton business
// settings row. Concurrent saves serialize to last-write-wins; created_at is
// preserved across updates.
func (db *DB) UpsertBusinessSettings(ctx context.Context, s *models.BusinessSettings) error {
	s.ID = models.BusinessSettingsID
	s.UpdatedAt = time.Now()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO business_settings (id, business_name, business_address, business_phone,
			business_email, business_logo_url, signature_url, tax_rate, currency,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			business_address = EXCLUDED.business_address,
			business_phone = EXCLUDED.business_phone,
			business_email = EXCLUDED.business_email,
			business_logo_url = EXCLUDED.business_logo_url,
			signature_url = EXCLUDED.signature_url,
			tax_rate = EXCLUDED.tax_rate,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`, s.ID, s.BusinessName, s.BusinessAddress, s.BusinessPhone, s.BusinessEmail,
		s.BusinessLogoURL, s.SignatureURL, s.TaxRate, s.Currency, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert business settings: %w", err)
	}
	return nil
}
