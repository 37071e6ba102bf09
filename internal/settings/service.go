// Package settings manages the singleton business profile record.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/db"
	"github.com/inkwell-labs/inkwell/internal/models"
)

var (
	// ErrInvalidTaxRate is returned when the tax rate is not a non-negative number.
	ErrInvalidTaxRate = errors.New("tax rate must be a non-negative number")
	// ErrNoSettings is returned by Export when no settings have been saved yet.
	ErrNoSettings = errors.New("no settings found")
)

// Store defines the interface for business settings persistence operations.
type Store interface {
	GetBusinessSettings(ctx context.Context) (*models.BusinessSettings, error)
	UpsertBusinessSettings(ctx context.Context, s *models.BusinessSettings) error
}

// Input carries the fields of a save or import request. TaxRate is kept
// untyped because clients send it both as a JSON number and as a string;
// parsing happens in the service so a bad value is rejected before any write.
type Input struct {
	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
	BusinessPhone   string `json:"businessPhone"`
	BusinessEmail   string `json:"businessEmail"`
	BusinessLogoURL string `json:"businessLogoUrl"`
	SignatureURL    string `json:"signatureUrl"`
	TaxRate         any    `json:"taxRate"`
	Currency        string `json:"currency"`
}

// Service handles business settings operations.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a new settings service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "settings_service").Logger(),
	}
}

// Get returns the stored business profile, or the all-default payload when no
// record exists. Reading defaults does not create a record.
func (s *Service) Get(ctx context.Context) (models.SettingsPayload, error) {
	stored, err := s.store.GetBusinessSettings(ctx)
	if err != nil {
		if errors.Is(err, db.ErrSettingsNotFound) {
			return models.DefaultSettingsPayload(), nil
		}
		return models.SettingsPayload{}, fmt.Errorf("get business settings: %w", err)
	}
	return stored.Payload(), nil
}

// Save fully overwrites the business profile from the given input, creating
// the record on first save. Missing fields coerce to the same defaults Get
// serves; a non-numeric or negative tax rate fails without touching the store.
func (s *Service) Save(ctx context.Context, in Input) error {
	taxRate, err := parseTaxRate(in.TaxRate)
	if err != nil {
		return err
	}

	record, err := s.store.GetBusinessSettings(ctx)
	if err != nil {
		if !errors.Is(err, db.ErrSettingsNotFound) {
			return fmt.Errorf("load business settings: %w", err)
		}
		record = models.NewBusinessSettings()
	}

	record.BusinessName = in.BusinessName
	record.BusinessAddress = in.BusinessAddress
	record.BusinessPhone = in.BusinessPhone
	record.BusinessEmail = in.BusinessEmail
	record.BusinessLogoURL = in.BusinessLogoURL
	record.SignatureURL = in.SignatureURL
	record.TaxRate = taxRate
	record.Currency = in.Currency
	if record.Currency == "" {
		record.Currency = models.DefaultCurrency
	}

	if err := s.store.UpsertBusinessSettings(ctx, record); err != nil {
		return fmt.Errorf("save business settings: %w", err)
	}

	s.logger.Info().
		Str("business_name", record.BusinessName).
		Str("currency", record.Currency).
		Msg("business settings saved")

	return nil
}

// Import overwrites the business profile from an exported payload. The
// semantics are identical to Save.
func (s *Service) Import(ctx context.Context, in Input) error {
	if err := s.Save(ctx, in); err != nil {
		return err
	}
	s.logger.Info().Msg("business settings imported")
	return nil
}

// parseTaxRate accepts the tax rate as a JSON number, a numeric string, or
// absent (zero). Anything else is invalid.
func parseTaxRate(v any) (float64, error) {
	var rate float64
	switch t := v.(type) {
	case nil:
		rate = 0
	case float64:
		rate = t
	case int:
		rate = float64(t)
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, ErrInvalidTaxRate
		}
		rate = parsed
	default:
		return 0, ErrInvalidTaxRate
	}

	if rate < 0 {
		return 0, ErrInvalidTaxRate
	}
	return rate, nil
}
