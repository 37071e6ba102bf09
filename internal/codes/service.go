// Package codes provides generation and redemption of one-time download codes.
package codes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/db"
	"github.com/inkwell-labs/inkwell/internal/models"
)

const (
	// CodeLength is the length of generated download codes.
	CodeLength = 8
	// CodeAlphabet is the character set for download codes.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// SingleCodeTTL is how long singly generated codes are valid.
	SingleCodeTTL = 24 * time.Hour
	// BulkCodeTTL is how long bulk-generated codes are valid.
	BulkCodeTTL = 365 * 24 * time.Hour
	// MaxBulkQuantity is the maximum number of codes in one bulk request.
	MaxBulkQuantity = 100

	// maxGenerateAttempts bounds collision retries on the unique code index.
	maxGenerateAttempts = 5
)

var (
	// ErrInvalidQuantity is returned when a bulk quantity is outside [1, 100].
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxBulkQuantity)
	// ErrEmptyCode is returned when redemption is attempted with a blank code.
	ErrEmptyCode = errors.New("code is required")
	// ErrCodeInvalidOrUsed is returned for codes that do not exist or were
	// already redeemed. The two cases are deliberately indistinguishable.
	ErrCodeInvalidOrUsed = errors.New("invalid or already used code")
	// ErrCodeExpired is returned for codes past their expiry. The record is
	// left unused.
	ErrCodeExpired = errors.New("code has expired")
)

// Store defines the interface for download code persistence operations.
type Store interface {
	CreateDownloadCode(ctx context.Context, code *models.DownloadCode) error
	CreateDownloadCodesTx(ctx context.Context, codes []*models.DownloadCode) error
	GetUnusedDownloadCodeByCode(ctx context.Context, code string) (*models.DownloadCode, error)
	MarkDownloadCodeUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	CountDownloadCodes(ctx context.Context) (models.CodeStats, error)
	DeleteExpiredDownloadCodes(ctx context.Context) (int64, error)
}

// Service handles download code operations.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a new code service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "code_service").Logger(),
	}
}

// GenerateSingle creates and persists one download code valid for 24 hours.
func (s *Service) GenerateSingle(ctx context.Context) (*models.DownloadCode, error) {
	expiresAt := time.Now().Add(SingleCodeTTL)

	var code *models.DownloadCode
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		raw, err := generateRandomCode(CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate random code: %w", err)
		}

		code = models.NewDownloadCode(raw, expiresAt)
		err = s.store.CreateDownloadCode(ctx, code)
		if err == nil {
			s.logger.Info().
				Str("code_id", code.ID.String()).
				Time("expires_at", expiresAt).
				Msg("download code created")
			return code, nil
		}
		if errors.Is(err, db.ErrDuplicateCode) {
			s.logger.Debug().Str("code", raw).Msg("code collision, regenerating")
			continue
		}
		return nil, fmt.Errorf("create download code: %w", err)
	}

	return nil, fmt.Errorf("generate code: exhausted %d attempts without a unique code", maxGenerateAttempts)
}

// GenerateBulk creates quantity download codes, each valid for 365 days. The
// batch is inserted in a single transaction: either all codes are persisted
// or none are.
func (s *Service) GenerateBulk(ctx context.Context, quantity int) ([]*models.DownloadCode, error) {
	if quantity < 1 || quantity > MaxBulkQuantity {
		return nil, ErrInvalidQuantity
	}

	expiresAt := time.Now().Add(BulkCodeTTL)

	var batch []*models.DownloadCode
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		batch = make([]*models.DownloadCode, 0, quantity)
		seen := make(map[string]struct{}, quantity)
		for len(batch) < quantity {
			raw, err := generateRandomCode(CodeLength)
			if err != nil {
				return nil, fmt.Errorf("generate random code: %w", err)
			}
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
			batch = append(batch, models.NewDownloadCode(raw, expiresAt))
		}

		err := s.store.CreateDownloadCodesTx(ctx, batch)
		if err == nil {
			s.logger.Info().
				Int("quantity", quantity).
				Time("expires_at", expiresAt).
				Msg("bulk download codes created")
			return batch, nil
		}
		if errors.Is(err, db.ErrDuplicateCode) {
			s.logger.Debug().Int("attempt", attempt+1).Msg("bulk code collision, regenerating batch")
			continue
		}
		return nil, fmt.Errorf("create download codes: %w", err)
	}

	return nil, fmt.Errorf("generate bulk codes: exhausted %d attempts without a unique batch", maxGenerateAttempts)
}

// VerifyAndRedeem consumes a download code. Input is trimmed and upper-cased
// before lookup. A redeemable code is atomically marked used; the mark-used
// update is conditional on the code still being unused, so a concurrent
// redemption race has exactly one winner.
func (s *Service) VerifyAndRedeem(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrEmptyCode
	}

	record, err := s.store.GetUnusedDownloadCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, db.ErrCodeNotFound) {
			s.logger.Debug().Str("code", code).Msg("download code not found or already used")
			return ErrCodeInvalidOrUsed
		}
		return fmt.Errorf("look up download code: %w", err)
	}

	if record.IsExpired() {
		s.logger.Warn().
			Str("code_id", record.ID.String()).
			Time("expired_at", record.ExpiresAt).
			Msg("download code expired")
		return ErrCodeExpired
	}

	if err := s.store.MarkDownloadCodeUsed(ctx, record.ID, time.Now()); err != nil {
		if errors.Is(err, db.ErrCodeNotFound) {
			// Lost the race to a concurrent redemption.
			s.logger.Debug().Str("code_id", record.ID.String()).Msg("download code redeemed concurrently")
			return ErrCodeInvalidOrUsed
		}
		return fmt.Errorf("mark download code used: %w", err)
	}

	s.logger.Info().Str("code_id", record.ID.String()).Msg("download code redeemed")
	return nil
}

// Stats returns aggregate counts over all issued codes.
func (s *Service) Stats(ctx context.Context) (models.CodeStats, error) {
	stats, err := s.store.CountDownloadCodes(ctx)
	if err != nil {
		return models.CodeStats{}, fmt.Errorf("count download codes: %w", err)
	}
	return stats, nil
}

// PurgeExpired deletes expired unused codes and returns how many were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteExpiredDownloadCodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired download codes: %w", err)
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("expired download codes purged")
	}
	return deleted, nil
}

// generateRandomCode generates a cryptographically secure random code.
func generateRandomCode(length int) (string, error) {
	charsetLen := big.NewInt(int64(len(CodeAlphabet)))
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		result[i] = CodeAlphabet[num.Int64()]
	}

	return string(result), nil
}
