package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkwell-labs/inkwell/internal/models"
)

var (
	// ErrCodeNotFound is returned when no matching unused code exists, or when
	// a conditional mark-used update affects no rows.
	ErrCodeNotFound = errors.New("download code not found")
	// ErrDuplicateCode is returned when an insert collides with an existing
	// code string. Callers regenerate and retry.
	ErrDuplicateCode = errors.New("download code already exists")
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// CreateDownloadCode inserts a new download code record.
func (db *DB) CreateDownloadCode(ctx context.Context, code *models.DownloadCode) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO download_codes (id, code, created_at, expires_at, used, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, code.ID, code.Code, code.CreatedAt, code.ExpiresAt, code.Used, code.UsedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateCode
		}
		return fmt.Errorf("create download code: %w", err)
	}
	return nil
}

// CreateDownloadCodesTx inserts a batch of download codes in a single
// transaction. Either every code is persisted or none are.
func (db *DB) CreateDownloadCodesTx(ctx context.Context, codes []*models.DownloadCode) error {
	return db.ExecTx(ctx, func(tx pgx.Tx) error {
		for _, code := range codes {
			_, err := tx.Exec(ctx, `
				INSERT INTO download_codes (id, code, created_at, expires_at, used, used_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, code.ID, code.Code, code.CreatedAt, code.ExpiresAt, code.Used, code.UsedAt)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
					return ErrDuplicateCode
				}
				return fmt.Errorf("create download code %s: %w", code.Code, err)
			}
		}
		return nil
	})
}

// GetUnusedDownloadCodeByCode returns the unused record matching the given
// code string. Used records are invisible to this lookup.
func (db *DB) GetUnusedDownloadCodeByCode(ctx context.Context, code string) (*models.DownloadCode, error) {
	var d models.DownloadCode
	err := db.Pool.QueryRow(ctx, `
		SELECT id, code, created_at, expires_at, used, used_at
		FROM download_codes
		WHERE code = $1 AND used = FALSE
	`, code).Scan(&d.ID, &d.Code, &d.CreatedAt, &d.ExpiresAt, &d.Used, &d.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("get download code: %w", err)
	}
	return &d, nil
}

// MarkDownloadCodeUsed marks a download code as redeemed. The update is
// conditional on the code still being unused, so concurrent redemptions of
// the same code succeed exactly once; losers get ErrCodeNotFound.
func (db *DB) MarkDownloadCodeUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE download_codes
		SET used = TRUE, used_at = $2
		WHERE id = $1 AND used = FALSE
	`, id, usedAt)
	if err != nil {
		return fmt.Errorf("mark download code used: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}

// CountDownloadCodes returns aggregate counts over all issued codes. Expired
// counts only unused codes past their expiry; redeemed codes stay in the used
// bucket regardless of expiry.
func (db *DB) CountDownloadCodes(ctx context.Context) (models.CodeStats, error) {
	var stats models.CodeStats
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE used),
			COUNT(*) FILTER (WHERE NOT used AND expires_at < NOW())
		FROM download_codes
	`).Scan(&stats.Total, &stats.Used, &stats.Expired)
	if err != nil {
		return models.CodeStats{}, fmt.Errorf("count download codes: %w", err)
	}
	return stats, nil
}

// DeleteExpiredDownloadCodes removes unused codes whose expiry has passed and
// returns the number of rows deleted. Redeemed codes are kept for history.
func (db *DB) DeleteExpiredDownloadCodes(ctx context.Context) (int64, error) {
	result, err := db.Pool.Exec(ctx, `
		DELETE FROM download_codes
		WHERE used = FALSE AND expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("delete expired download codes: %w", err)
	}
	return result.RowsAffected(), nil
}
