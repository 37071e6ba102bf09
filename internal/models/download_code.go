package models

import (
	"time"

	"github.com/google/uuid"
)

// DownloadCode represents a one-time code that grants a single document download.
type DownloadCode struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// NewDownloadCode creates a new unused download code expiring at the given time.
func NewDownloadCode(code string, expiresAt time.Time) *DownloadCode {
	return &DownloadCode{
		ID:        uuid.New(),
		Code:      code,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

// IsExpired returns true if the code has expired.
func (d *DownloadCode) IsExpired() bool {
	return time.Now().After(d.ExpiresAt)
}

// IsUsed returns true if the code has been redeemed.
func (d *DownloadCode) IsUsed() bool {
	return d.Used
}

// IsRedeemable returns true if the code is neither expired nor redeemed.
func (d *DownloadCode) IsRedeemable() bool {
	return !d.IsExpired() && !d.IsUsed()
}

// MarkUsed marks the code as redeemed at the given time.
func (d *DownloadCode) MarkUsed(usedAt time.Time) {
	d.Used = true
	d.UsedAt = &usedAt
}

// CodeStats summarizes the state of all issued download codes.
type CodeStats struct {
	Total   int64 `json:"total"`
	Used    int64 `json:"used"`
	Expired int64 `json:"expired"`
}

// IssuedCode is the wire representation of a freshly generated code.
type IssuedCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
