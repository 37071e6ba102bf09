package models

import "time"

// BusinessSettingsID is the fixed primary key of the single settings row.
// The business profile is a singleton record; every read and upsert targets
// this key.
const BusinessSettingsID = 1

// DefaultCurrency is the currency assigned when none has been configured.
const DefaultCurrency = "USD"

// BusinessSettings holds the business profile applied to generated documents.
type BusinessSettings struct {
	ID              int       `json:"id"`
	BusinessName    string    `json:"businessName"`
	BusinessAddress string    `json:"businessAddress"`
	BusinessPhone   string    `json:"businessPhone"`
	BusinessEmail   string    `json:"businessEmail"`
	BusinessLogoURL string    `json:"businessLogoUrl"`
	SignatureURL    string    `json:"signatureUrl"`
	TaxRate         float64   `json:"taxRate"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBusinessSettings creates the singleton settings record with defaults.
func NewBusinessSettings() *BusinessSettings {
	now := time.Now()
	return &BusinessSettings{
		ID:        BusinessSettingsID,
		Currency:  DefaultCurrency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SettingsPayload is the wire representation of the business profile. It is
// what GET /api/get-settings returns and what exports embed; timestamps are
// internal and never part of it.
type SettingsPayload struct {
	BusinessName    string  `json:"businessName" yaml:"businessName"`
	BusinessAddress string  `json:"businessAddress" yaml:"businessAddress"`
	BusinessPhone   string  `json:"businessPhone" yaml:"businessPhone"`
	BusinessEmail   string  `json:"businessEmail" yaml:"businessEmail"`
	BusinessLogoURL string  `json:"businessLogoUrl" yaml:"businessLogoUrl"`
	SignatureURL    string  `json:"signatureUrl" yaml:"signatureUrl"`
	TaxRate         float64 `json:"taxRate" yaml:"taxRate"`
	Currency        string  `json:"currency" yaml:"currency"`
}

// DefaultSettingsPayload returns the payload served before any settings have
// been saved. Reading defaults never creates a record.
func DefaultSettingsPayload() SettingsPayload {
	return SettingsPayload{Currency: DefaultCurrency}
}

// Payload converts the stored record to its wire representation.
func (b *BusinessSettings) Payload() SettingsPayload {
	return SettingsPayload{
		BusinessName:    b.BusinessName,
		BusinessAddress: b.BusinessAddress,
		BusinessPhone:   b.BusinessPhone,
		BusinessEmail:   b.BusinessEmail,
		BusinessLogoURL: b.BusinessLogoURL,
		SignatureURL:    b.SignatureURL,
		TaxRate:         b.TaxRate,
		Currency:        b.Currency,
	}
}
