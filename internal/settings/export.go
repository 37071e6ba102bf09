package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkwell-labs/inkwell/internal/db"
	"github.com/inkwell-labs/inkwell/internal/models"
)

// Format represents the export serialization format.
type Format string

const (
	// FormatJSON exports the settings as JSON.
	FormatJSON Format = "json"
	// FormatYAML exports the settings as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat maps a query-string value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ExportData is the exported settings document: every profile field plus the
// moment of export. ExportDate is not a settings field and is dropped on
// re-import.
type ExportData struct {
	models.SettingsPayload `yaml:",inline"`
	ExportDate             time.Time `json:"exportDate" yaml:"exportDate"`
}

// Export is the result of exporting the business profile.
type Export struct {
	Data     ExportData
	Filename string
}

// Export returns the stored business profile as a downloadable document. It
// fails with ErrNoSettings when nothing has been saved yet; exporting never
// creates a record.
func (s *Service) Export(ctx context.Context, format Format) (*Export, error) {
	stored, err := s.store.GetBusinessSettings(ctx)
	if err != nil {
		if errors.Is(err, db.ErrSettingsNotFound) {
			return nil, ErrNoSettings
		}
		return nil, fmt.Errorf("get business settings: %w", err)
	}

	now := time.Now()
	exp := &Export{
		Data: ExportData{
			SettingsPayload: stored.Payload(),
			ExportDate:      now,
		},
		Filename: fmt.Sprintf("business_settings_%s.%s", now.Format("20060102_150405"), format),
	}

	s.logger.Info().Str("filename", exp.Filename).Msg("business settings exported")
	return exp, nil
}

// Marshal serializes the export document in its format.
func (e *Export) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(e.Data)
	default:
		return json.MarshalIndent(e.Data, "", "  ")
	}
}
