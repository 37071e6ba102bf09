package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/models"
)

type mockStatsSource struct {
	stats models.CodeStats
	err   error
}

func (m *mockStatsSource) CountDownloadCodes(_ context.Context) (models.CodeStats, error) {
	if m.err != nil {
		return models.CodeStats{}, m.err
	}
	return m.stats, nil
}

func gatherGauges(t *testing.T, source StatsSource) map[string]float64 {
	t.Helper()

	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCodeCollector(source, zerolog.Nop())); err != nil {
		t.Fatalf("register collector: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	values := make(map[string]float64)
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_GAUGE {
			continue
		}
		for _, m := range mf.GetMetric() {
			values[mf.GetName()] = m.GetGauge().GetValue()
		}
	}
	return values
}

func TestCodeCollector(t *testing.T) {
	source := &mockStatsSource{stats: models.CodeStats{Total: 42, Used: 17, Expired: 5}}

	values := gatherGauges(t, source)

	if got := values["inkwell_download_codes_issued"]; got != 42 {
		t.Errorf("issued: expected 42, got %v", got)
	}
	if got := values["inkwell_download_codes_redeemed"]; got != 17 {
		t.Errorf("redeemed: expected 17, got %v", got)
	}
	if got := values["inkwell_download_codes_expired"]; got != 5 {
		t.Errorf("expired: expected 5, got %v", got)
	}
}

func TestCodeCollectorStoreFailure(t *testing.T) {
	source := &mockStatsSource{err: errors.New("connection refused")}

	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCodeCollector(source, zerolog.Nop())); err != nil {
		t.Fatalf("register collector: %v", err)
	}

	if _, err := reg.Gather(); err == nil {
		t.Error("expected gather to report the store failure")
	}
}
