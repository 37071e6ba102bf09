// Package metrics exposes Prometheus metrics for the code store.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/models"
)

// collectTimeout bounds the store query during a scrape.
const collectTimeout = 5 * time.Second

// StatsSource defines the interface for retrieving code counts.
type StatsSource interface {
	CountDownloadCodes(ctx context.Context) (models.CodeStats, error)
}

// CodeCollector is a prometheus.Collector reporting download code counts.
type CodeCollector struct {
	source StatsSource
	logger zerolog.Logger

	issued   *prometheus.Desc
	redeemed *prometheus.Desc
	expired  *prometheus.Desc
}

// NewCodeCollector creates a new CodeCollector.
func NewCodeCollector(source StatsSource, logger zerolog.Logger) *CodeCollector {
	return &CodeCollector{
		source: source,
		logger: logger.With().Str("component", "code_collector").Logger(),
		issued: prometheus.NewDesc(
			"inkwell_download_codes_issued",
			"Total number of download codes ever issued.",
			nil, nil,
		),
		redeemed: prometheus.NewDesc(
			"inkwell_download_codes_redeemed",
			"Number of download codes that have been redeemed.",
			nil, nil,
		),
		expired: prometheus.NewDesc(
			"inkwell_download_codes_expired",
			"Number of unredeemed download codes past their expiry.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *CodeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.issued
	ch <- c.redeemed
	ch <- c.expired
}

// Collect implements prometheus.Collector.
func (c *CodeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.source.CountDownloadCodes(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to collect code stats")
		ch <- prometheus.NewInvalidMetric(c.issued, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.issued, prometheus.GaugeValue, float64(stats.Total))
	ch <- prometheus.MustNewConstMetric(c.redeemed, prometheus.GaugeValue, float64(stats.Used))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.GaugeValue, float64(stats.Expired))
}
