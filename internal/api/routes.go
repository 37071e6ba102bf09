// Package api provides the HTTP API for the Inkwell server.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/api/handlers"
	"github.com/inkwell-labs/inkwell/internal/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/codes"
	"github.com/inkwell-labs/inkwell/internal/config"
	"github.com/inkwell-labs/inkwell/internal/db"
	"github.com/inkwell-labs/inkwell/internal/metrics"
	"github.com/inkwell-labs/inkwell/internal/settings"
)

// Config holds configuration for the API router.
type Config struct {
	// Environment controls environment-dependent behavior such as CORS policy.
	Environment config.Environment
	// AllowedOrigins for CORS. Empty means all origins allowed in dev mode.
	AllowedOrigins []string
	// RateLimitRequests is the number of requests allowed per period.
	RateLimitRequests int64
	// RateLimitPeriod is the duration string for rate limiting (e.g. "1m", "1h").
	RateLimitPeriod string
	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64
	// Version information for the version endpoint.
	Version   string
	Commit    string
	BuildDate string
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		Environment:       config.EnvDevelopment,
		AllowedOrigins:    []string{},
		RateLimitRequests: 120,
		RateLimitPeriod:   "1m",
		MaxBodyBytes:      1 << 20,
		Version:           "dev",
		Commit:            "unknown",
		BuildDate:         "unknown",
	}
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
	db     *db.DB
}

// NewRouter creates a new Router with the given dependencies.
func NewRouter(cfg Config, database *db.DB, logger zerolog.Logger) (*Router, error) {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
		db:     database,
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))
	r.Engine.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Environment))

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod)
	if err != nil {
		return nil, err
	}
	r.Engine.Use(rateLimiter)
	r.Engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	// Health and version endpoints
	healthHandler := handlers.NewHealthHandler(database, logger)
	healthHandler.RegisterPublicRoutes(r.Engine)

	versionHandler := handlers.NewVersionHandler(cfg.Version, cfg.Commit, cfg.BuildDate, logger)
	versionHandler.RegisterPublicRoutes(r.Engine)

	// Prometheus metrics endpoint
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewCodeCollector(database, logger),
	)
	r.Engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API routes
	api := r.Engine.Group("/api")

	codeService := codes.NewService(database, logger)
	handlers.NewCodesHandler(codeService, logger).RegisterRoutes(api)

	settingsService := settings.NewService(database, logger)
	handlers.NewSettingsHandler(settingsService, logger).RegisterRoutes(api)

	return r, nil
}
