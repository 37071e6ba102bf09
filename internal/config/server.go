// Package config provides configuration management for Inkwell.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment       Environment
	ListenAddr        string   // address the HTTP server binds to (default: ":8080")
	CORSOrigins       []string // allowed CORS origins, comma-separated in CORS_ORIGINS
	RateLimitRequests int64    // requests allowed per rate limit period (default: 120)
	RateLimitPeriod   string   // rate limit window as a duration string (default: "1m")
	MaxBodyBytes      int64    // maximum request body size in bytes (default: 1 MiB)
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	rateLimitRequests := int64(getEnvInt("RATE_LIMIT_REQUESTS", 120))
	if rateLimitRequests <= 0 {
		rateLimitRequests = 120
	}

	rateLimitPeriod := strings.TrimSpace(os.Getenv("RATE_LIMIT_PERIOD"))
	if rateLimitPeriod == "" {
		rateLimitPeriod = "1m"
	}

	maxBodyBytes := int64(getEnvInt("MAX_BODY_BYTES", 1<<20))
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}

	return ServerConfig{
		Environment:       env,
		ListenAddr:        listenAddr,
		CORSOrigins:       splitOrigins(os.Getenv("CORS_ORIGINS")),
		RateLimitRequests: rateLimitRequests,
		RateLimitPeriod:   rateLimitPeriod,
		MaxBodyBytes:      maxBodyBytes,
	}
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
