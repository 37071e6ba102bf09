package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type mockHealthDB struct {
	pingErr error
}

func (m *mockHealthDB) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockHealthDB) Health() map[string]any {
	return map[string]any{"total_conns": 5}
}

func setupHealthTestRouter(db DatabaseHealthChecker) *gin.Engine {
	r := SetupTestRouter()
	handler := NewHealthHandler(db, zerolog.Nop())
	handler.RegisterPublicRoutes(r)
	return r
}

func TestHealthOverall(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := setupHealthTestRouter(&mockHealthDB{})

		resp := DoRequest(r, JSONRequest("GET", "/health", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
	})

	t.Run("unhealthy database", func(t *testing.T) {
		r := setupHealthTestRouter(&mockHealthDB{pingErr: errors.New("connection refused")})

		resp := DoRequest(r, JSONRequest("GET", "/health", nil))
		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", resp.Code)
		}

		body, _ := decodeBody(resp)
		if body["status"] != string(HealthStatusUnhealthy) {
			t.Errorf("expected unhealthy status, got %v", body["status"])
		}
	})
}

func TestHealthDatabase(t *testing.T) {
	t.Run("healthy includes pool stats", func(t *testing.T) {
		r := setupHealthTestRouter(&mockHealthDB{})

		resp := DoRequest(r, JSONRequest("GET", "/health/db", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}

		body, _ := decodeBody(resp)
		checks := body["checks"].(map[string]any)
		dbCheck := checks["database"].(map[string]any)
		details, ok := dbCheck["details"].(map[string]any)
		if !ok {
			t.Fatalf("expected pool details, got %v", dbCheck["details"])
		}
		if details["total_conns"] != float64(5) {
			t.Errorf("unexpected pool stats: %v", details)
		}
	})

	t.Run("ping failure returns 503", func(t *testing.T) {
		r := setupHealthTestRouter(&mockHealthDB{pingErr: errors.New("connection refused")})

		resp := DoRequest(r, JSONRequest("GET", "/health/db", nil))
		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", resp.Code)
		}
	})

	t.Run("nil database returns 503", func(t *testing.T) {
		r := setupHealthTestRouter(nil)

		resp := DoRequest(r, JSONRequest("GET", "/health/db", nil))
		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", resp.Code)
		}
	})
}

func TestVersion(t *testing.T) {
	r := SetupTestRouter()
	handler := NewVersionHandler("1.2.3", "abc123", "2026-08-29", zerolog.Nop())
	handler.RegisterPublicRoutes(r)

	resp := DoRequest(r, JSONRequest("GET", "/version", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body, _ := decodeBody(resp)
	if body["version"] != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %v", body["version"])
	}
	if body["commit"] != "abc123" {
		t.Errorf("expected commit abc123, got %v", body["commit"])
	}
}
