package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/codes"
	"github.com/inkwell-labs/inkwell/internal/models"
)

type mockCodeService struct {
	single    *models.DownloadCode
	singleErr error
	bulk      []*models.DownloadCode
	bulkErr   error
	verifyErr error
	stats     models.CodeStats
	statsErr  error
	purged    int64
	purgeErr  error

	verifiedWith string
	bulkQuantity int
}

func (m *mockCodeService) GenerateSingle(_ context.Context) (*models.DownloadCode, error) {
	if m.singleErr != nil {
		return nil, m.singleErr
	}
	return m.single, nil
}

func (m *mockCodeService) GenerateBulk(_ context.Context, quantity int) ([]*models.DownloadCode, error) {
	m.bulkQuantity = quantity
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	return m.bulk, nil
}

func (m *mockCodeService) VerifyAndRedeem(_ context.Context, code string) error {
	m.verifiedWith = code
	return m.verifyErr
}

func (m *mockCodeService) Stats(_ context.Context) (models.CodeStats, error) {
	if m.statsErr != nil {
		return models.CodeStats{}, m.statsErr
	}
	return m.stats, nil
}

func (m *mockCodeService) PurgeExpired(_ context.Context) (int64, error) {
	if m.purgeErr != nil {
		return 0, m.purgeErr
	}
	return m.purged, nil
}

func setupCodesTestRouter(svc CodeService) *gin.Engine {
	r := SetupTestRouter()
	handler := NewCodesHandler(svc, zerolog.Nop())
	api := r.Group("/api")
	handler.RegisterRoutes(api)
	return r
}

func TestGenerateCode(t *testing.T) {
	t.Run("returns code and expiry", func(t *testing.T) {
		expires := time.Now().Add(24 * time.Hour)
		svc := &mockCodeService{single: models.NewDownloadCode("AB12CD34", expires)}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/generate-code", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}

		body, err := decodeBody(resp)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["success"] != true {
			t.Error("expected success true")
		}
		if body["code"] != "AB12CD34" {
			t.Errorf("expected code AB12CD34, got %v", body["code"])
		}
		if _, ok := body["expires_at"]; !ok {
			t.Error("expected expires_at in response")
		}
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		svc := &mockCodeService{singleErr: errors.New("db down")}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/generate-code", nil))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.Code)
		}

		body, _ := decodeBody(resp)
		if body["success"] != false {
			t.Error("expected success false")
		}
		if body["error"] != "Failed to generate code" {
			t.Errorf("unexpected error message: %v", body["error"])
		}
	})
}

func TestGenerateBulkCodes(t *testing.T) {
	t.Run("returns all codes", func(t *testing.T) {
		expires := time.Now().Add(365 * 24 * time.Hour)
		svc := &mockCodeService{bulk: []*models.DownloadCode{
			models.NewDownloadCode("AAAA1111", expires),
			models.NewDownloadCode("BBBB2222", expires),
		}}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/generate-bulk-codes", map[string]any{"quantity": 2}))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		if svc.bulkQuantity != 2 {
			t.Errorf("expected quantity 2 passed to service, got %d", svc.bulkQuantity)
		}

		body, _ := decodeBody(resp)
		issued, ok := body["codes"].([]any)
		if !ok || len(issued) != 2 {
			t.Fatalf("expected 2 codes, got %v", body["codes"])
		}
		if _, ok := body["expires_at"]; !ok {
			t.Error("expected expires_at in response")
		}
	})

	t.Run("invalid quantity returns 400", func(t *testing.T) {
		svc := &mockCodeService{bulkErr: codes.ErrInvalidQuantity}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/generate-bulk-codes", map[string]any{"quantity": 0}))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}

		body, _ := decodeBody(resp)
		if body["success"] != false {
			t.Error("expected success false")
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		svc := &mockCodeService{}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/generate-bulk-codes", "not-an-object"))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
	})

	t.Run("storage failure returns 500", func(t *testing.T) {
		svc := &mockCodeService{bulkErr: errors.New("db down")}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/generate-bulk-codes", map[string]any{"quantity": 5}))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.Code)
		}
	})
}

func TestVerifyCode(t *testing.T) {
	t.Run("valid code redeems", func(t *testing.T) {
		svc := &mockCodeService{}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/verify-code", map[string]any{"code": "AB12CD34"}))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		if svc.verifiedWith != "AB12CD34" {
			t.Errorf("expected code passed to service, got %q", svc.verifiedWith)
		}

		body, _ := decodeBody(resp)
		if body["message"] != "Code verified successfully" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})

	t.Run("rejections map to 400", func(t *testing.T) {
		for _, tc := range []struct {
			name string
			err  error
		}{
			{"empty code", codes.ErrEmptyCode},
			{"invalid or used", codes.ErrCodeInvalidOrUsed},
			{"expired", codes.ErrCodeExpired},
		} {
			t.Run(tc.name, func(t *testing.T) {
				svc := &mockCodeService{verifyErr: tc.err}
				r := setupCodesTestRouter(svc)

				resp := DoRequest(r, JSONRequest("POST", "/api/verify-code", map[string]any{"code": "whatever"}))
				if resp.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d", resp.Code)
				}

				body, _ := decodeBody(resp)
				if body["success"] != false {
					t.Error("expected success false")
				}
				if body["error"] != tc.err.Error() {
					t.Errorf("expected error %q, got %v", tc.err.Error(), body["error"])
				}
			})
		}
	})

	t.Run("storage failure returns 500", func(t *testing.T) {
		svc := &mockCodeService{verifyErr: errors.New("db down")}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("POST", "/api/verify-code", map[string]any{"code": "AB12CD34"}))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.Code)
		}
	})
}

func TestCodeStats(t *testing.T) {
	t.Run("returns counts", func(t *testing.T) {
		svc := &mockCodeService{stats: models.CodeStats{Total: 10, Used: 4, Expired: 2}}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("GET", "/api/code-stats", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}

		body, _ := decodeBody(resp)
		stats, ok := body["stats"].(map[string]any)
		if !ok {
			t.Fatalf("expected stats object, got %v", body["stats"])
		}
		if stats["total"] != float64(10) || stats["used"] != float64(4) || stats["expired"] != float64(2) {
			t.Errorf("unexpected stats: %v", stats)
		}
	})

	t.Run("storage failure returns 500", func(t *testing.T) {
		svc := &mockCodeService{statsErr: errors.New("db down")}
		r := setupCodesTestRouter(svc)

		resp := DoRequest(r, JSONRequest("GET", "/api/code-stats", nil))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.Code)
		}
	})
}

func TestPurgeExpiredCodes(t *testing.T) {
	svc := &mockCodeService{purged: 7}
	r := setupCodesTestRouter(svc)

	resp := DoRequest(r, JSONRequest("DELETE", "/api/expired-codes", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	body, _ := decodeBody(resp)
	if body["deleted"] != float64(7) {
		t.Errorf("expected deleted 7, got %v", body["deleted"])
	}
}
