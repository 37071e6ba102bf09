// Package handlers implements the HTTP endpoints of the Inkwell server.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/codes"
	"github.com/inkwell-labs/inkwell/internal/models"
)

// CodeService defines the download code operations used by the handler.
type CodeService interface {
	GenerateSingle(ctx context.Context) (*models.DownloadCode, error)
	GenerateBulk(ctx context.Context, quantity int) ([]*models.DownloadCode, error)
	VerifyAndRedeem(ctx context.Context, code string) error
	Stats(ctx context.Context) (models.CodeStats, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// CodesHandler handles download code HTTP endpoints.
type CodesHandler struct {
	service CodeService
	logger  zerolog.Logger
}

// NewCodesHandler creates a new CodesHandler.
func NewCodesHandler(service CodeService, logger zerolog.Logger) *CodesHandler {
	return &CodesHandler{
		service: service,
		logger:  logger.With().Str("component", "codes_handler").Logger(),
	}
}

// RegisterRoutes registers download code routes on the given router group.
func (h *CodesHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/generate-code", h.Generate)
	r.POST("/generate-bulk-codes", h.GenerateBulk)
	r.POST("/verify-code", h.Verify)
	r.GET("/code-stats", h.Stats)
	r.DELETE("/expired-codes", h.PurgeExpired)
}

// GenerateBulkRequest is the request body for bulk code generation.
type GenerateBulkRequest struct {
	Quantity int `json:"quantity"`
}

// VerifyCodeRequest is the request body for code redemption.
type VerifyCodeRequest struct {
	Code string `json:"code"`
}

// Generate issues one download code valid for 24 hours.
// POST /api/generate-code
func (h *CodesHandler) Generate(c *gin.Context) {
	code, err := h.service.GenerateSingle(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate download code")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate code",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"code":       code.Code,
		"expires_at": code.ExpiresAt,
	})
}

// GenerateBulk issues a batch of download codes valid for 365 days.
// POST /api/generate-bulk-codes
func (h *CodesHandler) GenerateBulk(c *gin.Context) {
	var req GenerateBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   codes.ErrInvalidQuantity.Error(),
		})
		return
	}

	batch, err := h.service.GenerateBulk(c.Request.Context(), req.Quantity)
	if err != nil {
		if errors.Is(err, codes.ErrInvalidQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   codes.ErrInvalidQuantity.Error(),
			})
			return
		}
		h.logger.Error().Err(err).Int("quantity", req.Quantity).Msg("failed to generate bulk download codes")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate codes",
		})
		return
	}

	issued := make([]models.IssuedCode, 0, len(batch))
	for _, code := range batch {
		issued = append(issued, models.IssuedCode{
			Code:      code.Code,
			ExpiresAt: code.ExpiresAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"codes":      issued,
		"expires_at": batch[len(batch)-1].ExpiresAt,
	})
}

// Verify redeems a download code. Redemption is one-time; invalid, used and
// expired codes are all rejected with 400.
// POST /api/verify-code
func (h *CodesHandler) Verify(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   codes.ErrEmptyCode.Error(),
		})
		return
	}

	err := h.service.VerifyAndRedeem(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, codes.ErrEmptyCode),
			errors.Is(err, codes.ErrCodeInvalidOrUsed),
			errors.Is(err, codes.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
		default:
			h.logger.Error().Err(err).Msg("failed to verify download code")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to verify code",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Code verified successfully",
	})
}

// Stats returns aggregate counts over all issued codes.
// GET /api/code-stats
func (h *CodesHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count download codes")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load code stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// PurgeExpired deletes expired unused codes.
// DELETE /api/expired-codes
func (h *CodesHandler) PurgeExpired(c *gin.Context) {
	deleted, err := h.service.PurgeExpired(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to purge expired download codes")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to purge expired codes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}
