package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/internal/settings"
)

// SettingsService defines the business settings operations used by the handler.
type SettingsService interface {
	Get(ctx context.Context) (models.SettingsPayload, error)
	Save(ctx context.Context, in settings.Input) error
	Import(ctx context.Context, in settings.Input) error
	Export(ctx context.Context, format settings.Format) (*settings.Export, error)
}

// SettingsHandler handles business settings HTTP endpoints.
type SettingsHandler struct {
	service SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// RegisterRoutes registers settings routes on the given router group.
func (h *SettingsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/get-settings", h.Get)
	r.POST("/save-settings", h.Save)
	r.GET("/export-settings", h.Export)
	r.POST("/import-settings", h.Import)
}

// ImportSettingsRequest is the request body for importing settings. The
// payload nests the profile under "settings", matching the export document.
type ImportSettingsRequest struct {
	Settings settings.Input `json:"settings"`
}

// Get returns the stored business profile, or defaults when none exists.
// GET /api/get-settings
func (h *SettingsHandler) Get(c *gin.Context) {
	payload, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load business settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": payload,
	})
}

// Save fully overwrites the business profile.
// POST /api/save-settings
func (h *SettingsHandler) Save(c *gin.Context) {
	var in settings.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if err := h.service.Save(c.Request.Context(), in); err != nil {
		if errors.Is(err, settings.ErrInvalidTaxRate) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   settings.ErrInvalidTaxRate.Error(),
			})
			return
		}
		h.logger.Error().Err(err).Msg("failed to save business settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings saved successfully",
	})
}

// Export returns the business profile as a downloadable document.
// GET /api/export-settings?format=json|yaml
func (h *SettingsHandler) Export(c *gin.Context) {
	format, err := settings.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	exp, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		if errors.Is(err, settings.ErrNoSettings) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "No settings found",
			})
			return
		}
		h.logger.Error().Err(err).Msg("failed to export business settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to export settings",
		})
		return
	}

	// YAML exports are served as the document itself; the JSON format keeps
	// the envelope response so clients can read data and filename apart.
	if format == settings.FormatYAML {
		body, err := exp.Marshal(format)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to marshal settings export")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to export settings",
			})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
		c.Data(http.StatusOK, "application/x-yaml", body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     exp.Data,
		"filename": exp.Filename,
	})
}

// Import overwrites the business profile from an exported document.
// POST /api/import-settings
func (h *SettingsHandler) Import(c *gin.Context) {
	var req ImportSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if err := h.service.Import(c.Request.Context(), req.Settings); err != nil {
		if errors.Is(err, settings.ErrInvalidTaxRate) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   settings.ErrInvalidTaxRate.Error(),
			})
			return
		}
		h.logger.Error().Err(err).Msg("failed to import business settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to import settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings imported successfully",
	})
}
