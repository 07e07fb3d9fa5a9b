package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/card-recommender/internal/importer"
	"github.com/ajharbinger/card-recommender/internal/models"
)

const importTimeout = 60 * time.Second

// ImportHandler runs catalog imports from issuer pages
type ImportHandler struct {
	importService *importer.Service
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *importer.Service) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// ImportCatalog fetches an issuer page and stores the cards found on it
func (h *ImportHandler) ImportCatalog(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), importTimeout)
	defer cancel()

	result, err := h.importService.Import(ctx, importer.Source{URL: req.URL, Issuer: req.Issuer}, req.DryRun)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.DryRun || result.Stored == 0 {
		status = http.StatusOK
	}

	c.JSON(status, gin.H{
		"source":   result.Source,
		"parsed":   result.Parsed,
		"stored":   result.Stored,
		"dry_run":  result.DryRun,
		"cards":    models.NewCardViews(result.Cards),
		"rejected": result.Rejected,
		"warnings": result.Warnings,
	})
}

// GetImportHealth returns detailed importer health status
func (h *ImportHandler) GetImportHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"health_status": h.importService.GetHealthStatus(),
		"timestamp":     time.Now(),
	})
}

// ResetImportHealth resets the importer health monitor
func (h *ImportHandler) ResetImportHealth(c *gin.Context) {
	h.importService.ResetHealthMonitor()

	c.JSON(http.StatusOK, gin.H{
		"message":   "Import health monitor reset successfully",
		"timestamp": time.Now(),
	})
}
