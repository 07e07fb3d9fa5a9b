package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/card-recommender/internal/importer"
)

const healthTimeout = 5 * time.Second

// HealthHandler reports service health
type HealthHandler struct {
	catalogHealth func(ctx context.Context) error
	importService *importer.Service
}

// NewHealthHandler creates a new health handler. Either argument may be nil.
func NewHealthHandler(catalogHealth func(ctx context.Context) error, importService *importer.Service) *HealthHandler {
	return &HealthHandler{
		catalogHealth: catalogHealth,
		importService: importService,
	}
}

// GetSystemHealth returns overall system health status. Only the catalog
// source decides the status code; importer trouble is reported alongside.
func (h *HealthHandler) GetSystemHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	var err error
	if h.catalogHealth != nil {
		err = h.catalogHealth(ctx)
	}

	response := gin.H{
		"healthy":   err == nil,
		"timestamp": time.Now(),
	}
	if h.importService != nil {
		response["import_health"] = h.importService.GetHealthStatus()
	}

	if err != nil {
		response["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
