package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/card-recommender/internal/importer"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/services"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

// Dependencies are the collaborators the HTTP layer needs
type Dependencies struct {
	Config   *config.Config
	Services *services.Services
	// Importer is optional; import routes are only mounted when it is set
	Importer *importer.Service
	Metrics  *metrics.Metrics
	// CatalogHealth checks the catalog data source, nil when it cannot fail
	CatalogHealth func(ctx context.Context) error
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, deps Dependencies) error {
	if deps.Config == nil || deps.Services == nil {
		return fmt.Errorf("config and services are required")
	}

	recommendationHandler := NewRecommendationHandler(deps.Services.Recommendation)
	catalogHandler := NewCatalogHandler(deps.Services.Catalog)
	healthHandler := NewHealthHandler(deps.CatalogHealth, deps.Importer)

	r.GET("/health", healthHandler.GetSystemHealth)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/recommendations", recommendationHandler.Recommend)
		public.GET("/cards", catalogHandler.ListCards)
		public.GET("/cards/:id", catalogHandler.GetCard)
	}

	if !deps.Config.EnableCatalogAdmin {
		return nil
	}

	// Catalog administration
	admin := r.Group("/api/v1")
	{
		admin.POST("/cards", catalogHandler.CreateCard)
		admin.PUT("/cards/:id", catalogHandler.UpdateCard)
		admin.DELETE("/cards/:id", catalogHandler.DeleteCard)

		if deps.Importer != nil {
			importHandler := NewImportHandler(deps.Importer)
			admin.POST("/cards/import", importHandler.ImportCatalog)
			admin.GET("/import/health", importHandler.GetImportHealth)
			admin.POST("/import/health/reset", importHandler.ResetImportHealth)
		}
	}

	return nil
}
