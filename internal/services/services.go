package services

import (
	"context"

	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/recommend"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/pkg/config"
)

// Services contains all application services
type Services struct {
	Recommendation RecommendationService
	Catalog        CatalogService
}

// RecommendationService defines the interface for recommendation requests
type RecommendationService interface {
	Recommend(ctx context.Context, profile recommend.UserProfile) (*recommend.Result, error)
}

// CatalogService defines the interface for card catalog management
type CatalogService interface {
	List(ctx context.Context, query repository.CatalogQuery) ([]recommend.CardRecord, error)
	Search(ctx context.Context, rewardType string) ([]recommend.CardRecord, error)
	Get(ctx context.Context, id string) (*recommend.CardRecord, error)
	Create(ctx context.Context, card *recommend.CardRecord) error
	Update(ctx context.Context, card *recommend.CardRecord) error
	Delete(ctx context.Context, id string) error
	// Seed upserts every card in one transaction and returns the count written
	Seed(ctx context.Context, cards []recommend.CardRecord) (int, error)
}

// NewServices creates a new Services instance with all dependencies
func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger, m *metrics.Metrics) *Services {
	engine := NewEngine(cfg)

	return &Services{
		Recommendation: NewRecommendationService(repos, engine, RecommendationOptions{
			CatalogTimeout: cfg.CatalogTimeout,
			Pushdown:       cfg.CatalogPushdown,
		}, log, m),
		Catalog: NewCatalogService(repos, engine.Bounds(), log),
	}
}

// NewEngine builds the recommendation engine from configuration
func NewEngine(cfg *config.Config) *recommend.Engine {
	bounds := recommend.DefaultBounds()
	if cfg.MaxCreditScore > 0 {
		bounds.MaxCreditScore = cfg.MaxCreditScore
	}
	if names := cfg.GetSpendCategories(); len(names) > 0 {
		bounds.Categories = make([]recommend.Category, len(names))
		for i, name := range names {
			bounds.Categories[i] = recommend.Category(name)
		}
	}
	return recommend.NewEngine(bounds, cfg.RecommendationLimit)
}
