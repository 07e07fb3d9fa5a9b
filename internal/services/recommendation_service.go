package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/ajharbinger/card-recommender/internal/errors"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/recommend"
	"github.com/ajharbinger/card-recommender/internal/repository"
)

// RecommendationOptions tunes how the catalog is fetched
type RecommendationOptions struct {
	// CatalogTimeout bounds the catalog read. Zero means no extra deadline.
	CatalogTimeout time.Duration
	// Pushdown narrows the catalog read with the profile's constraints. The
	// engine re-applies every rule either way.
	Pushdown bool
}

// recommendationServiceImpl implements RecommendationService
type recommendationServiceImpl struct {
	repos   *repository.Repositories
	engine  *recommend.Engine
	opts    RecommendationOptions
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewRecommendationService creates a recommendation service
func NewRecommendationService(repos *repository.Repositories, engine *recommend.Engine, opts RecommendationOptions, log logger.Logger, m *metrics.Metrics) RecommendationService {
	return &recommendationServiceImpl{
		repos:   repos,
		engine:  engine,
		opts:    opts,
		logger:  log,
		metrics: m,
	}
}

// Recommend validates the profile, loads the catalog and runs the engine
func (s *recommendationServiceImpl) Recommend(ctx context.Context, profile recommend.UserProfile) (*recommend.Result, error) {
	// Validate before touching the catalog
	if err := profile.Validate(s.engine.Bounds()); err != nil {
		s.metrics.RecordRecommendation(metrics.OutcomeInvalid)
		return nil, validationError(err).WithOperation("Recommend")
	}

	catalog, err := s.loadCatalog(ctx, profile)
	if err != nil {
		s.metrics.RecordRecommendation(metrics.OutcomeUnavailable)
		s.logger.Error("Failed to load card catalog", err)
		return nil, errors.CatalogUnavailable("card catalog is unavailable", err).WithOperation("Recommend")
	}

	result, err := s.engine.Recommend(profile, catalog)
	if err != nil {
		s.metrics.RecordRecommendation(metrics.OutcomeInvalid)
		return nil, validationError(err).WithOperation("Recommend")
	}

	for _, fault := range result.Skipped {
		s.metrics.RecordSkipped(fault.Field)
		s.logger.Warn("Skipping catalog record", "card_id", fault.CardID, "card_name", fault.CardName, "field", fault.Field, "reason", fault.Reason)
	}

	if len(result.Recommendations) == 0 {
		s.metrics.RecordRecommendation(metrics.OutcomeEmpty)
	} else {
		s.metrics.RecordRecommendation(metrics.OutcomeOK)
	}

	s.logger.Info("Recommendation completed",
		"catalog_size", len(catalog),
		"eligible", result.EligibleCount,
		"returned", len(result.Recommendations),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (s *recommendationServiceImpl) loadCatalog(ctx context.Context, profile recommend.UserProfile) ([]recommend.CardRecord, error) {
	if s.opts.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CatalogTimeout)
		defer cancel()
	}

	query := repository.CatalogQuery{}
	if s.opts.Pushdown {
		query = repository.QueryForProfile(profile)
	}

	start := time.Now()
	catalog, err := s.repos.Cards.List(ctx, query)
	s.metrics.ObserveCatalogLoad(time.Since(start))
	return catalog, err
}

// validationError converts an engine validation failure into an AppError
// carrying the individual faults
func validationError(err error) *errors.AppError {
	appErr := errors.ValidationError("invalid user profile", err)
	var vErr *recommend.ValidationError
	if stderrors.As(err, &vErr) {
		appErr = appErr.WithFaults(vErr.Faults)
	}
	return appErr
}
