// Package importer pulls card catalogs from issuer web pages into the
// catalog repository.
package importer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/ajharbinger/card-recommender/internal/errors"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/metrics"
	"github.com/ajharbinger/card-recommender/internal/recommend"
	"github.com/ajharbinger/card-recommender/internal/repository"
	"github.com/ajharbinger/card-recommender/internal/services"
)

// Source is one issuer catalog page
type Source struct {
	URL string `json:"url" binding:"required,url"`
	// Issuer fills rows that have no issuer column
	Issuer string `json:"issuer"`
}

// Rejection is a parsed row that was not stored
type Rejection struct {
	Row    int                         `json:"row"`
	Name   string                      `json:"name"`
	Faults []recommend.ValidationFault `json:"faults"`
}

// Result summarises one source import
type Result struct {
	Source   string                 `json:"source"`
	Parsed   int                    `json:"parsed"`
	Stored   int                    `json:"stored"`
	DryRun   bool                   `json:"dry_run"`
	Cards    []recommend.CardRecord `json:"cards,omitempty"`
	Rejected []Rejection            `json:"rejected"`
	Warnings []string               `json:"warnings"`
	Error    string                 `json:"error,omitempty"`
}

// Service provides catalog import operations
type Service struct {
	repos         *repository.Repositories
	fetcher       Fetcher
	parser        *Parser
	transformer   *Transformer
	bounds        recommend.Bounds
	healthMonitor *HealthMonitor
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// NewService creates an import service. bounds supplies the categories the
// parser recognises and the score scale rows are validated against.
func NewService(repos *repository.Repositories, fetcher Fetcher, bounds recommend.Bounds, log logger.Logger, m *metrics.Metrics) *Service {
	categories := make([]string, len(bounds.Categories))
	for i, c := range bounds.Categories {
		categories[i] = string(c)
	}
	return &Service{
		repos:         repos,
		fetcher:       fetcher,
		parser:        NewParser(categories),
		transformer:   NewTransformer(),
		bounds:        bounds,
		healthMonitor: NewHealthMonitor(),
		logger:        log,
		metrics:       m,
	}
}

// Import fetches and parses one source and, unless dryRun is set, upserts
// every valid row in a single transaction. Invalid rows are reported and
// never stored.
func (s *Service) Import(ctx context.Context, src Source, dryRun bool) (*Result, error) {
	if err := validateSource(src); err != nil {
		return nil, errors.InvalidInput("invalid import source", err).WithOperation("Import")
	}

	s.logger.Info("Starting catalog import", "url", src.URL, "dry_run", dryRun)

	doc, err := s.fetcher.Get(ctx, src.URL)
	if err != nil {
		s.healthMonitor.RecordFailure(src.Issuer, err.Error(), src.URL)
		s.logger.Error("Failed to fetch catalog page", err, "url", src.URL)
		return nil, errors.ImportError("failed to fetch catalog page", err).WithOperation("Import")
	}

	result, err := s.parse(doc, src)
	if err != nil {
		s.healthMonitor.RecordFailure(src.Issuer, err.Error(), src.URL)
		return nil, errors.ImportError("failed to parse catalog page", err).WithOperation("Import")
	}
	result.DryRun = dryRun

	if dryRun || len(result.Cards) == 0 {
		s.healthMonitor.RecordSuccess(src.Issuer)
		return result, nil
	}

	err = s.repos.Tx.WithTransaction(ctx, func(repos *repository.Repositories) error {
		for i := range result.Cards {
			if err := repos.Cards.Upsert(ctx, &result.Cards[i]); err != nil {
				return fmt.Errorf("failed to upsert card %s: %w", result.Cards[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.healthMonitor.RecordFailure(src.Issuer, err.Error(), src.URL)
		s.logger.Error("Failed to store imported cards", err, "url", src.URL)
		return nil, errors.DatabaseError("failed to store imported cards", err).WithOperation("Import")
	}

	result.Stored = len(result.Cards)
	s.healthMonitor.RecordSuccess(src.Issuer)
	s.metrics.RecordImported(src.URL, result.Stored)
	s.logger.Info("Catalog import completed",
		"url", src.URL,
		"parsed", result.Parsed,
		"stored", result.Stored,
		"rejected", len(result.Rejected),
	)
	return result, nil
}

// ImportAll imports several sources concurrently. A failing source is
// reported in its Result and does not stop the others.
func (s *Service) ImportAll(ctx context.Context, sources []Source, maxConcurrency int, dryRun bool) []*Result {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	results := make([]*Result, len(sources))
	semaphore := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			// Acquire semaphore
			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[i] = &Result{Source: src.URL, DryRun: dryRun, Error: ctx.Err().Error()}
				return
			}
			defer func() { <-semaphore }()

			result, err := s.Import(ctx, src, dryRun)
			if err != nil {
				result = &Result{Source: src.URL, DryRun: dryRun, Error: err.Error()}
			}
			results[i] = result
		}(i, src)
	}

	wg.Wait()
	return results
}

// ParseDocument parses an already loaded page without storing anything
func (s *Service) ParseDocument(doc *goquery.Document, src Source) (*Result, error) {
	result, err := s.parse(doc, src)
	if err != nil {
		return nil, err
	}
	result.DryRun = true
	return result, nil
}

func (s *Service) parse(doc *goquery.Document, src Source) (*Result, error) {
	rows := s.parser.ParseCatalogPage(doc)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no card table found at %s", src.URL)
	}

	result := &Result{
		Source:   src.URL,
		Parsed:   len(rows),
		Cards:    []recommend.CardRecord{},
		Rejected: []Rejection{},
		Warnings: []string{},
	}

	for _, row := range rows {
		card := s.transformer.TransformToCard(row, src.Issuer)
		if appErr := services.ValidateCard(&card, s.bounds); appErr != nil {
			faults, _ := appErr.Faults.([]recommend.ValidationFault)
			result.Rejected = append(result.Rejected, Rejection{Row: row.Row, Name: row.Name, Faults: faults})
			s.logger.Warn("Rejecting imported row", "row", row.Row, "name", row.Name, "faults", len(faults))
			continue
		}
		for _, w := range s.transformer.ValidateCard(card) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d (%s): %s", row.Row, row.Name, w))
		}
		result.Cards = append(result.Cards, card)
	}

	return result, nil
}

func validateSource(src Source) error {
	u, err := url.Parse(strings.TrimSpace(src.URL))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("url must have a host")
	}
	return nil
}

// GetHealthStatus returns the current health status of the importer
func (s *Service) GetHealthStatus() HealthStatus {
	return s.healthMonitor.GetHealthStatus()
}

// ResetHealthMonitor clears all health monitoring data
func (s *Service) ResetHealthMonitor() {
	s.healthMonitor.Reset()
}

// Health reports an error when recent imports have been failing
func (s *Service) Health(ctx context.Context) error {
	status := s.healthMonitor.GetHealthStatus()
	if !status.IsHealthy {
		return fmt.Errorf("importer health check failed: %v", status.HealthIssues)
	}
	return nil
}
