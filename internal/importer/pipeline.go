package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// PipelineConfig controls scheduled catalog refreshes
type PipelineConfig struct {
	Sources       []Source      `json:"sources"`
	Interval      time.Duration `json:"interval"`
	MaxConcurrent int           `json:"max_concurrent"`
}

// DefaultPipelineConfig returns the refresh defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Interval:      6 * time.Hour,
		MaxConcurrent: 3,
	}
}

// ParseSources reads "url" or "url|issuer" entries
func ParseSources(entries []string) []Source {
	sources := make([]Source, 0, len(entries))
	for _, entry := range entries {
		u, issuer, _ := strings.Cut(entry, "|")
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		sources = append(sources, Source{URL: u, Issuer: strings.TrimSpace(issuer)})
	}
	return sources
}

// CycleStats summarises one refresh cycle
type CycleStats struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Sources   int           `json:"sources"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Stored    int           `json:"stored"`
	Rejected  int           `json:"rejected"`
}

// Summary renders the stats for a log line
func (s *CycleStats) Summary() string {
	return fmt.Sprintf("sources=%d, succeeded=%d, failed=%d, stored=%d, rejected=%d, duration=%v",
		s.Sources, s.Succeeded, s.Failed, s.Stored, s.Rejected, s.Duration.Round(time.Millisecond))
}

// Pipeline re-imports a fixed set of sources on an interval
type Pipeline struct {
	service   *Service
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	last      *CycleStats
}

// NewPipeline creates a refresh pipeline around an import service
func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Start runs a cycle immediately and then once per interval until Stop
func (p *Pipeline) Start(config PipelineConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("pipeline is already running")
	}
	if len(config.Sources) == 0 {
		return fmt.Errorf("pipeline has no sources")
	}
	if config.Interval <= 0 {
		return fmt.Errorf("pipeline interval must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.isRunning = true

	p.wg.Add(1)
	go p.run(ctx, config)

	p.service.logger.Info("Import pipeline started",
		"sources", len(config.Sources),
		"interval", config.Interval.String(),
		"max_concurrent", config.MaxConcurrent,
	)
	return nil
}

// Stop cancels any running cycle and waits for the loop to exit
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return fmt.Errorf("pipeline is not running")
	}
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.isRunning = false
	p.mu.Unlock()

	p.service.logger.Info("Import pipeline stopped")
	return nil
}

// IsRunning returns whether the pipeline loop is active
func (p *Pipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// LastCycle returns the stats of the most recent cycle, nil before the first
func (p *Pipeline) LastCycle() *CycleStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// RunOnce executes a single refresh cycle
func (p *Pipeline) RunOnce(ctx context.Context, config PipelineConfig) *CycleStats {
	stats := &CycleStats{StartTime: time.Now(), Sources: len(config.Sources)}

	for _, result := range p.service.ImportAll(ctx, config.Sources, config.MaxConcurrent, false) {
		if result.Error != "" {
			stats.Failed++
			continue
		}
		stats.Succeeded++
		stats.Stored += result.Stored
		stats.Rejected += len(result.Rejected)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	p.mu.Lock()
	p.last = stats
	p.mu.Unlock()
	return stats
}

func (p *Pipeline) run(ctx context.Context, config PipelineConfig) {
	defer p.wg.Done()

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	p.cycle(ctx, config)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx, config)
		}
	}
}

func (p *Pipeline) cycle(ctx context.Context, config PipelineConfig) {
	stats := p.RunOnce(ctx, config)
	if stats.Failed > 0 {
		p.service.logger.Warn("Import cycle completed with failures", "summary", stats.Summary())
		return
	}
	p.service.logger.Info("Import cycle completed", "summary", stats.Summary())
}
