package importer

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	recentFailureLimit     = 50
	maxFailureRate         = 0.2
	minAttemptsForRate     = 10
	maxConsecutiveFailures = 5
	minFailuresForPattern  = 3
)

// failureKind groups error messages that share a likely cause
type failureKind struct {
	name    string
	markers []string
	issue   string
	action  string
}

var failureKinds = []failureKind{
	{
		name:    "timeout",
		markers: []string{"timeout", "deadline"},
		issue:   "Frequent timeout errors detected",
		action:  "Consider increasing request timeouts or reducing concurrency",
	},
	{
		name:    "rate_limit",
		markers: []string{"rate limit", "429"},
		issue:   "Rate limiting detected",
		action:  "Reduce import frequency",
	},
	{
		name:    "layout",
		markers: []string{"no card table"},
		issue:   "Catalog pages no longer contain a card table",
		action:  "Review the issuer page layout and column headers",
	},
	{
		name:    "network",
		markers: []string{"network", "connection", "dns"},
		issue:   "Network connectivity issues detected",
		action:  "Check network connectivity and DNS resolution",
	},
}

// FailureRecord is one failed import attempt
type FailureRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Error     string    `json:"error"`
	URL       string    `json:"url,omitempty"`
}

// SourceHealth summarises the attempts against one issuer
type SourceHealth struct {
	Imports             int64      `json:"imports"`
	Failures            int64      `json:"failures"`
	ConsecutiveFailures int64      `json:"consecutive_failures"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

// HealthStatus is the importer-wide view served by the health endpoints
type HealthStatus struct {
	IsHealthy           bool                    `json:"is_healthy"`
	TotalRequests       int64                   `json:"total_requests"`
	SuccessfulRequests  int64                   `json:"successful_requests"`
	FailedRequests      int64                   `json:"failed_requests"`
	SuccessRate         float64                 `json:"success_rate"`
	ConsecutiveFailures int64                   `json:"consecutive_failures"`
	LastFailureTime     *time.Time              `json:"last_failure_time,omitempty"`
	LastSuccessTime     *time.Time              `json:"last_success_time,omitempty"`
	Sources             map[string]SourceHealth `json:"sources"`
	UnhealthySources    []string                `json:"unhealthy_sources"`
	RecentFailures      []FailureRecord         `json:"recent_failures"`
	HealthIssues        []string                `json:"health_issues"`
	RecommendedActions  []string                `json:"recommended_actions"`
}

// HealthMonitor tracks import attempts overall and per issuer
type HealthMonitor struct {
	mu          sync.RWMutex
	succeeded   int64
	failed      int64
	consecutive int64
	lastSuccess time.Time
	lastFailure time.Time
	sources     map[string]*SourceHealth
	recent      []FailureRecord
	now         func() time.Time
}

// NewHealthMonitor creates an empty monitor
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		sources: make(map[string]*SourceHealth),
		recent:  make([]FailureRecord, 0, recentFailureLimit),
		now:     time.Now,
	}
}

// RecordSuccess records a completed import of source
func (h *HealthMonitor) RecordSuccess(source string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.succeeded++
	h.consecutive = 0
	h.lastSuccess = now

	s := h.source(source)
	s.Imports++
	s.ConsecutiveFailures = 0
	s.LastSuccess = &now
}

// RecordFailure records a failed import of source
func (h *HealthMonitor) RecordFailure(source, errorMsg, url string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.failed++
	h.consecutive++
	h.lastFailure = now

	s := h.source(source)
	s.Failures++
	s.ConsecutiveFailures++
	s.LastError = errorMsg

	h.recent = append(h.recent, FailureRecord{Timestamp: now, Source: source, Error: errorMsg, URL: url})
	if len(h.recent) > recentFailureLimit {
		h.recent = h.recent[len(h.recent)-recentFailureLimit:]
	}
}

// GetHealthStatus returns a snapshot of the counters and any issues they show
func (h *HealthMonitor) GetHealthStatus() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := h.succeeded + h.failed
	status := HealthStatus{
		IsHealthy:           true,
		TotalRequests:       total,
		SuccessfulRequests:  h.succeeded,
		FailedRequests:      h.failed,
		SuccessRate:         1.0,
		ConsecutiveFailures: h.consecutive,
		Sources:             make(map[string]SourceHealth, len(h.sources)),
		UnhealthySources:    []string{},
		RecentFailures:      append([]FailureRecord{}, h.recent...),
		HealthIssues:        []string{},
		RecommendedActions:  []string{},
	}
	if total > 0 {
		status.SuccessRate = float64(h.succeeded) / float64(total)
	}
	if !h.lastSuccess.IsZero() {
		t := h.lastSuccess
		status.LastSuccessTime = &t
	}
	if !h.lastFailure.IsZero() {
		t := h.lastFailure
		status.LastFailureTime = &t
	}

	for name, s := range h.sources {
		status.Sources[name] = *s
		if s.ConsecutiveFailures >= maxConsecutiveFailures {
			status.UnhealthySources = append(status.UnhealthySources, name)
		}
	}
	sort.Strings(status.UnhealthySources)

	issue := func(text, action string) {
		status.IsHealthy = false
		status.HealthIssues = append(status.HealthIssues, text)
		status.RecommendedActions = append(status.RecommendedActions, action)
	}
	if total >= minAttemptsForRate && status.SuccessRate < 1.0-maxFailureRate {
		issue("High failure rate detected (>20%)",
			"Check that issuer catalog pages are reachable and still use the expected table layout")
	}
	if h.consecutive >= maxConsecutiveFailures {
		issue("Multiple consecutive failures detected",
			"Verify issuer site accessibility and lower IMPORT_REQUESTS_PER_SECOND")
	}

	// Patterns only add advice; they never change IsHealthy on their own.
	if len(h.recent) >= minFailuresForPattern {
		counts := make(map[string]int)
		for _, f := range h.recent {
			counts[categorizeError(f.Error)]++
		}
		for _, kind := range failureKinds {
			if float64(counts[kind.name])/float64(len(h.recent)) > 0.5 {
				status.HealthIssues = append(status.HealthIssues, kind.issue)
				status.RecommendedActions = append(status.RecommendedActions, kind.action)
			}
		}
	}

	return status
}

// Reset clears all counters and failure history
func (h *HealthMonitor) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.succeeded, h.failed, h.consecutive = 0, 0, 0
	h.lastSuccess, h.lastFailure = time.Time{}, time.Time{}
	h.sources = make(map[string]*SourceHealth)
	h.recent = h.recent[:0]
}

func (h *HealthMonitor) source(name string) *SourceHealth {
	s, ok := h.sources[name]
	if !ok {
		s = &SourceHealth{}
		h.sources[name] = s
	}
	return s
}

// categorizeError maps an error message to the first matching failure kind
func categorizeError(errorMsg string) string {
	msg := strings.ToLower(errorMsg)
	for _, kind := range failureKinds {
		for _, marker := range kind.markers {
			if strings.Contains(msg, marker) {
				return kind.name
			}
		}
	}
	return "other"
}
