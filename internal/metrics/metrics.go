// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "card_recommender"

// Metrics holds the collectors recorded by handlers and services
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recommendations *prometheus.CounterVec
	skippedCards    *prometheus.CounterVec
	catalogLoad     prometheus.Histogram
	importedCards   *prometheus.CounterVec
}

// New creates a metrics set on its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		skippedCards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_cards_total",
			Help:      "Catalog records excluded for data quality, by field.",
		}, []string{"field"}),
		catalogLoad: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_load_seconds",
			Help:      "Time spent loading the card catalog.",
			Buckets:   prometheus.DefBuckets,
		}),
		importedCards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_cards_total",
			Help:      "Cards written by the catalog importer, by source.",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.recommendations,
		m.skippedCards,
		m.catalogLoad,
		m.importedCards,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Outcomes recorded by RecordRecommendation
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
)

func (m *Metrics) RecordRecommendation(outcome string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSkipped(field string) {
	if m == nil {
		return
	}
	m.skippedCards.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveCatalogLoad(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.catalogLoad.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordImported(source string, n int) {
	if m == nil {
		return
	}
	m.importedCards.WithLabelValues(source).Add(float64(n))
}
