// internal/monitoring/metrics.go
// Package monitoring exposes Prometheus metrics and a process health
// snapshot for the ingestion pipeline.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "veriflow"

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Source fetch metrics
	requestsTotal  *prometheus.CounterVec
	requestRetries prometheus.Counter
	rateLimitHits  prometheus.Counter
	pagesScraped   *prometheus.CounterVec

	// Dataset metrics
	rowsIngested     *prometheus.CounterVec
	validationIssues *prometheus.CounterVec
	datasetCategory  *prometheus.CounterVec

	// Stage timing
	stageDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry so tests can
// instantiate them repeatedly.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outbound requests by source kind and outcome.",
		}, []string{"source", "outcome"}),
		requestRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_retries_total",
			Help:      "Retried outbound requests.",
		}),
		rateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the per-host rate limiter.",
		}),
		pagesScraped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_scraped_total",
			Help:      "Pages fetched during scrapes by engine.",
		}, []string{"engine"}),
		rowsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Rows produced by ingestion by source kind.",
		}, []string{"source"}),
		validationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Validation issues by severity.",
		}, []string{"severity"}),
		datasetCategory: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_category_total",
			Help:      "Classified datasets by category.",
		}, []string{"category"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

// Handler returns the scrape endpoint handler for this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one outbound request.
func (m *Metrics) ObserveRequest(source string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.requestsTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveRetry records one request retry.
func (m *Metrics) ObserveRetry() {
	m.requestRetries.Inc()
}

// ObserveRateLimitHit records one rate limiter rejection.
func (m *Metrics) ObserveRateLimitHit() {
	m.rateLimitHits.Inc()
}

// ObservePages records scraped pages for an engine.
func (m *Metrics) ObservePages(engine string, pages int) {
	m.pagesScraped.WithLabelValues(engine).Add(float64(pages))
}

// ObserveRows records ingested rows for a source kind.
func (m *Metrics) ObserveRows(source string, rows int) {
	m.rowsIngested.WithLabelValues(source).Add(float64(rows))
}

// ObserveIssues records validation issue counts by severity.
func (m *Metrics) ObserveIssues(errors, warnings, infos int) {
	m.validationIssues.WithLabelValues("error").Add(float64(errors))
	m.validationIssues.WithLabelValues("warning").Add(float64(warnings))
	m.validationIssues.WithLabelValues("info").Add(float64(infos))
}

// ObserveCategory records one classified dataset.
func (m *Metrics) ObserveCategory(category string) {
	m.datasetCategory.WithLabelValues(category).Inc()
}

// ObserveStage records one pipeline stage duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
