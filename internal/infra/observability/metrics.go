package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	backendErrors    *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	logins           *prometheus.CounterVec
	uploads          *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	sessionsResolved *prometheus.CounterVec
	edgeRedirects    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_backend_errors_total",
				Help: "Total failed calls to the store backend by endpoint.",
			},
			[]string{"endpoint"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_document_uploads_total",
				Help: "Document uploads by kind and result.",
			},
			[]string{"kind", "result"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_customer_submissions_total",
				Help: "Customer create/update submissions by result.",
			},
			[]string{"result"},
		),
		sessionsResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_sessions_resolved_total",
				Help: "Session resolutions by resulting state.",
			},
			[]string{"state"},
		),
		edgeRedirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_edge_redirects_total",
				Help: "Redirects issued by the edge layer by target.",
			},
			[]string{"target"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrBackendError increments the backend error counter.
func (m *Metrics) IncrBackendError(endpoint string) {
	m.backendErrors.WithLabelValues(endpoint).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrLogin counts a login attempt.
func (m *Metrics) IncrLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// IncrUpload counts a document upload.
func (m *Metrics) IncrUpload(kind, result string) {
	m.uploads.WithLabelValues(kind, result).Inc()
}

// IncrSubmission counts a create or update submission.
func (m *Metrics) IncrSubmission(result string) {
	m.submissions.WithLabelValues(result).Inc()
}

// IncrSessionResolved counts a session resolution.
func (m *Metrics) IncrSessionResolved(state string) {
	m.sessionsResolved.WithLabelValues(state).Inc()
}

// IncrEdgeRedirect counts an edge-layer redirect.
func (m *Metrics) IncrEdgeRedirect(target string) {
	m.edgeRedirects.WithLabelValues(target).Inc()
}

// LoginCount returns the cumulative number of logins with the given outcome.
func (m *Metrics) LoginCount(outcome string) float64 {
	return getCounterValue(m.logins, outcome)
}

// SubmissionCount returns the cumulative number of submissions with the given result.
func (m *Metrics) SubmissionCount(result string) float64 {
	return getCounterValue(m.submissions, result)
}

// UploadCount returns the cumulative number of uploads for kind and result.
func (m *Metrics) UploadCount(kind, result string) float64 {
	return getCounterValue(m.uploads, kind, result)
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
