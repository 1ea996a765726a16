package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the researcher service.
// Metrics are organized by subsystem: backfill runs, identity resolutions,
// registry calls, and suggestion queries. All counters and histograms are
// registered via promauto for automatic registration with the default
// Prometheus registry.
type Metrics struct {
	// BackfillRuns counts backfill invocations, labeled by mode and outcome
	// (completed, failed, locked).
	BackfillRuns *prometheus.CounterVec

	// BackfillRecords counts per-record backfill outcomes, labeled by mode
	// and status tag.
	BackfillRecords *prometheus.CounterVec

	// BackfillRunDuration observes end-to-end backfill run duration in
	// seconds, labeled by mode.
	BackfillRunDuration *prometheus.HistogramVec

	// ResolutionsApplied counts identity resolutions persisted to the store,
	// labeled by trigger (backfill, manual).
	ResolutionsApplied *prometheus.CounterVec

	// ResolutionConflicts counts resolutions rejected because another writer
	// claimed the record first.
	ResolutionConflicts prometheus.Counter

	// TopicListSize observes the number of topics persisted per resolution.
	TopicListSize prometheus.Histogram

	// RegistryRequestsFailed counts failed external registry calls, labeled
	// by registry name.
	RegistryRequestsFailed *prometheus.CounterVec

	// SuggestionQueries counts suggestion scoring requests.
	SuggestionQueries prometheus.Counter

	// SuggestionResults observes the number of results returned per
	// suggestion query.
	SuggestionResults prometheus.Histogram

	// SuggestionDuration observes suggestion scoring duration in seconds,
	// including the candidate pool load.
	SuggestionDuration prometheus.Histogram

	// HTTPRequestsTotal counts HTTP requests, labeled by method, route, and
	// status code class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled
	// by method and route.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Backfill
		BackfillRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfill_runs_total",
			Help:      "Total number of backfill runs by mode and outcome",
		}, []string{"mode", "outcome"}),
		BackfillRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfill_records_total",
			Help:      "Total number of backfill record outcomes by mode and status",
		}, []string{"mode", "status"}),
		BackfillRunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backfill_run_duration_seconds",
			Help:      "Duration of backfill runs in seconds by mode",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		}, []string{"mode"}),

		// Resolutions
		ResolutionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_applied_total",
			Help:      "Total number of identity resolutions persisted by trigger",
		}, []string{"trigger"}),
		ResolutionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_conflicts_total",
			Help:      "Total number of resolutions rejected by the concurrent-writer guard",
		}),
		TopicListSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "topic_list_size",
			Help:      "Number of topics persisted per resolution",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		}),

		// Registries
		RegistryRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_requests_failed_total",
			Help:      "Total number of failed external registry calls by registry",
		}, []string{"registry"}),

		// Suggestions
		SuggestionQueries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_queries_total",
			Help:      "Total number of suggestion scoring requests",
		}),
		SuggestionResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_results",
			Help:      "Number of results returned per suggestion query",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		SuggestionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_duration_seconds",
			Help:      "Duration of suggestion scoring in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),

		// HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds by method and route",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
}

// RecordBackfillRun records a completed backfill run.
func (m *Metrics) RecordBackfillRun(mode, outcome string, durationSeconds float64) {
	m.BackfillRuns.WithLabelValues(mode, outcome).Inc()
	m.BackfillRunDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordBackfillLocked records a backfill run rejected by the run lock.
func (m *Metrics) RecordBackfillLocked(mode string) {
	m.BackfillRuns.WithLabelValues(mode, "locked").Inc()
}

// RecordBackfillRecord records one per-record backfill outcome.
func (m *Metrics) RecordBackfillRecord(mode, status string) {
	m.BackfillRecords.WithLabelValues(mode, status).Inc()
}

// RecordResolutionApplied records a persisted identity resolution.
func (m *Metrics) RecordResolutionApplied(trigger string, topicCount int) {
	m.ResolutionsApplied.WithLabelValues(trigger).Inc()
	m.TopicListSize.Observe(float64(topicCount))
}

// RecordResolutionConflict records a resolution lost to a concurrent writer.
func (m *Metrics) RecordResolutionConflict() {
	m.ResolutionConflicts.Inc()
}

// RecordRegistryFailure records a failed external registry call.
func (m *Metrics) RecordRegistryFailure(registry string) {
	m.RegistryRequestsFailed.WithLabelValues(registry).Inc()
}

// RecordSuggestionQuery records a suggestion scoring request.
func (m *Metrics) RecordSuggestionQuery(resultCount int, durationSeconds float64) {
	m.SuggestionQueries.Inc()
	m.SuggestionResults.Observe(float64(resultCount))
	m.SuggestionDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
