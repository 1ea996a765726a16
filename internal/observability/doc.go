// Package observability provides logging and metrics for the researcher
// service: a zerolog logger factory, Prometheus metrics for backfill runs,
// registry calls, and suggestion queries, and context helpers for request
// identifiers.
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Initialize metrics once at startup and record through the typed helpers:
//
//	metrics := observability.NewMetrics("researcher_service")
//	metrics.RecordBackfillRecord("topics", "updated")
//	metrics.RecordSuggestionQuery(len(results), duration.Seconds())
//
// Log fields follow a shared vocabulary across the service: request_id,
// researcher_id, orcid, mode (backfill mode), and registry (ORCID or
// OpenAlex). The With*Context helpers attach these consistently.
//
// All components are safe for concurrent use.
package observability
