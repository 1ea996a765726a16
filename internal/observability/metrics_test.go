package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: prometheus/promauto registers metrics globally, so we need to use
// unique namespaces per test to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_researcher_new")

	assert.NotNil(t, m.BackfillRuns)
	assert.NotNil(t, m.BackfillRecords)
	assert.NotNil(t, m.BackfillRunDuration)
	assert.NotNil(t, m.ResolutionsApplied)
	assert.NotNil(t, m.ResolutionConflicts)
	assert.NotNil(t, m.TopicListSize)
	assert.NotNil(t, m.RegistryRequestsFailed)
	assert.NotNil(t, m.SuggestionQueries)
	assert.NotNil(t, m.SuggestionResults)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
}

func TestRecordBackfillRun(t *testing.T) {
	m := NewMetrics("test_backfill_run")

	m.RecordBackfillRun("topics", "completed", 12.5)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackfillRuns.WithLabelValues("topics", "completed")))
}

func TestRecordBackfillLocked(t *testing.T) {
	m := NewMetrics("test_backfill_locked")

	m.RecordBackfillLocked("identity")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackfillRuns.WithLabelValues("identity", "locked")))
}

func TestRecordBackfillRecord(t *testing.T) {
	m := NewMetrics("test_backfill_record")

	m.RecordBackfillRecord("topics", "updated")
	m.RecordBackfillRecord("topics", "updated")
	m.RecordBackfillRecord("topics", "no_topics_found")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.BackfillRecords.WithLabelValues("topics", "updated")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackfillRecords.WithLabelValues("topics", "no_topics_found")))
}

func TestRecordResolutionApplied(t *testing.T) {
	m := NewMetrics("test_resolution_applied")

	m.RecordResolutionApplied("manual", 12)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResolutionsApplied.WithLabelValues("manual")))

	histCount, err := getHistogramSampleCount(m.TopicListSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordResolutionConflict(t *testing.T) {
	m := NewMetrics("test_resolution_conflict")

	initial := testutil.ToFloat64(m.ResolutionConflicts)
	m.RecordResolutionConflict()
	assert.Equal(t, initial+1, testutil.ToFloat64(m.ResolutionConflicts))
}

func TestRecordRegistryFailure(t *testing.T) {
	m := NewMetrics("test_registry_failure")

	m.RecordRegistryFailure("OpenAlex")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RegistryRequestsFailed.WithLabelValues("OpenAlex")))
}

func TestRecordSuggestionQuery(t *testing.T) {
	m := NewMetrics("test_suggestion_query")

	initial := testutil.ToFloat64(m.SuggestionQueries)
	m.RecordSuggestionQuery(7, 0.02)
	assert.Equal(t, initial+1, testutil.ToFloat64(m.SuggestionQueries))

	histCount, err := getHistogramSampleCount(m.SuggestionResults)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetrics("test_http_request")

	m.RecordHTTPRequest("POST", "/api/v1/suggestions", "200", 0.01)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/suggestions", "200")))
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}
