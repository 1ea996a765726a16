package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarweave/researcher-service/internal/database"
	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/recommend"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockSuggestions implements SuggestionService for handler tests.
type mockSuggestions struct {
	suggestFn func(ctx context.Context, req recommend.SuggestionRequest) ([]domain.Suggestion, error)
	topicsFn  func(ctx context.Context) ([]domain.TopicCount, error)
}

func (m *mockSuggestions) Suggest(ctx context.Context, req recommend.SuggestionRequest) ([]domain.Suggestion, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, req)
	}
	return nil, nil
}

func (m *mockSuggestions) Topics(ctx context.Context) ([]domain.TopicCount, error) {
	if m.topicsFn != nil {
		return m.topicsFn(ctx)
	}
	return nil, nil
}

// mockRunner implements ResolutionRunner for handler tests.
type mockRunner struct {
	runFn           func(ctx context.Context, mode domain.BackfillMode) (*domain.BackfillReport, error)
	resolveManualFn func(ctx context.Context, researcherID, orcid string) (*domain.Researcher, error)
	resolveAutoFn   func(ctx context.Context, researcherID string) (*domain.Researcher, domain.BackfillStatus, error)
}

func (m *mockRunner) Run(ctx context.Context, mode domain.BackfillMode) (*domain.BackfillReport, error) {
	if m.runFn != nil {
		return m.runFn(ctx, mode)
	}
	return domain.NewBackfillReport(mode), nil
}

func (m *mockRunner) ResolveManual(ctx context.Context, researcherID, orcid string) (*domain.Researcher, error) {
	if m.resolveManualFn != nil {
		return m.resolveManualFn(ctx, researcherID, orcid)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRunner) ResolveAuto(ctx context.Context, researcherID string) (*domain.Researcher, domain.BackfillStatus, error) {
	if m.resolveAutoFn != nil {
		return m.resolveAutoFn(ctx, researcherID)
	}
	return nil, "", domain.ErrNotFound
}

// mockHealth implements HealthReporter for handler tests.
type mockHealth struct {
	status database.HealthStatus
}

func (m *mockHealth) Health(_ context.Context) database.HealthStatus {
	return m.status
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const testAdminToken = "test-admin-token"

func newTestServer(suggestions SuggestionService, runner ResolutionRunner) *Server {
	return newTestServerWithHealth(suggestions, runner, &mockHealth{
		status: database.HealthStatus{Status: "healthy"},
	})
}

func newTestServerWithHealth(suggestions SuggestionService, runner ResolutionRunner, health HealthReporter) *Server {
	return NewServer(Config{
		Address:    "127.0.0.1:0",
		AdminToken: testAdminToken,
	}, suggestions, runner, health, nil, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Token": testAdminToken}
}

// ---------------------------------------------------------------------------
// Health endpoints
// ---------------------------------------------------------------------------

func TestHealthHandler(t *testing.T) {
	t.Run("healthy database returns 200", func(t *testing.T) {
		s := newTestServer(&mockSuggestions{}, &mockRunner{})

		rec := doRequest(t, s, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("unhealthy database returns 503", func(t *testing.T) {
		s := newTestServerWithHealth(&mockSuggestions{}, &mockRunner{}, &mockHealth{
			status: database.HealthStatus{Status: "unhealthy", Error: "connection refused"},
		})

		rec := doRequest(t, s, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})
}

func TestReadinessHandler(t *testing.T) {
	s := newTestServer(&mockSuggestions{}, &mockRunner{})

	rec := doRequest(t, s, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

// ---------------------------------------------------------------------------
// Suggestions
// ---------------------------------------------------------------------------

func TestSuggestHandler(t *testing.T) {
	t.Run("returns ranked suggestions", func(t *testing.T) {
		suggestions := &mockSuggestions{
			suggestFn: func(_ context.Context, req recommend.SuggestionRequest) ([]domain.Suggestion, error) {
				assert.Equal(t, []string{"NLP"}, req.Topics)
				assert.Equal(t, "did:plc:me", req.ExcludeID)
				return []domain.Suggestion{
					{ResearcherID: "did:plc:abc", Score: 3, MatchedTopics: []string{"NLP"}},
				}, nil
			},
		}
		s := newTestServer(suggestions, &mockRunner{})

		rec := doRequest(t, s, http.MethodPost, "/api/v1/suggestions", map[string]interface{}{
			"topics":     []string{"NLP"},
			"exclude_id": "did:plc:me",
		}, nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp suggestionsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "did:plc:abc", resp.Suggestions[0].ResearcherID)
	})

	t.Run("empty result is an empty array, not null", func(t *testing.T) {
		s := newTestServer(&mockSuggestions{}, &mockRunner{})

		rec := doRequest(t, s, http.MethodPost, "/api/v1/suggestions", map[string]interface{}{
			"topics": []string{"NLP"},
		}, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"suggestions":[]`)
	})

	t.Run("validation failure returns 400", func(t *testing.T) {
		suggestions := &mockSuggestions{
			suggestFn: func(_ context.Context, _ recommend.SuggestionRequest) ([]domain.Suggestion, error) {
				return nil, domain.NewValidationError("topics", "at least one topic is required")
			},
		}
		s := newTestServer(suggestions, &mockRunner{})

		rec := doRequest(t, s, http.MethodPost, "/api/v1/suggestions", map[string]interface{}{
			"topics": []string{},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		s := newTestServer(&mockSuggestions{}, &mockRunner{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/suggestions", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		suggestions := &mockSuggestions{
			suggestFn: func(_ context.Context, _ recommend.SuggestionRequest) ([]domain.Suggestion, error) {
				return nil, errors.New("pool exhausted")
			},
		}
		s := newTestServer(suggestions, &mockRunner{})

		rec := doRequest(t, s, http.MethodPost, "/api/v1/suggestions", map[string]interface{}{
			"topics": []string{"NLP"},
		}, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pool exhausted")
	})
}

// ---------------------------------------------------------------------------
// Topic catalog
// ---------------------------------------------------------------------------

func TestTopicsHandler(t *testing.T) {
	t.Run("returns topic counts", func(t *testing.T) {
		suggestions := &mockSuggestions{
			topicsFn: func(_ context.Context) ([]domain.TopicCount, error) {
				return []domain.TopicCount{
					{Topic: "NLP", Count: 4},
					{Topic: "AI", Count: 2},
				}, nil
			},
		}
		s := newTestServer(suggestions, &mockRunner{})

		rec := doRequest(t, s, http.MethodGet, "/api/v1/topics", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp topicsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "NLP", resp.Topics[0].Topic)
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		suggestions := &mockSuggestions{
			topicsFn: func(_ context.Context) ([]domain.TopicCount, error) {
				return nil, errors.New("boom")
			},
		}
		s := newTestServer(suggestions, &mockRunner{})

		rec := doRequest(t, s, http.MethodGet, "/api/v1/topics", nil, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// ---------------------------------------------------------------------------
// Manual and name-based resolution
// ---------------------------------------------------------------------------

func TestResolveHandler(t *testing.T) {
	resolved := &domain.Researcher{
		ID:               "did:plc:abc",
		DisplayName:      "Josiah Carberry",
		ORCID:            "0000-0002-1825-0097",
		OpenAlexAuthorID: "A123",
		Topics:           []string{"Psychoceramics"},
		Active:           true,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	t.Run("manual resolution with orcid", func(t *testing.T) {
		runner := &mockRunner{
			resolveManualFn: func(_ context.Context, id, orcid string) (*domain.Researcher, error) {
				assert.Equal(t, "did:plc:abc", id)
				assert.Equal(t, "https://orcid.org/0000-0002-1825-0097", orcid)
				return resolved, nil
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:abc/resolve",
			map[string]string{"orcid": "https://orcid.org/0000-0002-1825-0097"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp resolveResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.StatusUpdated, resp.Status)
		assert.Equal(t, 1, resp.TopicCount)
		require.NotNil(t, resp.Researcher)
		assert.Equal(t, "0000-0002-1825-0097", resp.Researcher.Orcid)
	})

	t.Run("manual resolution without topics reports no_topics_found", func(t *testing.T) {
		bare := *resolved
		bare.Topics = nil
		runner := &mockRunner{
			resolveManualFn: func(_ context.Context, _, _ string) (*domain.Researcher, error) {
				return &bare, nil
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:abc/resolve",
			map[string]string{"orcid": "0000-0002-1825-0097"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp resolveResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.StatusNoTopicsFound, resp.Status)
	})

	t.Run("unknown author reports author_not_found", func(t *testing.T) {
		runner := &mockRunner{
			resolveManualFn: func(_ context.Context, _, _ string) (*domain.Researcher, error) {
				return nil, domain.ErrAuthorNotFound
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:abc/resolve",
			map[string]string{"orcid": "0000-0000-0000-0000"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp resolveResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.StatusAuthorNotFound, resp.Status)
		assert.Nil(t, resp.Researcher)
	})

	t.Run("unknown researcher returns 404", func(t *testing.T) {
		runner := &mockRunner{
			resolveManualFn: func(_ context.Context, _, _ string) (*domain.Researcher, error) {
				return nil, domain.NewNotFoundError("researcher", "did:plc:missing")
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:missing/resolve",
			map[string]string{"orcid": "0000-0002-1825-0097"}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("registry outage returns 502", func(t *testing.T) {
		runner := &mockRunner{
			resolveManualFn: func(_ context.Context, _, _ string) (*domain.Researcher, error) {
				return nil, domain.NewRegistryError("OpenAlex", 503, "down", nil)
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:abc/resolve",
			map[string]string{"orcid": "0000-0002-1825-0097"}, nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("name-based resolution applies unambiguous match", func(t *testing.T) {
		runner := &mockRunner{
			resolveAutoFn: func(_ context.Context, id string) (*domain.Researcher, domain.BackfillStatus, error) {
				assert.Equal(t, "did:plc:abc", id)
				return resolved, domain.StatusUpdated, nil
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:abc/resolve", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp resolveResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.StatusUpdated, resp.Status)
		require.NotNil(t, resp.Researcher)
	})

	t.Run("ambiguous name reports multiple_matches without record", func(t *testing.T) {
		runner := &mockRunner{
			resolveAutoFn: func(_ context.Context, _ string) (*domain.Researcher, domain.BackfillStatus, error) {
				return &domain.Researcher{ID: "did:plc:abc"}, domain.StatusMultipleMatches, nil
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/api/v1/researchers/did:plc:abc/resolve", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp resolveResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.StatusMultipleMatches, resp.Status)
		assert.Nil(t, resp.Researcher)
	})
}

// ---------------------------------------------------------------------------
// Backfill
// ---------------------------------------------------------------------------

func TestBackfillHandler(t *testing.T) {
	t.Run("runs backfill and returns report", func(t *testing.T) {
		runner := &mockRunner{
			runFn: func(_ context.Context, mode domain.BackfillMode) (*domain.BackfillReport, error) {
				assert.Equal(t, domain.BackfillModeTopics, mode)
				report := domain.NewBackfillReport(mode)
				report.Record(domain.BackfillEntry{
					ResearcherID: "did:plc:abc",
					Status:       domain.StatusUpdated,
					TopicCount:   3,
				})
				return report, nil
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/admin/backfill",
			map[string]string{"mode": "topics"}, adminHeaders())
		require.Equal(t, http.StatusOK, rec.Code)

		var report domain.BackfillReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, domain.BackfillModeTopics, report.Mode)
		assert.Equal(t, 1, report.Processed)
		assert.Equal(t, 1, report.Succeeded)
	})

	t.Run("concurrent run returns 409", func(t *testing.T) {
		runner := &mockRunner{
			runFn: func(_ context.Context, _ domain.BackfillMode) (*domain.BackfillReport, error) {
				return nil, domain.ErrBackfillRunning
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/admin/backfill",
			map[string]string{"mode": "topics"}, adminHeaders())
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown mode returns 400", func(t *testing.T) {
		runner := &mockRunner{
			runFn: func(_ context.Context, mode domain.BackfillMode) (*domain.BackfillReport, error) {
				return nil, domain.NewValidationError("mode", "unknown backfill mode")
			},
		}
		s := newTestServer(&mockSuggestions{}, runner)

		rec := doRequest(t, s, http.MethodPost, "/admin/backfill",
			map[string]string{"mode": "bogus"}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing mode returns 400", func(t *testing.T) {
		s := newTestServer(&mockSuggestions{}, &mockRunner{})

		rec := doRequest(t, s, http.MethodPost, "/admin/backfill",
			map[string]string{}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
