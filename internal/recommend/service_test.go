package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarweave/researcher-service/internal/domain"
)

type mockCandidateSource struct {
	pool    []*domain.Researcher
	counts  []domain.TopicCount
	poolErr error
	countErr error
}

func (m *mockCandidateSource) ListActiveWithTopics(_ context.Context) ([]*domain.Researcher, error) {
	return m.pool, m.poolErr
}

func (m *mockCandidateSource) TopicCounts(_ context.Context) ([]domain.TopicCount, error) {
	return m.counts, m.countErr
}

func TestService_Suggest(t *testing.T) {
	t.Run("returns ranked suggestions", func(t *testing.T) {
		source := &mockCandidateSource{
			pool: []*domain.Researcher{
				candidate("c1", "NLP"),
				candidate("c2", "Marine Biology"),
			},
		}
		svc := NewService(source, zerolog.Nop())

		results, err := svc.Suggest(context.Background(), SuggestionRequest{
			Topics: []string{"NLP"},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "c1", results[0].ResearcherID)
	})

	t.Run("rejects empty topic set", func(t *testing.T) {
		svc := NewService(&mockCandidateSource{}, zerolog.Nop())

		_, err := svc.Suggest(context.Background(), SuggestionRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("rejects out-of-range limit", func(t *testing.T) {
		svc := NewService(&mockCandidateSource{}, zerolog.Nop())

		_, err := svc.Suggest(context.Background(), SuggestionRequest{
			Topics: []string{"NLP"},
			Limit:  500,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("store failure propagates", func(t *testing.T) {
		source := &mockCandidateSource{poolErr: errors.New("connection reset")}
		svc := NewService(source, zerolog.Nop())

		_, err := svc.Suggest(context.Background(), SuggestionRequest{Topics: []string{"NLP"}})
		require.Error(t, err)
	})

	t.Run("empty pool yields empty result", func(t *testing.T) {
		svc := NewService(&mockCandidateSource{}, zerolog.Nop())

		results, err := svc.Suggest(context.Background(), SuggestionRequest{Topics: []string{"NLP"}})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestService_Topics(t *testing.T) {
	t.Run("returns counts", func(t *testing.T) {
		source := &mockCandidateSource{
			counts: []domain.TopicCount{
				{Topic: "NLP", Count: 4},
				{Topic: "AI", Count: 2},
			},
		}
		svc := NewService(source, zerolog.Nop())

		counts, err := svc.Topics(context.Background())
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "NLP", counts[0].Topic)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		source := &mockCandidateSource{countErr: errors.New("boom")}
		svc := NewService(source, zerolog.Nop())

		_, err := svc.Topics(context.Background())
		require.Error(t, err)
	})
}
