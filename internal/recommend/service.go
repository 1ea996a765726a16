package recommend

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/scholarweave/researcher-service/internal/domain"
)

// CandidateSource reads the persisted researcher pool for scoring.
type CandidateSource interface {
	// ListActiveWithTopics returns all active researchers with a non-empty
	// topic list.
	ListActiveWithTopics(ctx context.Context) ([]*domain.Researcher, error)

	// TopicCounts aggregates topic occurrence counts across that same pool.
	TopicCounts(ctx context.Context) ([]domain.TopicCount, error)
}

// SuggestionRequest is a scored-suggestion query.
type SuggestionRequest struct {
	// Topics is the query topic set. At least one entry is required.
	Topics []string `json:"topics" validate:"required,min=1,dive,required"`

	// ExcludeID is the requester's own researcher id, excluded from results.
	ExcludeID string `json:"exclude_id"`

	// Limit caps the result count. Zero means DefaultLimit.
	Limit int `json:"limit" validate:"omitempty,min=1,max=50"`
}

// Service loads the candidate pool and runs the relevance scorer.
type Service struct {
	candidates CandidateSource
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewService creates a recommendation service over the researcher store.
func NewService(candidates CandidateSource, logger zerolog.Logger) *Service {
	return &Service{
		candidates: candidates,
		validate:   validator.New(),
		logger:     logger.With().Str("component", "recommend_service").Logger(),
	}
}

// Suggest validates the request, loads the active candidate pool, and
// returns ranked follow suggestions. An empty pool yields an empty result,
// not an error.
func (s *Service) Suggest(ctx context.Context, req SuggestionRequest) ([]domain.Suggestion, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError("request", err.Error())
	}

	pool, err := s.candidates.ListActiveWithTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candidate pool: %w", err)
	}

	suggestions, err := Suggest(req.Topics, pool, req.ExcludeID, req.Limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("pool", len(pool)).
		Int("results", len(suggestions)).
		Msg("scored follow suggestions")
	return suggestions, nil
}

// Topics returns topic occurrence counts across the active pool, for
// populating a topic-selection UI.
func (s *Service) Topics(ctx context.Context) ([]domain.TopicCount, error) {
	counts, err := s.candidates.TopicCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating topic counts: %w", err)
	}
	return counts, nil
}
