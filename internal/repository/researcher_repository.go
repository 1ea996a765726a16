package repository

import (
	"context"

	"github.com/scholarweave/researcher-service/internal/domain"
)

// ResearcherRepository handles persistence of verified researcher records,
// their resolved scholarly identifiers, and their derived topic lists.
type ResearcherRepository interface {
	// GetByID retrieves a researcher by its internal account id.
	// Returns domain.ErrNotFound if no matching record exists.
	GetByID(ctx context.Context, id string) (*domain.Researcher, error)

	// Create inserts a new researcher record.
	// Returns domain.ErrAlreadyExists if a record with the same id exists.
	Create(ctx context.Context, researcher *domain.Researcher) error

	// ListMissingTopics returns records that hold a canonical identifier but
	// have never had a topic list computed. These qualify for topic backfill.
	ListMissingTopics(ctx context.Context) ([]*domain.Researcher, error)

	// ListMissingIdentity returns records without a canonical identifier.
	// These qualify for identity-discovery backfill, which parses the display
	// name and searches the identity registry.
	ListMissingIdentity(ctx context.Context) ([]*domain.Researcher, error)

	// ListActiveWithTopics returns the candidate pool for recommendations:
	// all active records carrying a non-empty topic list.
	ListActiveWithTopics(ctx context.Context) ([]*domain.Researcher, error)

	// ApplyResolution writes the outcome of an identity resolution: the
	// canonical identifier, the bibliographic author id, and the complete
	// topic list, in one statement. The write is conditional on the record
	// still lacking a canonical identifier, so two concurrent resolution
	// paths cannot diverge; the loser observes applied == false and must
	// not write anything else.
	ApplyResolution(ctx context.Context, id, orcid, openAlexID string, topics []string) (applied bool, err error)

	// SetIdentity unconditionally overwrites the record's canonical
	// identifier, bibliographic author id, and topic list. Used by manual
	// resolution, where an operator's entry wins over any earlier value
	// (last writer wins). Returns domain.ErrNotFound if no matching record
	// exists.
	SetIdentity(ctx context.Context, id, orcid, openAlexID string, topics []string) error

	// SetTopics overwrites the record's topic list and bibliographic author
	// id. Used by topic backfill, where the canonical identifier is already
	// present. The list replaces any previous value; it is never merged.
	SetTopics(ctx context.Context, id, openAlexID string, topics []string) error

	// SetActive flips whether the record participates in recommendations.
	// Returns domain.ErrNotFound if no matching record exists.
	SetActive(ctx context.Context, id string, active bool) error

	// TopicCounts aggregates topic occurrence counts across all active
	// researchers with topics, ordered by count descending then label
	// ascending. Feeds the topic-selection UI.
	TopicCounts(ctx context.Context) ([]domain.TopicCount, error)
}
