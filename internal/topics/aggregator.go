// Package topics derives ranked research-topic lists from an author's
// publication history.
package topics

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/registries/openalex"
)

// WorksLister fetches an author's recent works from the bibliographic
// registry.
type WorksLister interface {
	WorksByAuthor(ctx context.Context, authorID string) ([]openalex.Work, error)
}

// Aggregator reduces an author's works to a ranked topic list.
type Aggregator struct {
	works  WorksLister
	logger zerolog.Logger
}

// NewAggregator creates an aggregator over the works registry.
func NewAggregator(works WorksLister, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		works:  works,
		logger: logger.With().Str("component", "topic_aggregator").Logger(),
	}
}

// TopicsForAuthor fetches the author's recent works and rolls their topic
// classifications up into a ranked label list. Every topic credits three
// labels into one shared tally: its own display label, its parent subfield
// label, and its parent field label. A field label earned through one work's
// subfield counts the same as a topic label earned directly. Labels are
// ranked by count descending, ties broken by first-seen order during the
// scan, and capped at domain.MaxTopics.
//
// An author with zero works, or works carrying no usable labels, yields an
// empty list and no error. A failed fetch returns the error; softening it is
// the caller's decision.
func (a *Aggregator) TopicsForAuthor(ctx context.Context, authorID string) ([]string, error) {
	works, err := a.works.WorksByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	ranked := Rank(works)
	a.logger.Debug().
		Str("author_id", authorID).
		Int("works", len(works)).
		Int("topics", len(ranked)).
		Msg("aggregated author topics")
	return ranked, nil
}

// Rank tallies topic labels across a fixed work list and returns the top
// domain.MaxTopics labels by count, first-seen order breaking ties. The
// tally is local to the call, so ranking is deterministic for a given list.
func Rank(works []openalex.Work) []string {
	counts := make(map[string]int)
	var firstSeen []string

	credit := func(label string) {
		if label == "" {
			return
		}
		if _, seen := counts[label]; !seen {
			firstSeen = append(firstSeen, label)
		}
		counts[label]++
	}

	for _, work := range works {
		for _, topic := range work.Topics {
			credit(topic.DisplayName)
			if topic.Subfield != nil {
				credit(topic.Subfield.DisplayName)
			}
			if topic.Field != nil {
				credit(topic.Field.DisplayName)
			}
		}
	}

	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if len(ranked) > domain.MaxTopics {
		ranked = ranked[:domain.MaxTopics]
	}
	return ranked
}
