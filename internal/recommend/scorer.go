// Package recommend scores researcher-to-researcher topic relevance for
// follow suggestions.
package recommend

import (
	"sort"
	"strings"

	"github.com/scholarweave/researcher-service/internal/domain"
)

// Scoring weights. An exact label match is worth three substring matches.
const (
	exactMatchScore     = 3
	substringMatchScore = 1
)

// DefaultLimit is the result cap applied when the caller does not set one.
const DefaultLimit = 10

// Suggest scores every candidate's topic list against the query topics and
// returns the qualifying candidates ranked by score. The requester
// (excludeID) and candidates without topics are skipped. Matching is
// case-insensitive: exact equality scores 3, otherwise a containment either
// direction scores 1, and a given (query, candidate) topic pair contributes
// to at most one rule. Candidates scoring zero are dropped. The sort is
// stable, so equal scores keep pool order.
//
// Returns domain.ErrInvalidInput when the query topic set is empty or holds
// only blank strings.
func Suggest(queryTopics []string, pool []*domain.Researcher, excludeID string, limit int) ([]domain.Suggestion, error) {
	query := make([]string, 0, len(queryTopics))
	for _, topic := range queryTopics {
		if strings.TrimSpace(topic) != "" {
			query = append(query, topic)
		}
	}
	if len(query) == 0 {
		return nil, domain.NewValidationError("topics", "at least one non-empty query topic is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var suggestions []domain.Suggestion
	for _, candidate := range pool {
		if candidate.ID == excludeID || !candidate.HasTopics() {
			continue
		}

		score, matched := scoreCandidate(query, candidate.Topics)
		if score == 0 {
			continue
		}

		suggestions = append(suggestions, domain.Suggestion{
			ResearcherID:  candidate.ID,
			DisplayName:   candidate.DisplayName,
			ORCID:         candidate.ORCID,
			Affiliation:   candidate.Affiliation,
			Topics:        candidate.TopTopics(domain.DisplayTopics),
			Score:         score,
			MatchedTopics: matched,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// scoreCandidate compares every query topic against every candidate topic.
// The matched list holds the first domain.MaxMatchedTopics distinct candidate
// labels encountered in scan order, query-topic-major, regardless of which
// rule they matched under.
func scoreCandidate(queryTopics, candidateTopics []string) (int, []string) {
	score := 0
	var matched []string

	addMatch := func(label string) {
		if len(matched) >= domain.MaxMatchedTopics {
			return
		}
		for _, m := range matched {
			if m == label {
				return
			}
		}
		matched = append(matched, label)
	}

	for _, queryTopic := range queryTopics {
		q := strings.ToLower(queryTopic)
		for _, candidateTopic := range candidateTopics {
			c := strings.ToLower(candidateTopic)
			switch {
			case q == c:
				score += exactMatchScore
				addMatch(candidateTopic)
			case strings.Contains(q, c) || strings.Contains(c, q):
				score += substringMatchScore
				addMatch(candidateTopic)
			}
		}
	}

	return score, matched
}
