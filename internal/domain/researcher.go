// Package domain defines the core types and error taxonomy for the
// researcher service: verified researcher records, identity resolution
// candidates, backfill run reports, and follow suggestions.
package domain

import (
	"strings"
	"time"
)

// Limits applied when materializing and displaying topic lists.
const (
	// MaxTopics is the maximum number of topic labels persisted per researcher.
	MaxTopics = 20

	// DisplayTopics is the number of topics carried on a suggestion for display.
	DisplayTopics = 5

	// MaxMatchedTopics is the maximum number of matched topic labels returned
	// with a suggestion for explanation.
	MaxMatchedTopics = 3
)

// orcidURLPrefix is the canonical URL form of an ORCID identifier.
const orcidURLPrefix = "https://orcid.org/"

// Researcher is one verified person's record. Nullable database columns map
// to empty strings; Topics is nil when never computed.
type Researcher struct {
	// ID is the opaque account identifier assigned by the social layer.
	ID string

	// DisplayName is the free-text profile name. May be empty or malformed.
	DisplayName string

	// ORCID is the canonical scholarly identifier, empty until resolved.
	// Stored in bare form (e.g. "0000-0001-2345-6789"), never as a URL.
	ORCID string

	// OpenAlexAuthorID is the bibliographic-source author identifier
	// (e.g. "A5023888391"), empty until resolved.
	OpenAlexAuthorID string

	// Affiliation is a free-text institution name.
	Affiliation string

	// Topics is the ranked research-topic list, highest relevance first,
	// at most MaxTopics entries. Nil if never computed. Overwritten whole
	// on each successful resolution, never merged.
	Topics []string

	// Active controls whether the record participates in recommendations.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTopics reports whether a topic list has been computed for the record.
func (r *Researcher) HasTopics() bool {
	return len(r.Topics) > 0
}

// TopTopics returns the first n topics for truncated display.
func (r *Researcher) TopTopics(n int) []string {
	if n >= len(r.Topics) {
		return r.Topics
	}
	return r.Topics[:n]
}

// IdentityCandidate is one canonical identifier returned by the identity
// registry for a name query, with the display name it was matched on.
type IdentityCandidate struct {
	ORCID       string
	DisplayName string
}

// NormalizeORCID strips the https://orcid.org/ URL prefix, if present, and
// surrounding whitespace, yielding the bare identifier form.
func NormalizeORCID(orcid string) string {
	orcid = strings.TrimSpace(orcid)
	orcid = strings.TrimPrefix(orcid, orcidURLPrefix)
	orcid = strings.TrimPrefix(orcid, "http://orcid.org/")
	return strings.TrimSpace(orcid)
}

// Suggestion is one ranked follow recommendation produced by the relevance
// scorer. Topics is truncated to DisplayTopics; MatchedTopics holds up to
// MaxMatchedTopics labels explaining the match.
type Suggestion struct {
	ResearcherID  string   `json:"researcher_id"`
	DisplayName   string   `json:"display_name,omitempty"`
	ORCID         string   `json:"orcid,omitempty"`
	Affiliation   string   `json:"affiliation,omitempty"`
	Topics        []string `json:"topics"`
	Score         int      `json:"score"`
	MatchedTopics []string `json:"matched_topics"`
}

// TopicCount is one entry of the topic catalog: a label and the number of
// active researchers carrying it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}
