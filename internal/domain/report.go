package domain

import (
	"time"

	"github.com/google/uuid"
)

// BackfillMode selects which batch job a backfill run executes.
type BackfillMode string

const (
	// BackfillModeTopics fills in topic lists for records that already carry
	// an ORCID but have never had topics computed.
	BackfillModeTopics BackfillMode = "topics"

	// BackfillModeIdentity discovers ORCIDs by display name for records that
	// have none, then fills in topics for unambiguous matches.
	BackfillModeIdentity BackfillMode = "identity"
)

// Valid reports whether the mode is one of the defined backfill modes.
func (m BackfillMode) Valid() bool {
	return m == BackfillModeTopics || m == BackfillModeIdentity
}

// BackfillStatus is the per-record outcome of a backfill run.
type BackfillStatus string

const (
	// StatusUpdated is the success tag: a complete topic list was persisted.
	StatusUpdated BackfillStatus = "updated"

	// StatusNoName means the display name could not be split into given/family.
	StatusNoName BackfillStatus = "no_name"

	// StatusNoMatch means the identity registry returned zero candidates.
	StatusNoMatch BackfillStatus = "no_match"

	// StatusMultipleMatches means more than one candidate was returned;
	// the record is left for manual disambiguation.
	StatusMultipleMatches BackfillStatus = "multiple_matches"

	// StatusAuthorNotFound means the ORCID resolved to no bibliographic author.
	StatusAuthorNotFound BackfillStatus = "author_not_found"

	// StatusAuthorFetchFailed means the author lookup call itself failed.
	StatusAuthorFetchFailed BackfillStatus = "author_fetch_failed"

	// StatusWorksFetchFailed means the works listing call failed.
	StatusWorksFetchFailed BackfillStatus = "works_fetch_failed"

	// StatusNoTopicsFound means works were fetched but carried no usable
	// topic labels.
	StatusNoTopicsFound BackfillStatus = "no_topics_found"

	// StatusSkippedConflict means a concurrent resolution claimed the record
	// while the run was processing it; the run's result was discarded.
	StatusSkippedConflict BackfillStatus = "skipped_conflict"
)

// BackfillEntry is one record's outcome within a backfill run.
type BackfillEntry struct {
	ResearcherID string         `json:"researcher_id"`
	DisplayName  string         `json:"display_name,omitempty"`
	Status       BackfillStatus `json:"status"`
	TopicCount   int            `json:"topic_count,omitempty"`
}

// BackfillReport is the full outcome of one batch invocation. It is returned
// to the caller for display and logging, never persisted.
type BackfillReport struct {
	RunID     uuid.UUID              `json:"run_id"`
	Mode      BackfillMode           `json:"mode"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Entries   []BackfillEntry        `json:"entries"`
	Counts    map[BackfillStatus]int `json:"counts"`
	Processed int                    `json:"processed"`
	Succeeded int                    `json:"succeeded"`
}

// NewBackfillReport creates an empty report for a run starting now.
func NewBackfillReport(mode BackfillMode) *BackfillReport {
	return &BackfillReport{
		RunID:     uuid.New(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		Counts:    make(map[BackfillStatus]int),
	}
}

// Record appends one per-record outcome and updates the aggregate counts.
func (r *BackfillReport) Record(entry BackfillEntry) {
	r.Entries = append(r.Entries, entry)
	r.Counts[entry.Status]++
	r.Processed++
	if entry.Status == StatusUpdated {
		r.Succeeded++
	}
}
