// Package backfill drives identity resolution and topic aggregation over
// every researcher record missing derived data.
//
// Two modes share one runner: topic backfill fills in topic lists for
// records that already hold a canonical identifier, and identity discovery
// additionally resolves display names to identifiers first. Processing is
// strictly sequential with a fixed delay after each record. The delay is a
// client-side rate limit protecting the external registries, not a
// correctness requirement, and must stay in place so the upstream services
// do not throttle or ban us.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarweave/researcher-service/internal/database"
	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/identity"
	"github.com/scholarweave/researcher-service/internal/observability"
)

// Advisory lock keys, one per mode. A second run of the same mode is
// rejected while the first holds the lock; the two modes may overlap.
const (
	lockKeyTopics   int64 = 427001
	lockKeyIdentity int64 = 427002
)

// Default inter-record delays. Identity discovery hits both registries per
// record, so it backs off harder.
const (
	DefaultTopicDelay    = 100 * time.Millisecond
	DefaultIdentityDelay = 200 * time.Millisecond
)

// Store is the researcher persistence surface the runner needs.
type Store interface {
	GetByID(ctx context.Context, id string) (*domain.Researcher, error)
	ListMissingTopics(ctx context.Context) ([]*domain.Researcher, error)
	ListMissingIdentity(ctx context.Context) ([]*domain.Researcher, error)
	ApplyResolution(ctx context.Context, id, orcid, openAlexID string, topics []string) (bool, error)
	SetIdentity(ctx context.Context, id, orcid, openAlexID string, topics []string) error
	SetTopics(ctx context.Context, id, openAlexID string, topics []string) error
}

// Locker serializes runs of the same mode across service instances.
// TryAdvisoryLock returns nil when another holder has the key.
type Locker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (database.Lock, error)
}

// Resolver performs the identity lookups.
type Resolver interface {
	CandidatesByName(ctx context.Context, given, family string) []domain.IdentityCandidate
	AuthorByIdentifier(ctx context.Context, orcid string) (*identity.AuthorRecord, error)
}

// Aggregator derives a ranked topic list for a bibliographic author.
type Aggregator interface {
	TopicsForAuthor(ctx context.Context, authorID string) ([]string, error)
}

// Config holds runner tuning knobs.
type Config struct {
	// TopicDelay is the pause after each record in topic mode.
	TopicDelay time.Duration

	// IdentityDelay is the pause after each record in identity mode.
	IdentityDelay time.Duration
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.TopicDelay == 0 {
		c.TopicDelay = DefaultTopicDelay
	}
	if c.IdentityDelay == 0 {
		c.IdentityDelay = DefaultIdentityDelay
	}
}

// Runner executes backfill batches and one-off manual resolutions.
type Runner struct {
	config     Config
	store      Store
	locker     Locker
	resolver   Resolver
	aggregator Aggregator
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// NewRunner creates a backfill runner.
func NewRunner(cfg Config, store Store, locker Locker, resolver Resolver, aggregator Aggregator, metrics *observability.Metrics, logger zerolog.Logger) *Runner {
	cfg.applyDefaults()

	return &Runner{
		config:     cfg,
		store:      store,
		locker:     locker,
		resolver:   resolver,
		aggregator: aggregator,
		metrics:    metrics,
		logger:     logger.With().Str("component", "backfill_runner").Logger(),
	}
}

// Run executes one backfill batch in the given mode and returns the full
// per-record report. Record failures are soft and never abort the batch;
// only a persistence failure or context cancellation does. A second
// concurrent run of the same mode fails fast with domain.ErrBackfillRunning.
func (r *Runner) Run(ctx context.Context, mode domain.BackfillMode) (*domain.BackfillReport, error) {
	if !mode.Valid() {
		return nil, domain.NewValidationError("mode", fmt.Sprintf("unknown backfill mode %q", mode))
	}

	lockKey := lockKeyTopics
	delay := r.config.TopicDelay
	if mode == domain.BackfillModeIdentity {
		lockKey = lockKeyIdentity
		delay = r.config.IdentityDelay
	}

	lock, err := r.locker.TryAdvisoryLock(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("acquiring backfill lock: %w", err)
	}
	if lock == nil {
		r.metrics.RecordBackfillLocked(string(mode))
		return nil, domain.ErrBackfillRunning
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Error().Err(err).Str("mode", string(mode)).Msg("failed to release backfill lock")
		}
	}()

	report := domain.NewBackfillReport(mode)
	logger := observability.WithBackfillContext(r.logger, report.RunID.String(), string(mode))

	var records []*domain.Researcher
	if mode == domain.BackfillModeTopics {
		records, err = r.store.ListMissingTopics(ctx)
	} else {
		records, err = r.store.ListMissingIdentity(ctx)
	}
	if err != nil {
		r.metrics.RecordBackfillRun(string(mode), "failed", time.Since(report.StartedAt).Seconds())
		return nil, fmt.Errorf("listing backfill candidates: %w", err)
	}

	logger.Info().Int("records", len(records)).Msg("backfill run started")

	for _, record := range records {
		var entry domain.BackfillEntry
		if mode == domain.BackfillModeTopics {
			entry, err = r.processTopics(ctx, record)
		} else {
			entry, err = r.processIdentity(ctx, record)
		}
		if err != nil {
			// Persistence failures abort; everything else became a status.
			report.Duration = time.Since(report.StartedAt)
			r.metrics.RecordBackfillRun(string(mode), "failed", report.Duration.Seconds())
			return report, err
		}

		report.Record(entry)
		r.metrics.RecordBackfillRecord(string(mode), string(entry.Status))
		logger.Debug().
			Str("researcher_id", entry.ResearcherID).
			Str("status", string(entry.Status)).
			Int("topic_count", entry.TopicCount).
			Msg("backfill record processed")

		if err := sleepCtx(ctx, delay); err != nil {
			report.Duration = time.Since(report.StartedAt)
			r.metrics.RecordBackfillRun(string(mode), "failed", report.Duration.Seconds())
			return report, err
		}
	}

	report.Duration = time.Since(report.StartedAt)
	r.metrics.RecordBackfillRun(string(mode), "completed", report.Duration.Seconds())
	logger.Info().
		Int("processed", report.Processed).
		Int("succeeded", report.Succeeded).
		Dur("duration", report.Duration).
		Msg("backfill run finished")

	return report, nil
}

// processTopics derives and persists a topic list for a record that already
// holds a canonical identifier. The returned error is non-nil only for
// persistence failures.
func (r *Runner) processTopics(ctx context.Context, record *domain.Researcher) (domain.BackfillEntry, error) {
	entry := domain.BackfillEntry{
		ResearcherID: record.ID,
		DisplayName:  record.DisplayName,
	}

	author, err := r.resolver.AuthorByIdentifier(ctx, record.ORCID)
	if err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			entry.Status = domain.StatusAuthorNotFound
		} else {
			r.metrics.RecordRegistryFailure("OpenAlex")
			entry.Status = domain.StatusAuthorFetchFailed
		}
		return entry, nil
	}

	topics, err := r.aggregator.TopicsForAuthor(ctx, author.OpenAlexID)
	if err != nil {
		r.metrics.RecordRegistryFailure("OpenAlex")
		entry.Status = domain.StatusWorksFetchFailed
		return entry, nil
	}
	if len(topics) == 0 {
		entry.Status = domain.StatusNoTopicsFound
		return entry, nil
	}

	if err := r.store.SetTopics(ctx, record.ID, author.OpenAlexID, topics); err != nil {
		return entry, fmt.Errorf("persisting topics for %s: %w", record.ID, err)
	}

	r.metrics.RecordResolutionApplied("backfill", len(topics))
	entry.Status = domain.StatusUpdated
	entry.TopicCount = len(topics)
	return entry, nil
}

// processIdentity resolves a record's display name to a canonical
// identifier and, when unambiguous, derives its topic list in the same
// pass. The returned error is non-nil only for persistence failures.
func (r *Runner) processIdentity(ctx context.Context, record *domain.Researcher) (domain.BackfillEntry, error) {
	entry := domain.BackfillEntry{
		ResearcherID: record.ID,
		DisplayName:  record.DisplayName,
	}

	parsed, err := identity.ParseDisplayName(record.DisplayName)
	if err != nil {
		entry.Status = domain.StatusNoName
		return entry, nil
	}

	candidates := r.resolver.CandidatesByName(ctx, parsed.Given, parsed.Family)
	switch {
	case len(candidates) == 0:
		entry.Status = domain.StatusNoMatch
		return entry, nil
	case len(candidates) > 1:
		// Ambiguity is reported, never auto-resolved.
		entry.Status = domain.StatusMultipleMatches
		return entry, nil
	}

	orcid := candidates[0].ORCID

	author, err := r.resolver.AuthorByIdentifier(ctx, orcid)
	if err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			entry.Status = domain.StatusAuthorNotFound
		} else {
			r.metrics.RecordRegistryFailure("OpenAlex")
			entry.Status = domain.StatusAuthorFetchFailed
		}
		return entry, nil
	}

	topics, err := r.aggregator.TopicsForAuthor(ctx, author.OpenAlexID)
	if err != nil {
		r.metrics.RecordRegistryFailure("OpenAlex")
		entry.Status = domain.StatusWorksFetchFailed
		return entry, nil
	}

	// A nil topic list leaves the column NULL so a later topic backfill can
	// retry; the identifier itself is still claimed.
	if len(topics) == 0 {
		topics = nil
	}

	applied, err := r.store.ApplyResolution(ctx, record.ID, orcid, author.OpenAlexID, topics)
	if err != nil {
		return entry, fmt.Errorf("persisting resolution for %s: %w", record.ID, err)
	}
	if !applied {
		r.metrics.RecordResolutionConflict()
		r.logger.Warn().
			Str("researcher_id", record.ID).
			Str("orcid", orcid).
			Msg("resolution skipped, record already claimed by a concurrent writer")
		entry.Status = domain.StatusSkippedConflict
		return entry, nil
	}

	r.metrics.RecordResolutionApplied("backfill", len(topics))
	if len(topics) == 0 {
		entry.Status = domain.StatusNoTopicsFound
		return entry, nil
	}

	entry.Status = domain.StatusUpdated
	entry.TopicCount = len(topics)
	return entry, nil
}

// ResolveManual applies an operator-entered canonical identifier to one
// researcher. Unlike the batch paths this propagates registry errors to the
// caller, and it overwrites any earlier resolution (last writer wins).
func (r *Runner) ResolveManual(ctx context.Context, researcherID, orcid string) (*domain.Researcher, error) {
	normalized := domain.NormalizeORCID(orcid)
	if normalized == "" {
		return nil, domain.NewValidationError("orcid", "orcid is required")
	}

	if _, err := r.store.GetByID(ctx, researcherID); err != nil {
		return nil, err
	}

	author, err := r.resolver.AuthorByIdentifier(ctx, normalized)
	if err != nil {
		if !errors.Is(err, domain.ErrAuthorNotFound) {
			r.metrics.RecordRegistryFailure("OpenAlex")
		}
		return nil, err
	}

	topics, err := r.aggregator.TopicsForAuthor(ctx, author.OpenAlexID)
	if err != nil {
		r.metrics.RecordRegistryFailure("OpenAlex")
		return nil, err
	}
	if len(topics) == 0 {
		topics = nil
	}

	if err := r.store.SetIdentity(ctx, researcherID, normalized, author.OpenAlexID, topics); err != nil {
		return nil, err
	}

	r.metrics.RecordResolutionApplied("manual", len(topics))
	logger := observability.WithResearcherContext(r.logger, researcherID, normalized)
	logger.Info().
		Int("topic_count", len(topics)).
		Msg("manual resolution applied")

	return r.store.GetByID(ctx, researcherID)
}

// ResolveAuto resolves one record by its stored display name, applying the
// resolution only when exactly one registry candidate matches. Zero or
// multiple candidates are reported through the returned status and leave the
// record untouched. The refreshed record is returned alongside the status.
func (r *Runner) ResolveAuto(ctx context.Context, researcherID string) (*domain.Researcher, domain.BackfillStatus, error) {
	record, err := r.store.GetByID(ctx, researcherID)
	if err != nil {
		return nil, "", err
	}

	entry, err := r.processIdentity(ctx, record)
	if err != nil {
		return nil, "", err
	}

	refreshed, err := r.store.GetByID(ctx, researcherID)
	if err != nil {
		return nil, "", err
	}

	r.logger.Info().
		Str("researcher_id", researcherID).
		Str("status", string(entry.Status)).
		Msg("name-based resolution attempted")

	return refreshed, entry.Status, nil
}

// sleepCtx pauses for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
