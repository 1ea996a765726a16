package identity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/registries/openalex"
)

// IdentityRegistry searches the canonical identifier registry by name.
type IdentityRegistry interface {
	SearchByName(ctx context.Context, given, family string) ([]domain.IdentityCandidate, error)
}

// BibliographicRegistry looks up author records by canonical identifier.
type BibliographicRegistry interface {
	AuthorByORCID(ctx context.Context, orcid string) (*openalex.Author, error)
}

// AuthorRecord is the bibliographic-side identity of a resolved researcher.
type AuthorRecord struct {
	// OpenAlexID is the short bibliographic author identifier (A...).
	OpenAlexID string

	// DisplayName is the author's name as the bibliographic registry knows it.
	DisplayName string

	// Affiliation is the author's last known institution, if any.
	Affiliation string
}

// Resolver performs the two identity lookups: name to candidate iDs against
// ORCID, and confirmed iD to author record against OpenAlex.
type Resolver struct {
	identity IdentityRegistry
	biblio   BibliographicRegistry
	logger   zerolog.Logger
}

// NewResolver creates a resolver over the two registries.
func NewResolver(identity IdentityRegistry, biblio BibliographicRegistry, logger zerolog.Logger) *Resolver {
	return &Resolver{
		identity: identity,
		biblio:   biblio,
		logger:   logger.With().Str("component", "identity_resolver").Logger(),
	}
}

// CandidatesByName searches the identity registry for iDs matching both the
// given and family name. Registry failures are soft: they are logged and
// treated as zero candidates, never propagated. Result count semantics are
// the caller's concern (0 no match, 1 auto-apply, >1 ambiguous).
func (r *Resolver) CandidatesByName(ctx context.Context, given, family string) []domain.IdentityCandidate {
	candidates, err := r.identity.SearchByName(ctx, given, family)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("given", given).
			Str("family", family).
			Msg("identity registry search failed, treating as zero candidates")
		return nil
	}
	return candidates
}

// AuthorByIdentifier resolves a canonical identifier (bare or URL form) to
// its bibliographic author record. Unlike the name search, failures here are
// propagated: domain.ErrAuthorNotFound when the registry has no author for
// the iD, and a registry error wrapping domain.ErrRegistryUnavailable when
// the call itself fails. Callers distinguish the two.
func (r *Resolver) AuthorByIdentifier(ctx context.Context, orcid string) (*AuthorRecord, error) {
	author, err := r.biblio.AuthorByORCID(ctx, orcid)
	if err != nil {
		return nil, err
	}

	record := &AuthorRecord{
		OpenAlexID:  openalex.NormalizeAuthorID(author.ID),
		DisplayName: author.DisplayName,
	}
	if len(author.LastKnownInstitutions) > 0 {
		record.Affiliation = author.LastKnownInstitutions[0].DisplayName
	}

	return record, nil
}
