// Package identity turns human names into canonical scholarly identifiers.
//
// Resolution runs in two stages: a display name is parsed into a (given,
// family) token pair, then the pair is searched against the ORCID registry
// for candidate iDs. A confirmed iD is resolved against OpenAlex for the
// author record that topic aggregation needs.
package identity

import (
	"strings"

	"github.com/scholarweave/researcher-service/internal/domain"
)

// suffixTokens are academic titles and generational suffixes that carry no
// identity signal. Compared case-insensitively with periods stripped, so
// "Ph.D.", "PhD" and "ph.d" all match.
var suffixTokens = map[string]struct{}{
	"dr":   {},
	"prof": {},
	"phd":  {},
	"md":   {},
	"jr":   {},
	"sr":   {},
	"ii":   {},
	"iii":  {},
	"iv":   {},
}

// ParsedName is the canonical (given, family) pair extracted from a
// free-text display name.
type ParsedName struct {
	Given  string
	Family string
}

// ParseDisplayName splits a free-text display name into a given and family
// name. Tokens matching academic titles or suffixes are discarded, trailing
// commas are stripped, and middle tokens are ignored: the given name is the
// first remaining token and the family name is the last. Discarding middle
// names trades recall for determinism; the registry search downstream
// reports ambiguity rather than guessing.
//
// Returns domain.ErrInsufficientNameParts when fewer than two usable tokens
// remain.
func ParseDisplayName(displayName string) (ParsedName, error) {
	var tokens []string
	for _, raw := range strings.Fields(displayName) {
		token := strings.TrimSuffix(raw, ",")
		if token == "" || isSuffixToken(token) {
			continue
		}
		tokens = append(tokens, token)
	}

	if len(tokens) < 2 {
		return ParsedName{}, domain.ErrInsufficientNameParts
	}

	return ParsedName{
		Given:  tokens[0],
		Family: tokens[len(tokens)-1],
	}, nil
}

// isSuffixToken reports whether a token is an academic title or suffix.
func isSuffixToken(token string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(token, ".", ""))
	_, ok := suffixTokens[normalized]
	return ok
}
