// Package orcid provides a client for the ORCID public API.
//
// ORCID is the registry of canonical scholarly identifiers. This package
// implements the expanded-search endpoint used for resolving a researcher's
// (given, family) name pair to candidate ORCID iDs.
//
// API Documentation: https://info.orcid.org/documentation/features/public-api/
package orcid

// SearchResponse is the top-level response from the expanded-search endpoint.
type SearchResponse struct {
	Results  []ExpandedResult `json:"expanded-result"`
	NumFound int              `json:"num-found"`
}

// ExpandedResult is one matched ORCID record.
type ExpandedResult struct {
	OrcidID          string   `json:"orcid-id"`
	GivenNames       string   `json:"given-names"`
	FamilyNames      string   `json:"family-names"`
	CreditName       string   `json:"credit-name"`
	OtherName        []string `json:"other-name"`
	Email            []string `json:"email"`
	InstitutionNames []string `json:"institution-name"`
}
