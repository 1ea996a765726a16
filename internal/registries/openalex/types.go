// Package openalex provides a client for the OpenAlex API.
//
// OpenAlex is a free, open catalog of scholarly papers, authors, venues,
// institutions, and topics. This package implements the author lookup and
// works listing used for researcher identity resolution and topic discovery.
//
// API Documentation: https://docs.openalex.org/
package openalex

// AuthorsResponse is the top-level response from the authors endpoint.
type AuthorsResponse struct {
	Meta    Meta     `json:"meta"`
	Results []Author `json:"results"`
}

// WorksResponse is the top-level response from the works endpoint.
type WorksResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta contains metadata about a result set including pagination info.
type Meta struct {
	Count   int `json:"count"`
	DBTime  int `json:"db_response_time_ms"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Author represents an author record in OpenAlex.
type Author struct {
	ID                    string        `json:"id"`
	DisplayName           string        `json:"display_name"`
	Orcid                 string        `json:"orcid"`
	WorksCount            int           `json:"works_count"`
	CitedByCount          int           `json:"cited_by_count"`
	IDs                   AuthorIDs     `json:"ids"`
	LastKnownInstitutions []Institution `json:"last_known_institutions"`
}

// AuthorIDs contains the identifiers attached to an author record.
type AuthorIDs struct {
	OpenAlex string `json:"openalex"`
	Orcid    string `json:"orcid"`
}

// Institution represents an academic institution.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Work represents an academic work (paper) in OpenAlex.
type Work struct {
	ID              string  `json:"id"`
	DOI             string  `json:"doi"`
	Title           string  `json:"title"`
	DisplayName     string  `json:"display_name"`
	PublicationYear int     `json:"publication_year"`
	PublicationDate string  `json:"publication_date"`
	Type            string  `json:"type"`
	CitedByCount    int     `json:"cited_by_count"`
	Topics          []Topic `json:"topics"`
}

// Topic is one topic classification attached to a work, with its parent
// subfield and field in the OpenAlex topic hierarchy.
type Topic struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Score       float64     `json:"score"`
	Subfield    *TopicLevel `json:"subfield"`
	Field       *TopicLevel `json:"field"`
	Domain      *TopicLevel `json:"domain"`
}

// TopicLevel is one ancestor level (subfield, field, or domain) of a topic.
type TopicLevel struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
