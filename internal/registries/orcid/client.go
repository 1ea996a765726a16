package orcid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/registries"
)

const (
	// DefaultBaseURL is the default ORCID public API base URL.
	DefaultBaseURL = "https://pub.orcid.org/v3.0"

	// DefaultTimeout is the default request timeout for the identity registry.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit for requests per second.
	// The ORCID public API allows up to 12 req/sec; stay well under it.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultMaxRows is the default maximum search results per request.
	DefaultMaxRows = 10

	// maxResponseBytes bounds response bodies to prevent resource exhaustion.
	maxResponseBytes = 10 << 20
)

// Config holds configuration for the ORCID client.
type Config struct {
	// BaseURL is the ORCID public API base URL.
	// Defaults to https://pub.orcid.org/v3.0
	BaseURL string

	// Timeout is the request timeout. Defaults to 10 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Defaults to 5.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed. Defaults to 5.
	BurstSize int

	// MaxRows is the maximum search results per request. Defaults to 10.
	MaxRows int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxRows == 0 {
		c.MaxRows = DefaultMaxRows
	}
}

// Client queries the ORCID public API. No authentication is required for
// the public read endpoints.
type Client struct {
	config     Config
	httpClient *registries.HTTPClient
}

// New creates a new ORCID client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new ORCID client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *registries.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// SearchByName issues a single expanded-search query requiring both the
// given-names and family-name fields to match (logical AND, not fuzzy).
// It returns every candidate the registry reports, up to MaxRows; result
// count semantics (0 = no match, 1 = auto-apply, >1 = ambiguous) are the
// caller's concern.
func (c *Client) SearchByName(ctx context.Context, given, family string) ([]domain.IdentityCandidate, error) {
	searchURL, err := c.buildSearchURL(given, family)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewRegistryError("ORCID", 0, "executing search request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewRegistryError("ORCID", resp.StatusCode, string(body), nil)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&searchResp); err != nil {
		return nil, domain.NewRegistryError("ORCID", 0, "decoding search response", err)
	}

	candidates := make([]domain.IdentityCandidate, 0, len(searchResp.Results))
	for _, result := range searchResp.Results {
		if result.OrcidID == "" {
			continue
		}
		candidates = append(candidates, domain.IdentityCandidate{
			ORCID:       domain.NormalizeORCID(result.OrcidID),
			DisplayName: displayName(result),
		})
	}

	return candidates, nil
}

// buildSearchURL constructs the expanded-search URL for a name query.
func (c *Client) buildSearchURL(given, family string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = strings.TrimSuffix(baseURL.Path, "/") + "/expanded-search/"

	query := url.Values{}
	query.Set("q", fmt.Sprintf(`given-names:"%s" AND family-name:"%s"`,
		escapeQueryTerm(given), escapeQueryTerm(family)))
	query.Set("rows", strconv.Itoa(c.config.MaxRows))

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// escapeQueryTerm strips characters that would break out of a quoted
// Solr query term.
func escapeQueryTerm(term string) string {
	return strings.NewReplacer(`"`, ``, `\`, ``).Replace(term)
}

// displayName assembles the matched display name from an expanded result,
// preferring the credit name when present.
func displayName(result ExpandedResult) string {
	if result.CreditName != "" {
		return result.CreditName
	}
	name := strings.TrimSpace(result.GivenNames + " " + result.FamilyNames)
	return name
}
