package openalex

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
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// OpenAlex polite pool (with email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxWorks is the default maximum works fetched per author.
	// OpenAlex allows up to 200 per page; one page of 100 covers the
	// recent output of almost every author.
	DefaultMaxWorks = 100

	// openAlexIDPrefix is the URL prefix for OpenAlex IDs.
	openAlexIDPrefix = "https://openalex.org/"

	// maxResponseBytes bounds response bodies to prevent resource exhaustion.
	maxResponseBytes = 10 << 20
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool.
	// Providing an email grants access to higher rate limits.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// Timeout is the request timeout. Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Defaults to 10.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed. Defaults to 10.
	BurstSize int

	// MaxWorks is the maximum works fetched per author. Defaults to 100.
	MaxWorks int
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
	if c.MaxWorks == 0 {
		c.MaxWorks = DefaultMaxWorks
	}
}

// Client queries the OpenAlex API for author records and their works.
type Client struct {
	config     Config
	httpClient *registries.HTTPClient
}

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	ua := "ScholarWeave-ResearcherService/1.0"
	if cfg.Email != "" {
		ua += " (mailto:" + cfg.Email + ")"
	}

	httpClient := registries.NewHTTPClient(registries.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: ua,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *registries.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// AuthorByORCID looks up the OpenAlex author record for an ORCID iD. The
// identifier may be bare (0000-0002-1825-0097) or a full orcid.org URL;
// either form is accepted by the filter. Returns domain.ErrAuthorNotFound
// when the registry has no author for the identifier.
func (c *Client) AuthorByORCID(ctx context.Context, orcid string) (*Author, error) {
	fetchURL, err := c.buildAuthorURL(orcid)
	if err != nil {
		return nil, fmt.Errorf("building author URL: %w", err)
	}

	var authorsResp AuthorsResponse
	if err := c.getJSON(ctx, fetchURL, &authorsResp); err != nil {
		return nil, err
	}

	if len(authorsResp.Results) == 0 {
		return nil, fmt.Errorf("orcid %s: %w", domain.NormalizeORCID(orcid), domain.ErrAuthorNotFound)
	}

	author := authorsResp.Results[0]
	author.ID = NormalizeAuthorID(author.ID)
	return &author, nil
}

// WorksByAuthor lists the most recent works for an OpenAlex author, newest
// publication first, up to MaxWorks in a single page.
func (c *Client) WorksByAuthor(ctx context.Context, authorID string) ([]Work, error) {
	fetchURL, err := c.buildWorksURL(authorID)
	if err != nil {
		return nil, fmt.Errorf("building works URL: %w", err)
	}

	var worksResp WorksResponse
	if err := c.getJSON(ctx, fetchURL, &worksResp); err != nil {
		return nil, err
	}

	return worksResp.Results, nil
}

// getJSON executes a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, fetchURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewRegistryError("OpenAlex", 0, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewRegistryError("OpenAlex", resp.StatusCode, string(body), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return domain.NewRegistryError("OpenAlex", 0, "decoding response", err)
	}

	return nil
}

// buildAuthorURL constructs the authors endpoint URL filtered by ORCID.
func (c *Client) buildAuthorURL(orcid string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = "/authors"

	query := url.Values{}
	query.Set("filter", "orcid:"+domain.NormalizeORCID(orcid))
	query.Set("per_page", "1")
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildWorksURL constructs the works endpoint URL for an author's output.
func (c *Client) buildWorksURL(authorID string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = "/works"

	maxWorks := c.config.MaxWorks
	if maxWorks > 200 {
		maxWorks = 200 // OpenAlex API limit
	}

	query := url.Values{}
	query.Set("filter", "author.id:"+NormalizeAuthorID(authorID))
	query.Set("sort", "publication_date:desc")
	query.Set("per_page", strconv.Itoa(maxWorks))
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// NormalizeAuthorID extracts the short author ID (A...) from full
// OpenAlex URLs.
func NormalizeAuthorID(id string) string {
	if id == "" {
		return ""
	}
	id = strings.TrimPrefix(id, openAlexIDPrefix)
	return strings.TrimSpace(id)
}
