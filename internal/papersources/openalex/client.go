package openalex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/papersources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "ScholarlySearchProxy/1.0"

	sourceName = "OpenAlex"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	// Defaults to https://api.openalex.org
	BaseURL string

	// Email is the contact email for the polite pool. When set it is sent
	// as the mailto query parameter and in the User-Agent.
	// See: https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication
	Email string

	// Timeout is the request timeout.
	// Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the product token sent to OpenAlex.
	UserAgent string

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool

	// Observer receives request metrics. Optional.
	Observer papersources.Observer

	// Logger receives per-request debug lines. Optional.
	Logger *zerolog.Logger
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Client implements the papersources.PaperSource interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Ensure Client implements the PaperSource and RecordLookup interfaces.
var (
	_ papersources.PaperSource  = (*Client)(nil)
	_ papersources.RecordLookup = (*Client)(nil)
)

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := cfg.UserAgent
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Source:    string(domain.ProviderOpenAlex),
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: userAgent,
		Observer:  cfg.Observer,
		Logger:    cfg.Logger,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries the works or authors endpoint and returns the provider body
// as the envelope. Result items and any extra members are kept verbatim.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*domain.SearchResponse, error) {
	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, domain.NewUpstreamError(string(domain.ProviderOpenAlex), fmt.Errorf("building search URL: %w", err))
	}

	body, err := c.httpClient.Get(ctx, searchURL, "application/json")
	if err != nil {
		return nil, err
	}

	var resp domain.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.httpClient.RecordDecodeFailure()
		return nil, domain.NewUpstreamError(string(domain.ProviderOpenAlex), fmt.Errorf("decoding response: %w", err))
	}
	return &resp, nil
}

// Lookup fetches one work or author. id may be a short OpenAlex ID
// ("W2741809807"), a path ("works/W2741809807") or, for works, a DOI
// ("10.1038/nature14539").
func (c *Client) Lookup(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error) {
	lookupURL, err := c.buildLookupURL(entity, id)
	if err != nil {
		return nil, err
	}

	body, err := c.httpClient.Get(ctx, lookupURL, "application/json")
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		c.httpClient.RecordDecodeFailure()
		return nil, domain.NewUpstreamError(string(domain.ProviderOpenAlex), fmt.Errorf("decoding record: invalid JSON"))
	}
	return json.RawMessage(body), nil
}

// Provider returns domain.ProviderOpenAlex.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderOpenAlex
}

// Name returns the human-readable name of this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the search URL with query parameters.
func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	endpoint := "/works"
	if params.Entity == domain.EntityAuthors {
		endpoint = "/authors"
	}

	u, err := url.Parse(c.config.BaseURL + endpoint)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	if params.Query != "" {
		q.Set("search", params.Query)
	}
	q.Set("per_page", strconv.Itoa(domain.ClampPageSize(params.PageSize)))

	cursor := params.Cursor
	if cursor == "" {
		cursor = domain.StartCursor
	}
	q.Set("cursor", cursor)

	if params.Filter != "" {
		q.Set("filter", params.Filter)
	}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}
	if c.config.Email != "" {
		q.Set("mailto", c.config.Email)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) buildLookupURL(entity domain.Entity, id string) (string, error) {
	path, err := NormalizeIdentifier(entity, id)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", domain.NewUpstreamError(string(domain.ProviderOpenAlex), fmt.Errorf("building lookup URL: %w", err))
	}
	u = u.JoinPath(path)

	if c.config.Email != "" {
		q := url.Values{}
		q.Set("mailto", c.config.Email)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// NormalizeIdentifier turns a short ID or DOI into an API path relative to
// the base URL, e.g. "works/W2741809807" or "works/doi:10.1038/nature14539".
// OpenAlex and doi.org URLs are reduced to their identifier first. Values
// already prefixed with the entity are kept. Only works accept DOIs.
func NormalizeIdentifier(entity domain.Entity, id string) (string, error) {
	if entity != domain.EntityWorks && entity != domain.EntityAuthors {
		return "", domain.NewValidationError("entity", "lookup supports works and authors only")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewValidationError("id", "identifier is required")
	}
	if strings.Contains(id, "..") || strings.ContainsAny(id, " \t\n?#") {
		return "", domain.NewValidationError("id", "malformed identifier")
	}

	id = strings.TrimPrefix(id, "https://openalex.org/")
	if entity == domain.EntityWorks {
		id = strings.TrimPrefix(id, "https://doi.org/")
		id = strings.TrimPrefix(id, "doi:")
	}

	prefix := string(entity) + "/"
	switch {
	case strings.HasPrefix(id, prefix):
		return id, nil
	case entity == domain.EntityWorks && (strings.HasPrefix(id, "10.") || strings.Contains(id, "/")):
		return prefix + "doi:" + id, nil
	default:
		return prefix + id, nil
	}
}
