package arxiv

import (
	"context"
	"encoding/xml"
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
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRateLimit is the default rate limit (1 request per second).
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "ScholarlySearchProxy/1.0"

	sourceName = "arXiv"
)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the arXiv API base URL.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the product token sent to arXiv.
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

// Client implements the papersources.PaperSource interface for arXiv.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Ensure Client implements PaperSource interface.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new arXiv client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Source:    string(domain.ProviderArXiv),
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: cfg.UserAgent,
		Observer:  cfg.Observer,
		Logger:    cfg.Logger,
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new arXiv client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries arXiv and returns normalized entries.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*domain.SearchResponse, error) {
	offset, err := papersources.ParseOffsetCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	searchURL, err := c.buildSearchURL(params.Query, domain.ClampPageSize(params.PageSize), offset)
	if err != nil {
		return nil, domain.NewUpstreamError(string(domain.ProviderArXiv), fmt.Errorf("building search URL: %w", err))
	}

	body, err := c.httpClient.Get(ctx, searchURL, "application/atom+xml")
	if err != nil {
		return nil, err
	}

	var feed Feed
	if err := xml.Unmarshal(body, &feed); err != nil {
		c.httpClient.RecordDecodeFailure()
		return nil, domain.NewUpstreamError(string(domain.ProviderArXiv), fmt.Errorf("decoding feed: %w", err))
	}

	results := make([]json.RawMessage, 0, len(feed.Entries))
	for i := range feed.Entries {
		encoded, err := json.Marshal(feed.Entries[i].normalize())
		if err != nil {
			return nil, domain.NewUpstreamError(string(domain.ProviderArXiv), fmt.Errorf("encoding entry %d: %w", i, err))
		}
		results = append(results, encoded)
	}

	total := feed.total(offset)
	return &domain.SearchResponse{
		Results: results,
		Meta: domain.Meta{
			Count:      total,
			NextCursor: papersources.NextOffsetCursor(offset, len(results), total),
		},
	}, nil
}

// Provider returns domain.ProviderArXiv.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderArXiv
}

// Name returns the human-readable name of this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the query URL. An empty query matches everything.
func (c *Client) buildSearchURL(query string, maxResults, start int) (string, error) {
	u, err := url.Parse(c.config.BaseURL + "/query")
	if err != nil {
		return "", err
	}

	searchQuery := "all:*"
	if query != "" {
		searchQuery = "all:" + query
	}

	q := url.Values{}
	q.Set("search_query", searchQuery)
	q.Set("start", strconv.Itoa(start))
	q.Set("max_results", strconv.Itoa(maxResults))
	q.Set("sortBy", "relevance")

	u.RawQuery = q.Encode()
	return u.String(), nil
}
