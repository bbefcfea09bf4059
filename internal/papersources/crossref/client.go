package crossref

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
	// DefaultBaseURL is the default Crossref API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "ScholarlySearchProxy/1.0"

	sourceName = "Crossref"
)

// Config holds configuration for the Crossref client.
type Config struct {
	// BaseURL is the Crossref API base URL.
	BaseURL string

	// Email routes requests to the polite pool when set.
	Email string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the product token sent to Crossref.
	UserAgent string

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool

	// Observer receives request metrics. Optional.
	Observer papersources.Observer

	// Logger receives per-request debug lines. Optional.
	Logger *zerolog.Logger
}

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

// Client implements the papersources.PaperSource interface for Crossref.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a new Crossref client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := cfg.UserAgent
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return &Client{
		config: cfg,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Source:    string(domain.ProviderCrossref),
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: userAgent,
			Observer:  cfg.Observer,
			Logger:    cfg.Logger,
		}),
	}
}

// NewWithHTTPClient creates a new Crossref client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries /works sorted by relevance. The cursor is a decimal offset;
// the next cursor is offset+len(items) while that is below total-results.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*domain.SearchResponse, error) {
	offset, err := papersources.ParseOffsetCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	searchURL, err := c.buildSearchURL(params.Query, domain.ClampPageSize(params.PageSize), offset)
	if err != nil {
		return nil, domain.NewUpstreamError(string(domain.ProviderCrossref), fmt.Errorf("building search URL: %w", err))
	}

	body, err := c.httpClient.Get(ctx, searchURL, "application/json")
	if err != nil {
		return nil, err
	}

	var raw Response
	if err := json.Unmarshal(body, &raw); err != nil {
		c.httpClient.RecordDecodeFailure()
		return nil, domain.NewUpstreamError(string(domain.ProviderCrossref), fmt.Errorf("decoding response: %w", err))
	}

	total := 0
	if raw.Message.TotalResults != nil && *raw.Message.TotalResults > 0 {
		total = *raw.Message.TotalResults
	}

	items := raw.Message.Items
	if items == nil {
		items = []json.RawMessage{}
	}

	return &domain.SearchResponse{
		Results: items,
		Meta: domain.Meta{
			Count:      total,
			NextCursor: papersources.NextOffsetCursor(offset, len(items), total),
		},
	}, nil
}

// Provider returns domain.ProviderCrossref.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderCrossref
}

// Name returns the human-readable name of this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Client) buildSearchURL(query string, rows, offset int) (string, error) {
	u, err := url.Parse(c.config.BaseURL + "/works")
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("rows", strconv.Itoa(rows))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("sort", "relevance")
	q.Set("order", "desc")
	if c.config.Email != "" {
		q.Set("mailto", c.config.Email)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}
