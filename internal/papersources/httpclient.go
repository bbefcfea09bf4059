package papersources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
)

const (
	// DefaultMaxBodyBytes caps a successful provider body.
	DefaultMaxBodyBytes int64 = 32 << 20

	// maxErrorBodyBytes caps the provider text carried in an UpstreamHTTPError.
	maxErrorBodyBytes int64 = 64 << 10
)

// Observer receives per-request measurements from an HTTPClient.
// observability.Metrics satisfies it.
type Observer interface {
	RecordSourceRequest(source string, statusCode int, duration time.Duration)
	RecordSourceFailure(source, reason string)
	RecordRateLimitWait(source string, wait time.Duration)
}

// HTTPClientConfig configures the HTTP client.
type HTTPClientConfig struct {
	// Source names the provider in errors and metrics.
	Source string

	// Timeout bounds a whole outbound request.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// MaxBodyBytes caps a successful response body.
	MaxBodyBytes int64

	// Observer is optional.
	Observer Observer

	// Logger receives one debug line per provider call. Optional.
	Logger *zerolog.Logger
}

// HTTPClient wraps http.Client with rate limiting and error classification.
// It is safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	logger      zerolog.Logger
	config      HTTPClientConfig
}

// NewHTTPClient creates a new HTTP client with rate limiting.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	return NewHTTPClientWithTransport(cfg, nil)
}

// NewHTTPClientWithTransport is NewHTTPClient with a custom round tripper.
// A nil transport uses http.DefaultTransport.
func NewHTTPClientWithTransport(cfg HTTPClientConfig, transport http.RoundTripper) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ScholarlySearchProxy/1.0"
	}
	if cfg.Source == "" {
		cfg.Source = "upstream"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		logger:      logger,
		config:      cfg,
	}
}

// Do sends req exactly once after waiting for the rate limiter.
// The User-Agent header is set when the caller did not set one. Responses
// with any status are returned as is.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if err := c.waitRateLimit(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Get performs a GET against rawURL and returns the body of a 2xx answer.
//
// A non-2xx answer yields *domain.UpstreamHTTPError carrying the provider's
// text. Anything else that prevents reading a body (bad URL, network error,
// timeout, cancellation, oversized body) yields *domain.UpstreamError with
// the cause preserved.
func (c *HTTPClient) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	source := c.config.Source

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.recordFailure("request")
		return nil, domain.NewUpstreamError(source, fmt.Errorf("create request: %w", err))
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	logger := observability.LoggerFromContext(ctx, c.logger).With().
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Logger()

	start := time.Now()
	resp, err := c.Do(req)
	if err != nil {
		reason := failureReason(err)
		c.recordFailure(reason)
		logger.Debug().Err(err).Str("reason", reason).Dur("duration", time.Since(start)).Msg("provider request failed")
		return nil, domain.NewUpstreamError(source, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	if c.config.Observer != nil {
		c.config.Observer.RecordSourceRequest(source, resp.StatusCode, elapsed)
	}
	logger.Debug().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("provider request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recordFailure("status")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, domain.NewUpstreamHTTPError(source, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		c.recordFailure(failureReason(err))
		return nil, domain.NewUpstreamError(source, fmt.Errorf("read response: %w", err))
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		c.recordFailure("body_too_large")
		return nil, domain.NewUpstreamError(source, fmt.Errorf("response body exceeds %d bytes", c.config.MaxBodyBytes))
	}
	return body, nil
}

// RecordDecodeFailure lets adapters count bodies they could not parse.
func (c *HTTPClient) RecordDecodeFailure() {
	c.recordFailure("decode")
}

func (c *HTTPClient) recordFailure(reason string) {
	if c.config.Observer != nil {
		c.config.Observer.RecordSourceFailure(c.config.Source, reason)
	}
}

func (c *HTTPClient) waitRateLimit(ctx context.Context) error {
	start := time.Now()
	err := c.rateLimiter.Wait(ctx)
	if c.config.Observer != nil {
		c.config.Observer.RecordRateLimitWait(c.config.Source, time.Since(start))
	}
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "transport"
}
