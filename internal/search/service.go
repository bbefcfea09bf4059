// Package search is the seam between the inbound surfaces (HTTP, CLI) and
// the provider adapters. It turns raw parameters into a validated
// domain.SearchRequest, dispatches it to one adapter and optionally ranks
// the result.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
	"github.com/helixir/scholarly-search-proxy/internal/papersources"
	"github.com/helixir/scholarly-search-proxy/internal/ranking"
)

// Config controls request defaults and post-processing.
type Config struct {
	// DefaultPageSize is used when per_page is absent.
	DefaultPageSize int

	// MaxPageSize caps per_page. It never exceeds domain.MaxPageSize.
	MaxPageSize int

	// FallbackUnknownSource routes unknown source names to the default
	// provider instead of rejecting them.
	FallbackUnknownSource bool

	// OpenAccessFirst enables ranking unless a request overrides it.
	OpenAccessFirst bool
}

func (c *Config) applyDefaults() {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = domain.DefaultPageSize
	}
	if c.MaxPageSize <= 0 || c.MaxPageSize > domain.MaxPageSize {
		c.MaxPageSize = domain.MaxPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
}

// Params are the unparsed inputs of one search, as received from a client.
type Params struct {
	Source  string
	Entity  string
	Query   string
	PerPage string
	Cursor  string
	Filter  string
	Sort    string

	// Groups are OR-groups of terms. When any group has a term, the query
	// becomes BuildQuery(Groups, Query).
	Groups [][]string
}

// Options are per-call overrides.
type Options struct {
	// OpenAccessFirst overrides Config.OpenAccessFirst when non-nil.
	OpenAccessFirst *bool
}

// Service dispatches searches to provider adapters.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	registry *papersources.Registry
	ranker   *ranking.Ranker
	validate *validator.Validate
	config   Config
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewService creates a search service. ranker may be nil, which disables ranking.
func NewService(cfg Config, registry *papersources.Registry, ranker *ranking.Ranker, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	cfg.applyDefaults()
	return &Service{
		registry: registry,
		ranker:   ranker,
		validate: validator.New(),
		config:   cfg,
		logger:   observability.WithComponent(logger, "search"),
		metrics:  metrics,
	}
}

// ParseRequest converts raw parameters into a SearchRequest.
//
// Empty values take their defaults: source openalex, entity works, per_page
// Config.DefaultPageSize and cursor "*". A numeric per_page is clamped to
// [1, Config.MaxPageSize]; anything non-numeric is a validation error.
// Unrecognized entities are kept; Search answers them with the empty
// envelope.
func (s *Service) ParseRequest(p Params) (domain.SearchRequest, error) {
	provider, err := domain.ParseProvider(p.Source)
	if err != nil {
		if !s.config.FallbackUnknownSource {
			return domain.SearchRequest{}, err
		}
		s.logger.Debug().Str("source", p.Source).Msg("unknown source, using default provider")
		provider = domain.DefaultProvider
	}

	entity := domain.ParseEntity(p.Entity)

	pageSize, err := s.parsePageSize(p.PerPage)
	if err != nil {
		return domain.SearchRequest{}, err
	}

	cursor := strings.TrimSpace(p.Cursor)
	if cursor == "" {
		cursor = domain.StartCursor
	}

	query := p.Query
	if BuildQuery(p.Groups, "") != "" {
		query = BuildQuery(p.Groups, p.Query)
	}

	return domain.SearchRequest{
		Provider: provider,
		Entity:   entity,
		Query:    query,
		PageSize: pageSize,
		Cursor:   cursor,
		Filter:   strings.TrimSpace(p.Filter),
		Sort:     strings.TrimSpace(p.Sort),
	}, nil
}

func (s *Service) parsePageSize(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.config.DefaultPageSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("per_page", "must be an integer")
	}
	if n > s.config.MaxPageSize {
		return s.config.MaxPageSize, nil
	}
	return domain.ClampPageSize(n), nil
}

// Search runs one request against its provider.
//
// A provider that does not support the requested entity yields the empty
// envelope without any outbound call. Adapter errors are returned wrapped so
// callers can classify them with errors.Is and errors.As.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest, opts Options) (*domain.SearchResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	provider := string(req.Provider)
	ctx = observability.WithProvider(ctx, provider)
	logger := observability.WithSearchContext(observability.LoggerFromContext(ctx, s.logger), req.Entity.Label(), req.Query)

	if !req.Provider.SupportsEntity(req.Entity) {
		s.metrics.RecordEmptyShortCircuit(provider, req.Entity.Label())
		logger.Debug().Str("requested_entity", string(req.Entity)).Msg("entity not supported by provider, returning empty result")
		return domain.EmptyResponse(), nil
	}

	source := s.registry.Get(req.Provider)
	if source == nil || !source.IsEnabled() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceDisabled, provider)
	}

	s.metrics.RecordSearchStarted(provider, string(req.Entity))
	start := time.Now()

	resp, err := source.Search(ctx, papersources.SearchParams{
		Entity:   req.Entity,
		Query:    req.Query,
		PageSize: req.PageSize,
		Cursor:   req.Cursor,
		Filter:   req.Filter,
		Sort:     req.Sort,
	})
	elapsed := time.Since(start)
	if err != nil {
		kind := errorKind(err)
		s.metrics.RecordSearchFailed(provider, kind, elapsed.Seconds())
		event := logger.Warn()
		if kind == "canceled" || kind == "invalid_cursor" {
			event = logger.Debug()
		}
		event.Err(err).Str("kind", kind).Dur("duration", elapsed).Msg("search failed")
		return nil, fmt.Errorf("search %s: %w", source.Name(), err)
	}

	if s.rankingEnabled(opts) && req.Entity == domain.EntityWorks && s.ranker != nil {
		resp = s.ranker.Rank(req.Provider, resp)
	}

	s.metrics.RecordSearchCompleted(provider, len(resp.Results), elapsed.Seconds())
	logger.Info().
		Int("results", len(resp.Results)).
		Int("count", resp.Meta.Count).
		Dur("duration", elapsed).
		Msg("search completed")

	return resp, nil
}

// Lookup fetches one work or author record by identifier from OpenAlex,
// the only provider with single-record endpoints.
func (s *Service) Lookup(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error) {
	if !domain.ProviderOpenAlex.SupportsEntity(entity) {
		return nil, domain.NewValidationError("entity", "lookup supports works and authors only")
	}

	provider := string(domain.ProviderOpenAlex)
	ctx = observability.WithProvider(ctx, provider)
	logger := observability.LoggerFromContext(ctx, s.logger).With().
		Str("entity", string(entity)).
		Str("id", id).
		Logger()

	source := s.registry.Get(domain.ProviderOpenAlex)
	if source == nil || !source.IsEnabled() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceDisabled, provider)
	}
	lookup, ok := source.(papersources.RecordLookup)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no record lookup", domain.ErrSourceDisabled, provider)
	}

	start := time.Now()
	record, err := lookup.Lookup(ctx, entity, id)
	if err != nil {
		outcome := lookupOutcome(err)
		s.metrics.RecordLookup(string(entity), outcome)
		event := logger.Warn()
		if outcome != "error" {
			event = logger.Debug()
		}
		event.Err(err).Str("outcome", outcome).Dur("duration", time.Since(start)).Msg("lookup failed")
		return nil, fmt.Errorf("lookup %s: %w", source.Name(), err)
	}

	s.metrics.RecordLookup(string(entity), "found")
	logger.Info().Dur("duration", time.Since(start)).Msg("lookup completed")
	return record, nil
}

// Providers lists the enabled providers.
func (s *Service) Providers() []domain.Provider {
	sources := s.registry.EnabledSources()
	providers := make([]domain.Provider, 0, len(sources))
	for _, src := range sources {
		providers = append(providers, src.Provider())
	}
	return providers
}

func (s *Service) rankingEnabled(opts Options) bool {
	if opts.OpenAccessFirst != nil {
		return *opts.OpenAccessFirst
	}
	return s.config.OpenAccessFirst
}

func (s *Service) validateRequest(req domain.SearchRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fieldName(fe.Field()), fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	return domain.NewValidationError("request", err.Error())
}

// fieldName maps struct fields to the query parameter names clients send.
func fieldName(field string) string {
	switch field {
	case "Provider":
		return "source"
	case "PageSize":
		return "per_page"
	case "Query":
		return "q"
	default:
		return strings.ToLower(field)
	}
}

// lookupOutcome labels a failed lookup for metrics.
func lookupOutcome(err error) string {
	var httpErr *domain.UpstreamHTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// errorKind labels an error for metrics and logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrInvalidCursor):
		return "invalid_cursor"
	case errors.Is(err, domain.ErrUpstreamHTTP):
		return "upstream_http"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
