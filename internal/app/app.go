// Package app wires configuration into the provider adapters and the search
// service. It is shared by the server and the searchctl command.
package app

import (
	"github.com/rs/zerolog"

	"github.com/helixir/scholarly-search-proxy/internal/config"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
	"github.com/helixir/scholarly-search-proxy/internal/papersources"
	"github.com/helixir/scholarly-search-proxy/internal/papersources/arxiv"
	"github.com/helixir/scholarly-search-proxy/internal/papersources/crossref"
	"github.com/helixir/scholarly-search-proxy/internal/papersources/openalex"
	"github.com/helixir/scholarly-search-proxy/internal/ranking"
	"github.com/helixir/scholarly-search-proxy/internal/search"
)

// NewSearchService builds the registry, the ranker and the search service
// from cfg. metrics may be nil.
func NewSearchService(cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (*search.Service, *papersources.Registry) {
	var observer papersources.Observer
	if metrics != nil {
		observer = metrics
	}

	registry := papersources.NewRegistry()
	RegisterPaperSources(registry, cfg, observer, logger)

	ranker := ranking.NewRanker(ranking.DefaultClassifiers(), logger, metrics)

	svc := search.NewService(search.Config{
		DefaultPageSize:       cfg.Search.DefaultPageSize,
		MaxPageSize:           cfg.Search.MaxPageSize,
		FallbackUnknownSource: cfg.Search.FallbackUnknownSource,
		OpenAccessFirst:       cfg.Ranking.OpenAccessFirst,
	}, registry, ranker, logger, metrics)

	return svc, registry
}

// RegisterPaperSources registers all enabled paper sources with the registry.
func RegisterPaperSources(registry *papersources.Registry, cfg *config.Config, observer papersources.Observer, logger zerolog.Logger) {
	email := cfg.PaperSources.ContactEmail
	sourceLogger := observability.WithComponent(logger, "papersources")

	// OpenAlex.
	if cfg.PaperSources.OpenAlex.Enabled {
		oaCfg := cfg.PaperSources.OpenAlex
		registry.Register(openalex.New(openalex.Config{
			BaseURL:   oaCfg.BaseURL,
			Email:     email,
			Timeout:   oaCfg.Timeout,
			RateLimit: oaCfg.RateLimit,
			BurstSize: oaCfg.BurstSize,
			UserAgent: oaCfg.UserAgent,
			Enabled:   true,
			Observer:  observer,
			Logger:    &sourceLogger,
		}))
		logger.Info().Msg("registered paper source: OpenAlex")
	}

	// Crossref.
	if cfg.PaperSources.Crossref.Enabled {
		crCfg := cfg.PaperSources.Crossref
		registry.Register(crossref.New(crossref.Config{
			BaseURL:   crCfg.BaseURL,
			Email:     email,
			Timeout:   crCfg.Timeout,
			RateLimit: crCfg.RateLimit,
			BurstSize: crCfg.BurstSize,
			UserAgent: crCfg.UserAgent,
			Enabled:   true,
			Observer:  observer,
			Logger:    &sourceLogger,
		}))
		logger.Info().Msg("registered paper source: Crossref")
	}

	// arXiv takes no mailto parameter; the contact goes in the User-Agent.
	if cfg.PaperSources.ArXiv.Enabled {
		axCfg := cfg.PaperSources.ArXiv
		userAgent := axCfg.UserAgent
		if userAgent == "" {
			userAgent = arxiv.DefaultUserAgent
		}
		if email != "" {
			userAgent += " (mailto:" + email + ")"
		}
		registry.Register(arxiv.New(arxiv.Config{
			BaseURL:   axCfg.BaseURL,
			Timeout:   axCfg.Timeout,
			RateLimit: axCfg.RateLimit,
			BurstSize: axCfg.BurstSize,
			UserAgent: userAgent,
			Enabled:   true,
			Observer:  observer,
			Logger:    &sourceLogger,
		}))
		logger.Info().Msg("registered paper source: arXiv")
	}
}
