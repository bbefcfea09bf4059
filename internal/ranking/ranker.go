// Package ranking reorders search results so open-access items come first.
package ranking

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
	"github.com/helixir/scholarly-search-proxy/internal/papersources/arxiv"
	"github.com/helixir/scholarly-search-proxy/internal/papersources/crossref"
	"github.com/helixir/scholarly-search-proxy/internal/papersources/openalex"
)

// Classifier reports whether one raw result item is open access.
type Classifier func(item json.RawMessage) (bool, error)

// DefaultClassifiers returns the open-access predicate of every provider.
func DefaultClassifiers() map[domain.Provider]Classifier {
	return map[domain.Provider]Classifier{
		domain.ProviderOpenAlex: openalex.IsOpenAccess,
		domain.ProviderCrossref: crossref.IsOpenAccess,
		domain.ProviderArXiv:    arxiv.IsOpenAccess,
	}
}

// Ranker performs a stable open-access-first partition of a response.
// It never fails: if any item cannot be inspected the response is returned
// unchanged.
type Ranker struct {
	classifiers map[domain.Provider]Classifier
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// NewRanker creates a Ranker. A nil classifiers map selects DefaultClassifiers.
func NewRanker(classifiers map[domain.Provider]Classifier, logger zerolog.Logger, metrics *observability.Metrics) *Ranker {
	if classifiers == nil {
		classifiers = DefaultClassifiers()
	}
	return &Ranker{
		classifiers: classifiers,
		logger:      logger.With().Str("component", "ranker").Logger(),
		metrics:     metrics,
	}
}

// Rank returns a copy of resp whose results hold the open-access items
// first, keeping the relative order inside both groups. Meta and native
// members are carried over untouched.
func (r *Ranker) Rank(provider domain.Provider, resp *domain.SearchResponse) (ranked *domain.SearchResponse) {
	if resp == nil || len(resp.Results) < 2 {
		return resp
	}
	classify, ok := r.classifiers[provider]
	if !ok {
		return resp
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.fallback(provider, fmt.Errorf("panic: %v", rec))
			ranked = resp
		}
	}()

	open := make([]json.RawMessage, 0, len(resp.Results))
	closed := make([]json.RawMessage, 0, len(resp.Results))
	for i, item := range resp.Results {
		isOA, err := classify(item)
		if err != nil {
			r.fallback(provider, fmt.Errorf("item %d: %w", i, err))
			return resp
		}
		if isOA {
			open = append(open, item)
		} else {
			closed = append(closed, item)
		}
	}

	out := *resp
	out.Results = append(open, closed...)
	r.metrics.RecordRankingApplied(string(provider))
	return &out
}

func (r *Ranker) fallback(provider domain.Provider, err error) {
	r.logger.Debug().Err(err).Str("source", string(provider)).Msg("open-access ranking skipped")
	r.metrics.RecordRankingFallback(string(provider))
}
