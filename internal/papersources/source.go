// Package papersources provides the provider adapters behind the search proxy.
//
// Each scholarly-metadata provider (OpenAlex, Crossref, arXiv) implements the
// PaperSource interface and is selected through a Registry keyed by
// domain.Provider. Adapters perform exactly one outbound GET per search and
// return the normalized {results, meta} envelope.
//
// Example usage:
//
//	source := crossref.New(cfg)
//	resp, err := source.Search(ctx, papersources.SearchParams{
//		Entity:   domain.EntityWorks,
//		Query:    "CRISPR gene editing",
//		PageSize: 10,
//		Cursor:   "*",
//	})
package papersources

import (
	"context"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
)

// SearchParams are the per-call inputs handed to an adapter.
type SearchParams struct {
	// Entity is the record kind to search. Adapters are only called with
	// entities their provider supports.
	Entity domain.Entity

	// Query is the free-text query. It may be empty.
	Query string

	// PageSize is already clamped to [domain.MinPageSize, domain.MaxPageSize].
	PageSize int

	// Cursor is an opaque provider token or a decimal offset, depending on
	// the provider. Empty or "*" means the first page.
	Cursor string

	// Filter and Sort are passed through verbatim to providers with native
	// filter and sort expressions (OpenAlex). Other adapters ignore them.
	Filter string
	Sort   string
}

// PaperSource defines the interface that every provider adapter implements.
type PaperSource interface {
	// Search performs one outbound request and returns the normalized envelope.
	//
	// Implementations should:
	//   - Respect context cancellation
	//   - Return *domain.UpstreamHTTPError for non-2xx answers
	//   - Return *domain.UpstreamError for transport or decode failures
	//   - Return *domain.InvalidCursorError for malformed offset cursors
	Search(ctx context.Context, params SearchParams) (*domain.SearchResponse, error)

	// Provider returns the enum value this adapter is registered under.
	Provider() domain.Provider

	// Name returns a human-readable name for logging and metrics.
	Name() string

	// IsEnabled returns whether this adapter may serve searches.
	IsEnabled() bool
}

// RecordLookup is implemented by adapters that can fetch a single record by
// identifier. The record is returned exactly as the provider sent it.
type RecordLookup interface {
	Lookup(ctx context.Context, entity domain.Entity, id string) (json.RawMessage, error)
}
