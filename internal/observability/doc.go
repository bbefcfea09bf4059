// Package observability provides logging and metrics support for the
// scholarly search proxy.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Request-scoped fields, the request ID and the provider, travel through
// the context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithProvider(ctx, "arxiv")
//	logger = observability.WithSearchContext(observability.LoggerFromContext(ctx, logger), "works", "graph neural networks")
//	logger.Info().Int("results", 10).Msg("search completed")
//
// # Metrics
//
//	metrics := observability.NewMetrics("scholarly_search_proxy")
//	metrics.RecordSearchStarted("crossref", "works")
//
// Metrics also satisfies papersources.Observer, so provider HTTP clients
// record request counts, failures and rate-limit waits directly.
//
// # Standard Fields
//
//   - request_id: inbound request identifier
//   - source: provider (openalex, crossref, arxiv)
//   - entity: works or authors
//   - query: the free-text query
//   - component: emitting subsystem
package observability
