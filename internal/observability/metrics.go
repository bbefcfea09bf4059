package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the search proxy.
// Metrics are organized by subsystem: searches, provider requests, ranking
// and inbound HTTP. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// SearchesStarted counts searches dispatched, labeled by provider and entity.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by provider.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed searches, labeled by provider and error kind.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes search duration in seconds, labeled by provider.
	SearchDuration *prometheus.HistogramVec

	// ResultsPerSearch observes the number of results returned, labeled by provider.
	ResultsPerSearch *prometheus.HistogramVec

	// EmptyShortCircuits counts requests answered with the empty envelope
	// because the provider does not support the entity.
	EmptyShortCircuits *prometheus.CounterVec

	// LookupsTotal counts single-record lookups, labeled by entity and outcome.
	LookupsTotal *prometheus.CounterVec

	// SourceRequestsTotal counts provider HTTP answers, labeled by source and status code.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRequestsFailed counts failed provider calls, labeled by source and reason.
	SourceRequestsFailed *prometheus.CounterVec

	// SourceRequestDuration observes provider round-trip time in seconds.
	SourceRequestDuration *prometheus.HistogramVec

	// RateLimitWait observes time spent waiting for the per-provider token bucket.
	RateLimitWait *prometheus.HistogramVec

	// RankingApplied counts responses reordered open-access first, labeled by provider.
	RankingApplied *prometheus.CounterVec

	// RankingFallbacks counts responses returned unranked after an inspection failure.
	RankingFallbacks *prometheus.CounterVec

	// HTTPRequestsTotal counts inbound requests, labeled by route, method and status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes inbound request latency, labeled by route and method.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered with the default
// Prometheus registry. The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a new Metrics instance registered with reg.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Searches
		SearchesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of searches started by provider and entity",
		}, []string{"source", "entity"}),
		SearchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of searches completed by provider",
		}, []string{"source"}),
		SearchesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of searches that failed by provider and error kind",
		}, []string{"source", "kind"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of searches in seconds by provider",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		ResultsPerSearch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_per_search",
			Help:      "Number of results returned per search by provider",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}, []string{"source"}),
		EmptyShortCircuits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_short_circuits_total",
			Help:      "Total number of searches answered empty because the provider does not support the entity",
		}, []string{"source", "entity"}),
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of single-record lookups",
		}, []string{"entity", "outcome"}),

		// Provider requests
		SourceRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of HTTP answers from providers by status code",
		}, []string{"source", "status"}),
		SourceRequestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total number of failed provider calls by reason",
		}, []string{"source", "reason"}),
		SourceRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of provider HTTP requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		RateLimitWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the provider rate limiter in seconds",
			Buckets:   []float64{0, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"source"}),

		// Ranking
		RankingApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_applied_total",
			Help:      "Total number of responses reordered open-access first",
		}, []string{"source"}),
		RankingFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_fallbacks_total",
			Help:      "Total number of responses returned unranked after an inspection failure",
		}, []string{"source"}),

		// Inbound HTTP
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RecordSearchStarted records the start of a search.
func (m *Metrics) RecordSearchStarted(source, entity string) {
	if m == nil {
		return
	}
	m.SearchesStarted.WithLabelValues(source, entity).Inc()
}

// RecordSearchCompleted records a successful search with its result count and duration.
func (m *Metrics) RecordSearchCompleted(source string, resultCount int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SearchesCompleted.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	m.ResultsPerSearch.WithLabelValues(source).Observe(float64(resultCount))
}

// RecordSearchFailed records a failed search.
func (m *Metrics) RecordSearchFailed(source, kind string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.SearchesFailed.WithLabelValues(source, kind).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordEmptyShortCircuit records an unsupported-entity request answered empty.
func (m *Metrics) RecordEmptyShortCircuit(source, entity string) {
	if m == nil {
		return
	}
	m.EmptyShortCircuits.WithLabelValues(source, entity).Inc()
}

// RecordLookup records a single-record lookup and its outcome.
func (m *Metrics) RecordLookup(entity, outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(entity, outcome).Inc()
}

// RecordSourceRequest records a provider HTTP answer.
func (m *Metrics) RecordSourceRequest(source string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(source, strconv.Itoa(statusCode)).Inc()
	m.SourceRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSourceFailure records a failed provider call.
func (m *Metrics) RecordSourceFailure(source, reason string) {
	if m == nil {
		return
	}
	m.SourceRequestsFailed.WithLabelValues(source, reason).Inc()
}

// RecordRateLimitWait records time spent in the provider token bucket.
func (m *Metrics) RecordRateLimitWait(source string, wait time.Duration) {
	if m == nil {
		return
	}
	m.RateLimitWait.WithLabelValues(source).Observe(wait.Seconds())
}

// RecordRankingApplied records a response reordered open-access first.
func (m *Metrics) RecordRankingApplied(source string) {
	if m == nil {
		return
	}
	m.RankingApplied.WithLabelValues(source).Inc()
}

// RecordRankingFallback records a response left unranked after a failure.
func (m *Metrics) RecordRankingFallback(source string) {
	if m == nil {
		return
	}
	m.RankingFallbacks.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records an inbound HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(durationSeconds)
}
