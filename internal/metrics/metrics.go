// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package metrics holds the Prometheus instrumentation for Tasarini.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - Cache hit/miss/eviction per tier and durable-tier failures
// - Recommendation scoring and personalization
// - Analytics event tracking and flushing
// - Enrichment source outcomes
// - Upstream circuit breakers
// - API endpoint latency and throughput

var (
	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"tier"}, // "memory", "durable"
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasarini_cache_misses_total",
			Help: "Total number of cache misses across both tiers",
		},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_cache_evictions_total",
			Help: "Total number of memory-tier entries removed",
		},
		[]string{"reason"}, // "expired", "capacity", "delete", "clear", "pattern"
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasarini_cache_entries",
			Help: "Current number of entries in the memory tier",
		},
	)

	CacheDurableErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_cache_durable_errors_total",
			Help: "Durable tier failures swallowed by the cache store",
		},
		[]string{"operation"},
	)

	CacheFetchDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasarini_cache_fetch_deduplicated_total",
			Help: "GetOrSet callers that shared an in-flight fetch",
		},
	)

	// Scoring Metrics
	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasarini_scoring_duration_seconds",
			Help:    "Duration of a recommendation scoring pass",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"category"},
	)

	ScoredCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_scored_candidates_total",
			Help: "Total number of candidates scored",
		},
		[]string{"category"},
	)

	PersonalizationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_personalization_runs_total",
			Help: "Personalization passes by outcome",
		},
		[]string{"outcome"}, // "applied", "skipped"
	)

	// Analytics Metrics
	AnalyticsEventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_analytics_events_tracked_total",
			Help: "Total number of analytics events tracked",
		},
		[]string{"category"},
	)

	AnalyticsFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_analytics_flushes_total",
			Help: "Analytics buffer flushes by outcome",
		},
		[]string{"outcome"}, // "success", "error"
	)

	AnalyticsFlushedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasarini_analytics_flushed_events_total",
			Help: "Total number of events written to the persisted log",
		},
	)

	AnalyticsBufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasarini_analytics_buffer_size",
			Help: "Events waiting in the in-memory analytics buffer",
		},
	)

	// Enrichment Metrics
	EnrichmentSourceResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasarini_enrichment_source_results_total",
			Help: "Enrichment source calls by category and outcome",
		},
		[]string{"category", "outcome"}, // outcome: "success", "error", "timeout"
	)

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasarini_enrichment_duration_seconds",
			Help:    "End-to-end itinerary enrichment duration",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordCacheHit records a hit served from the given tier.
func RecordCacheHit(tier string) {
	CacheHits.WithLabelValues(tier).Inc()
}

// RecordCacheMiss records a miss on both tiers.
func RecordCacheMiss() {
	CacheMisses.Inc()
}

// RecordCacheEvictions records n removed entries.
func RecordCacheEvictions(reason string, n int) {
	if n <= 0 {
		return
	}
	CacheEvictions.WithLabelValues(reason).Add(float64(n))
}

// RecordDurableError records a swallowed durable tier failure.
func RecordDurableError(operation string) {
	CacheDurableErrors.WithLabelValues(operation).Inc()
}

// RecordScoring records one scoring pass.
func RecordScoring(category string, candidates int, duration time.Duration) {
	ScoringDuration.WithLabelValues(category).Observe(duration.Seconds())
	ScoredCandidates.WithLabelValues(category).Add(float64(candidates))
}

// RecordPersonalization records whether personalization ran for a request.
func RecordPersonalization(applied bool) {
	if applied {
		PersonalizationRuns.WithLabelValues("applied").Inc()
		return
	}
	PersonalizationRuns.WithLabelValues("skipped").Inc()
}

// RecordAnalyticsFlush records a flush of n events.
func RecordAnalyticsFlush(n int, err error) {
	if err != nil {
		AnalyticsFlushes.WithLabelValues("error").Inc()
		return
	}
	AnalyticsFlushes.WithLabelValues("success").Inc()
	AnalyticsFlushedEvents.Add(float64(n))
}

// RecordEnrichmentSource records the outcome of one source call.
func RecordEnrichmentSource(category, outcome string) {
	EnrichmentSourceResults.WithLabelValues(category, outcome).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
