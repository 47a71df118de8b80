// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package travelapi

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tasarini/internal/metrics"
)

// BreakerSettings tunes NewBreaker. Zero fields take the defaults:
// 3 half-open requests, 1 minute interval, 2 minute open timeout, trip at
// >= 60% failures over at least 10 requests.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64

	// IsSuccessful classifies errors that should not count against the
	// upstream. Nil counts every error as a failure.
	IsSuccessful func(err error) bool
}

func (s *BreakerSettings) withDefaults() BreakerSettings {
	out := *s
	if out.MaxRequests == 0 {
		out.MaxRequests = 3
	}
	if out.Interval == 0 {
		out.Interval = time.Minute
	}
	if out.Timeout == 0 {
		out.Timeout = 2 * time.Minute
	}
	if out.MinRequests == 0 {
		out.MinRequests = 10
	}
	if out.FailureRatio == 0 {
		out.FailureRatio = 0.6
	}
	return out
}

// NewBreaker builds a circuit breaker whose state is exported to
// Prometheus under name.
func NewBreaker[T any](name string, settings BreakerSettings, logger zerolog.Logger) *gobreaker.CircuitBreaker[T] {
	s := settings.withDefaults()
	log := logger.With().Str("breaker", name).Logger()

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				log.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := StateString(from), StateString(to)
			log.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return s.IsSuccessful != nil && s.IsSuccessful(err)
		},
	})
}

// RecordBreakerResult counts one call through the named breaker.
func RecordBreakerResult(name string, err error) {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case IsRejected(err):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
}

// IsRejected reports whether err means the breaker refused the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// StateString names a breaker state for logs and metrics.
func StateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
