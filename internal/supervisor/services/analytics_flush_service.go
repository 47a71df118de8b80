// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Flusher is satisfied by *analytics.Tracker.
type Flusher interface {
	Flush(ctx context.Context) error
	Buffered() int
}

// AnalyticsFlushConfig holds the flush schedule.
type AnalyticsFlushConfig struct {
	// Interval between periodic flushes. Defaults to 30s.
	Interval time.Duration

	// DrainTimeout bounds the final flush on shutdown. Defaults to 5s.
	DrainTimeout time.Duration
}

// AnalyticsFlushService flushes buffered analytics events on a timer and
// once more on shutdown so a partial batch is not lost.
type AnalyticsFlushService struct {
	flusher Flusher
	config  AnalyticsFlushConfig
	logger  zerolog.Logger
	name    string
}

// NewAnalyticsFlushService creates the flush loop for flusher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnalyticsFlushService(flusher Flusher, cfg AnalyticsFlushConfig, logger zerolog.Logger) *AnalyticsFlushService {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	return &AnalyticsFlushService{
		flusher: flusher,
		config:  cfg,
		logger:  logger.With().Str("service", "analytics-flush").Logger(),
		name:    "analytics-flush",
	}
}

// Serve implements suture.Service. Flush errors are logged and the loop
// keeps running; the tracker has already dropped the failed batch.
func (s *AnalyticsFlushService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("Analytics flush service starting")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.drain()
			return ctx.Err()

		case <-ticker.C:
			if s.flusher.Buffered() == 0 {
				continue
			}
			if err := s.flusher.Flush(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("Scheduled analytics flush failed")
			}
		}
	}
}

func (s *AnalyticsFlushService) drain() {
	n := s.flusher.Buffered()
	if n == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DrainTimeout)
	defer cancel()

	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Error().Err(err).Int("events", n).Msg("Final analytics flush failed")
		return
	}
	s.logger.Info().Int("events", n).Msg("Flushed analytics on shutdown")
}

func (s *AnalyticsFlushService) String() string {
	return s.name
}
