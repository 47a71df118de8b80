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

// Sweeper is satisfied by *cache.Store.
type Sweeper interface {
	Sweep() int
}

// CacheJanitorService evicts expired memory entries on a fixed interval.
// Reads already ignore expired entries; the sweep only returns memory.
type CacheJanitorService struct {
	sweeper  Sweeper
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheJanitorService sweeps every interval, one minute if unset.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(sweeper Sweeper, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.Sweep(); n > 0 {
				s.logger.Debug().Int("evicted", n).Msg("Swept expired cache entries")
			}
		}
	}
}

func (s *CacheJanitorService) String() string {
	return "cache-janitor"
}
