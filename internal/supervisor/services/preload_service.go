// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
)

// Preloader is satisfied by *cache.Store.
type Preloader interface {
	PreloadPopular(ctx context.Context, loader cache.DestinationLoader) int
}

// PreloadConfig controls popular destination warming.
type PreloadConfig struct {
	// OnStart warms the cache as soon as the service starts.
	OnStart bool

	// Refresh is the re-warm interval. Defaults to 12h, half the
	// preloaded entries' TTL, so each destination is retried before it
	// expires.
	Refresh time.Duration

	// RunTimeout bounds one pass over every destination. Defaults to 2m.
	RunTimeout time.Duration
}

// PreloadService keeps popular destination data warm in the cache.
type PreloadService struct {
	preloader Preloader
	loader    cache.DestinationLoader
	config    PreloadConfig
	logger    zerolog.Logger
}

// NewPreloadService creates the warming loop.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPreloadService(preloader Preloader, loader cache.DestinationLoader, cfg PreloadConfig, logger zerolog.Logger) *PreloadService {
	if cfg.Refresh <= 0 {
		cfg.Refresh = 12 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	return &PreloadService{
		preloader: preloader,
		loader:    loader,
		config:    cfg,
		logger:    logger.With().Str("service", "preload").Logger(),
	}
}

// Serve implements suture.Service.
func (s *PreloadService) Serve(ctx context.Context) error {
	if s.config.OnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PreloadService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	loaded := s.preloader.PreloadPopular(runCtx, s.loader)
	s.logger.Info().
		Int("loaded", loaded).
		Dur("duration", time.Since(start)).
		Msg("Popular destinations preloaded")
}

func (s *PreloadService) String() string {
	return "popular-preload"
}
