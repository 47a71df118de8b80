// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/config"
	"github.com/tomtom215/tasarini/internal/logging"
)

// initPersister opens the durable cache tier selected by STORAGE_BACKEND.
// "none" returns a nil Persister and the store runs memory-only.
func initPersister(ctx context.Context, cfg *config.StorageConfig) (cache.Persister, error) {
	switch strings.ToLower(cfg.Backend) {
	case "none":
		logging.Warn().Msg("No durable cache tier (STORAGE_BACKEND=none); analytics and profiles are lost on restart")
		return nil, nil

	case "redis":
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		p, err := cache.OpenRedis(pingCtx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis durable tier: %w", err)
		}
		logging.Info().Msg("Durable cache tier: redis")
		return p, nil

	default:
		p, err := cache.OpenBadger(cache.BadgerOptions{Path: cfg.BadgerPath, InMemory: cfg.BadgerInMemory})
		if err != nil {
			return nil, fmt.Errorf("badger durable tier: %w", err)
		}
		logging.Info().
			Str("path", cfg.BadgerPath).
			Bool("in_memory", cfg.BadgerInMemory).
			Msg("Durable cache tier: badger")
		return p, nil
	}
}
