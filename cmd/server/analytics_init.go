// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package main

import (
	"time"

	"github.com/tomtom215/tasarini/internal/analytics"
	"github.com/tomtom215/tasarini/internal/config"
	"github.com/tomtom215/tasarini/internal/logging"
)

// initAnalyticsSink picks where flushed batches are published. An empty
// topic disables publishing. A NATS URL uses JetStream (nats build tag);
// if that fails the in-process channel is used instead.
func initAnalyticsSink(cfg *config.AnalyticsConfig) analytics.Sink {
	if cfg.Topic == "" {
		logging.Info().Msg("Analytics batch publishing disabled (ANALYTICS_TOPIC empty)")
		return nil
	}

	if cfg.NATSURL != "" {
		sink, err := analytics.NewNATSSink(analytics.NATSConfig{
			URL:             cfg.NATSURL,
			Subject:         cfg.Topic,
			MaxReconnects:   -1,
			ReconnectWait:   2 * time.Second,
			ReconnectBuffer: 8 * 1024 * 1024,
		})
		if err == nil {
			logging.Info().Str("url", cfg.NATSURL).Str("subject", cfg.Topic).Msg("Analytics batches publish to NATS")
			return sink
		}
		logging.Warn().Err(err).Msg("NATS analytics sink unavailable, using in-process channel")
	}

	sink, _ := analytics.NewChannelSink(64)
	return sink
}

func analyticsConfig(cfg *config.AnalyticsConfig) analytics.Config {
	return analytics.Config{
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		MaxPersisted:  cfg.MaxPersisted,
		EventsKey:     cfg.EventsKey,
		UserIDKey:     cfg.UserIDKey,
	}
}
