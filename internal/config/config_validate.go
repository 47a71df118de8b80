// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateCache,
		c.validateStorage,
		c.validateRecommend,
		c.validateAnalytics,
		c.validateEnrich,
		c.validateUpstream,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("CACHE_DEFAULT_TTL must be positive")
	}
	if c.Cache.Namespace == "" {
		return fmt.Errorf("CACHE_NAMESPACE must not be empty")
	}
	if c.Cache.JanitorInterval <= 0 {
		return fmt.Errorf("CACHE_JANITOR_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "none":
		return nil
	case "badger":
		if !c.Storage.BadgerInMemory && c.Storage.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when STORAGE_BACKEND=badger")
		}
		return nil
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
		return nil
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: badger, redis, none (got %q)", c.Storage.Backend)
	}
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	for name, w := range map[string]float64{
		"budget_weight":       r.BudgetWeight,
		"rating_weight":       r.RatingWeight,
		"proximity_weight":    r.ProximityWeight,
		"availability_weight": r.AvailabilityWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("recommend.%s must be between 0 and 1, got %g", name, w)
		}
	}
	sum := r.BudgetWeight + r.RatingWeight + r.ProximityWeight + r.AvailabilityWeight
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("recommend weights must sum to 1, got %g", sum)
	}
	if r.PartnerBonus < 0 || r.PartnerBonus > 1 {
		return fmt.Errorf("recommend.partner_bonus must be between 0 and 1, got %g", r.PartnerBonus)
	}
	if r.TopN < 1 {
		return fmt.Errorf("recommend.top_n must be at least 1, got %d", r.TopN)
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	a := c.Analytics
	if a.BatchSize < 1 {
		return fmt.Errorf("ANALYTICS_BATCH_SIZE must be at least 1, got %d", a.BatchSize)
	}
	if a.FlushInterval <= 0 {
		return fmt.Errorf("ANALYTICS_FLUSH_INTERVAL must be positive")
	}
	if a.MaxPersisted < a.BatchSize {
		return fmt.Errorf("ANALYTICS_MAX_PERSISTED (%d) must be >= ANALYTICS_BATCH_SIZE (%d)", a.MaxPersisted, a.BatchSize)
	}
	if a.EventsKey == "" || a.UserIDKey == "" {
		return fmt.Errorf("analytics events and user id keys must not be empty")
	}
	return nil
}

func (c *Config) validateEnrich() error {
	if c.Enrich.SourceTimeout <= 0 {
		return fmt.Errorf("ENRICH_SOURCE_TIMEOUT must be positive")
	}
	for name, raw := range map[string]string{
		"ENRICH_HOTELS_URL":      c.Enrich.HotelsURL,
		"ENRICH_FLIGHTS_URL":     c.Enrich.FlightsURL,
		"ENRICH_RESTAURANTS_URL": c.Enrich.RestaurantsURL,
		"ENRICH_ACTIVITIES_URL":  c.Enrich.ActivitiesURL,
		"ENRICH_TRANSFERS_URL":   c.Enrich.TransfersURL,
	} {
		if raw == "" {
			continue
		}
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if c.Upstream.BaseURL == "" {
		return nil
	}
	if err := validateHTTPURL(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("UPSTREAM_BASE_URL: %w", err)
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
