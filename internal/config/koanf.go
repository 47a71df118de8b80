// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tasarini/config.yaml",
	"/etc/tasarini/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8090,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			DefaultTTL:      time.Hour,
			MaxEntries:      500,
			Namespace:       "travel_cache_",
			JanitorInterval: 5 * time.Minute,
			PreloadPopular:  false,
		},
		Storage: StorageConfig{
			Backend:        "badger",
			BadgerPath:     "/data/tasarini",
			BadgerInMemory: false,
			RedisURL:       "localhost:6379",
		},
		Recommend: RecommendConfig{
			BudgetWeight:       0.4,
			RatingWeight:       0.3,
			ProximityWeight:    0.2,
			AvailabilityWeight: 0.1,
			PartnerBonus:       0.05,
			TopN:               3,
			ProfileTTL:         24 * time.Hour,
		},
		Personalize: PersonalizeConfig{
			ProfileTTL:    30 * time.Minute,
			HistoryWindow: 365 * 24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			BatchSize:     10,
			FlushInterval: 30 * time.Second,
			MaxPersisted:  1000,
			EventsKey:     "tasarini_analytics_events",
			UserIDKey:     "tasarini_user_id",
			Topic:         "analytics.batches",
		},
		Enrich: EnrichConfig{
			SourceTimeout: 10 * time.Second,
			ResultTTL:     time.Hour,
		},
		Upstream: UpstreamConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   15 * time.Second,
			RateLimit: 20,
			RateBurst: 40,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults: built-in values
//  2. Config File: optional YAML config file
//  3. Environment Variables: override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// CACHE_MAX_ENTRIES -> cache.max_entries
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Cache
	"cache_default_ttl":      "cache.default_ttl",
	"cache_max_entries":      "cache.max_entries",
	"cache_namespace":        "cache.namespace",
	"cache_janitor_interval": "cache.janitor_interval",
	"cache_preload_popular":  "cache.preload_popular",

	// Storage
	"storage_backend":  "storage.backend",
	"badger_path":      "storage.badger_path",
	"badger_in_memory": "storage.badger_in_memory",
	"redis_url":        "storage.redis_url",

	// Recommendation scoring
	"recommend_budget_weight":       "recommend.budget_weight",
	"recommend_rating_weight":       "recommend.rating_weight",
	"recommend_proximity_weight":    "recommend.proximity_weight",
	"recommend_availability_weight": "recommend.availability_weight",
	"recommend_partner_bonus":       "recommend.partner_bonus",
	"recommend_top_n":               "recommend.top_n",
	"recommend_profile_ttl":         "recommend.profile_ttl",

	// Personalization
	"personalize_profile_ttl":    "personalize.profile_ttl",
	"personalize_history_window": "personalize.history_window",

	// Analytics
	"analytics_batch_size":     "analytics.batch_size",
	"analytics_flush_interval": "analytics.flush_interval",
	"analytics_max_persisted":  "analytics.max_persisted",
	"analytics_events_key":     "analytics.events_key",
	"analytics_user_id_key":    "analytics.user_id_key",
	"analytics_topic":          "analytics.topic",
	"analytics_nats_url":       "analytics.nats_url",

	// Enrichment sources
	"enrich_source_timeout":  "enrich.source_timeout",
	"enrich_result_ttl":      "enrich.result_ttl",
	"enrich_hotels_url":      "enrich.hotels_url",
	"enrich_flights_url":     "enrich.flights_url",
	"enrich_restaurants_url": "enrich.restaurants_url",
	"enrich_activities_url":  "enrich.activities_url",
	"enrich_transfers_url":   "enrich.transfers_url",

	// Upstream REST API
	"upstream_base_url":   "upstream.base_url",
	"upstream_api_token":  "upstream.api_token",
	"upstream_timeout":    "upstream.timeout",
	"upstream_rate_limit": "upstream.rate_limit",
	"upstream_rate_burst": "upstream.rate_burst",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps environment variable names to koanf paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - CACHE_MAX_ENTRIES -> cache.max_entries
//   - REDIS_URL -> storage.redis_url
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
