// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package config loads Tasarini configuration with Koanf v2.
//
// Configuration Loading Order:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any setting
//
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	Cache       CacheConfig       `koanf:"cache"`
	Storage     StorageConfig     `koanf:"storage"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Personalize PersonalizeConfig `koanf:"personalize"`
	Analytics   AnalyticsConfig   `koanf:"analytics"`
	Enrich      EnrichConfig      `koanf:"enrich"`
	Upstream    UpstreamConfig    `koanf:"upstream"`
	Supervisor  SupervisorConfig  `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CacheConfig holds settings for the two-tier cache store.
type CacheConfig struct {
	// DefaultTTL applies when a Set call passes no TTL.
	// Default: 1h
	DefaultTTL time.Duration `koanf:"default_ttl"`

	// MaxEntries bounds the in-memory tier.
	// Default: 500
	MaxEntries int `koanf:"max_entries"`

	// Namespace prefixes every durable key so Clear never touches foreign data.
	// Default: travel_cache_
	Namespace string `koanf:"namespace"`

	// JanitorInterval is how often expired memory entries are swept.
	// Default: 5m
	JanitorInterval time.Duration `koanf:"janitor_interval"`

	// PreloadPopular warms the popular-destination entries at startup.
	// Default: false
	PreloadPopular bool `koanf:"preload_popular"`
}

// StorageConfig selects the durable tier backend.
type StorageConfig struct {
	// Backend is one of: badger, redis, none.
	// Default: badger
	Backend string `koanf:"backend"`

	// BadgerPath is the Badger data directory. Ignored when BadgerInMemory is set.
	// Default: /data/tasarini
	BadgerPath string `koanf:"badger_path"`

	// BadgerInMemory runs Badger without touching disk.
	// Default: false
	BadgerInMemory bool `koanf:"badger_in_memory"`

	// RedisURL accepts either redis://host:port/db or a bare host:port.
	// Default: localhost:6379
	RedisURL string `koanf:"redis_url"`
}

// RecommendConfig holds recommendation scoring weights.
type RecommendConfig struct {
	BudgetWeight       float64       `koanf:"budget_weight"`
	RatingWeight       float64       `koanf:"rating_weight"`
	ProximityWeight    float64       `koanf:"proximity_weight"`
	AvailabilityWeight float64       `koanf:"availability_weight"`
	PartnerBonus       float64       `koanf:"partner_bonus"`
	TopN               int           `koanf:"top_n"`
	ProfileTTL         time.Duration `koanf:"profile_ttl"`
}

// PersonalizeConfig holds user preference caching settings.
type PersonalizeConfig struct {
	ProfileTTL    time.Duration `koanf:"profile_ttl"`
	HistoryWindow time.Duration `koanf:"history_window"`
}

// AnalyticsConfig holds event batching settings.
type AnalyticsConfig struct {
	BatchSize     int           `koanf:"batch_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
	MaxPersisted  int           `koanf:"max_persisted"`
	EventsKey     string        `koanf:"events_key"`
	UserIDKey     string        `koanf:"user_id_key"`

	// Topic receives each flushed batch. Empty disables publishing.
	// Default: analytics.batches
	Topic string `koanf:"topic"`

	// NATSURL switches the batch sink from in-process to NATS (requires the nats build tag).
	NATSURL string `koanf:"nats_url"`
}

// EnrichConfig holds itinerary enrichment settings.
type EnrichConfig struct {
	SourceTimeout  time.Duration `koanf:"source_timeout"`
	ResultTTL      time.Duration `koanf:"result_ttl"`
	HotelsURL      string        `koanf:"hotels_url"`
	FlightsURL     string        `koanf:"flights_url"`
	RestaurantsURL string        `koanf:"restaurants_url"`
	ActivitiesURL  string        `koanf:"activities_url"`
	TransfersURL   string        `koanf:"transfers_url"`
}

// UpstreamConfig holds the preferences/bookings REST API client settings.
type UpstreamConfig struct {
	BaseURL   string        `koanf:"base_url"`
	APIToken  string        `koanf:"api_token"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst int           `koanf:"rate_burst"`
}

// SupervisorConfig mirrors supervisor.TreeConfig.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
