// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

/*
Package main is the entry point for the Tasarini recommendation server.

Tasarini scores travel candidates (hotels, flights, restaurants, activities)
against a trip's budget, location and dates, personalizes the ranking from
the traveler's preferences and booking history, and records the resulting
views and bookings for conversion and A/B analysis.

# Application Architecture

	RootSupervisor ("tasarini")
	├── "cache-layer"
	│   ├── cache-janitor      expired entry sweep
	│   └── popular-preload    popular destination warm-up (optional)
	├── "analytics-layer"
	│   └── analytics-flush    periodic batch flush, final drain on stop
	└── "api-layer"
	    └── http-server        /api/v1 and /metrics

Component initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog, configured from LOG_LEVEL and LOG_FORMAT
 3. Durable cache tier: BadgerDB, Redis, or none (STORAGE_BACKEND)
 4. Cache store, travel platform client, scoring engine, personalization
 5. Analytics tracker with an in-process or NATS batch sink
 6. Enrichment sources and orchestrator
 7. HTTP router and the supervisor tree

# Build Tags

	go build ./cmd/server                # in-process analytics sink
	go build -tags nats ./cmd/server     # ANALYTICS_NATS_URL publishes to JetStream

# Example Usage

	export STORAGE_BACKEND=badger
	export BADGER_PATH=/var/lib/tasarini
	export UPSTREAM_BASE_URL=https://api.example-travel.com
	export UPSTREAM_API_TOKEN=...
	export ENRICH_HOTELS_URL=http://hotels-adapter:8080/search
	export ENRICH_ACTIVITIES_URL=http://activities-adapter:8080/search
	./tasarini

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the analytics buffer is flushed, and the durable tier
is closed last.
*/
package main
