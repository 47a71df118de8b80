// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

/*
Package services provides suture.Service wrappers for Tasarini's long-running
components.

Each wrapper turns a component's lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService:
  - Runs the recommendation API's *http.Server
  - Drains in-flight requests on shutdown, bounded by a timeout

AnalyticsFlushService:
  - Flushes the analytics tracker's buffer on an interval
  - Performs a final flush with a fresh context on shutdown

CacheJanitorService:
  - Evicts expired memory entries from the cache store

PreloadService:
  - Warms the cache with popular destination data
  - Refreshes before the preloaded entries expire

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLoggerFor("supervisor"), supervisor.DefaultTreeConfig())

	tree.AddCacheService(services.NewCacheJanitorService(store, time.Minute, logger))
	tree.AddCacheService(services.NewPreloadService(store, orch.PopularLoader(),
	    services.PreloadConfig{OnStart: true}, logger))
	tree.AddAnalyticsService(services.NewAnalyticsFlushService(tracker,
	    services.AnalyticsFlushConfig{Interval: 30 * time.Second}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second, logger))

	errCh := tree.ServeBackground(ctx)

# Error Handling

Return values determine supervisor behavior:

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted with backoff
	ctx.Err()   -> shutdown requested

Periodic failures (a flush that cannot persist, a destination that cannot
be loaded) are logged and do not end Serve; only listener failures are
returned to the supervisor.
*/
package services
