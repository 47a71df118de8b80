// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

/*
Package supervisor runs the long-lived parts of the server under suture v4.

	RootSupervisor ("tasarini")
	├── "cache-layer"
	│   ├── CacheJanitorService   expired entry sweep
	│   └── PreloadService        popular destination warm-up
	├── "analytics-layer"
	│   └── AnalyticsFlushService periodic flush, final drain on stop
	└── "api-layer"
	    └── HTTPServerService

Crashed services are restarted with backoff. Suture events are logged through
sutureslog, which writes to zerolog via logging.NewSlogLoggerFor.

Typical wiring in main:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerFor("supervisor"), supervisor.TreeConfig{})
	if err != nil {
		return err
	}
	tree.AddCacheService(services.NewCacheJanitorService(store, time.Minute, logger))
	tree.AddAnalyticsService(services.NewAnalyticsFlushService(tracker, services.AnalyticsFlushConfig{}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	errCh := tree.ServeBackground(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
