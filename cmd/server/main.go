// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tasarini/internal/analytics"
	"github.com/tomtom215/tasarini/internal/api"
	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/config"
	"github.com/tomtom215/tasarini/internal/enrich"
	"github.com/tomtom215/tasarini/internal/logging"
	"github.com/tomtom215/tasarini/internal/personalize"
	"github.com/tomtom215/tasarini/internal/recommend"
	"github.com/tomtom215/tasarini/internal/supervisor"
	"github.com/tomtom215/tasarini/internal/supervisor/services"
	"github.com/tomtom215/tasarini/internal/travelapi"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logging.Info().
		Str("storage", cfg.Storage.Backend).
		Int("port", cfg.Server.Port).
		Msg("Starting Tasarini with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	persister, err := initPersister(ctx, &cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open durable cache tier")
	}

	store := cache.New(cache.Config{
		DefaultTTL: cfg.Cache.DefaultTTL,
		MaxEntries: cfg.Cache.MaxEntries,
		Namespace:  cfg.Cache.Namespace,
	}, persister, logging.WithComponent("cache"))
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing durable cache tier")
		}
	}()

	engine, personalizer, err := initScoring(cfg, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize scoring")
	}

	sink := initAnalyticsSink(&cfg.Analytics)
	if sink != nil {
		defer func() {
			if err := sink.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing analytics sink")
			}
		}()
	}
	tracker, err := analytics.NewTracker(ctx, analyticsConfig(&cfg.Analytics), persister, sink, logging.WithComponent("analytics"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize analytics tracker")
	}
	logging.Info().
		Str("session_id", tracker.SessionID()).
		Str("variant", string(tracker.Variant())).
		Msg("Analytics session started")

	sources, err := initSources(cfg, logging.WithComponent("enrich"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure enrichment sources")
	}
	orchestrator, err := enrich.NewOrchestrator(enrich.Config{
		SourceTimeout: cfg.Enrich.SourceTimeout,
		ResultTTL:     cfg.Enrich.ResultTTL,
	}, sources, engine, personalizer, tracker, store, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize enrichment")
	}
	if len(sources) == 0 {
		logging.Warn().Msg("No enrichment sources configured (ENRICH_*_URL); /enrich returns empty categories")
	}

	handler, err := api.NewHandler(api.Deps{
		Engine:         engine,
		Personalizer:   personalizer,
		Orchestrator:   orchestrator,
		Tracker:        tracker,
		Store:          store,
		RequestTimeout: cfg.Server.Timeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	mwCfg := api.DefaultMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	router := api.NewRouter(handler, api.NewMiddleware(mwCfg))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerFor("supervisor"), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	logger := logging.Logger()
	tree.AddCacheService(services.NewCacheJanitorService(store, cfg.Cache.JanitorInterval, logger))
	if cfg.Cache.PreloadPopular {
		tree.AddCacheService(services.NewPreloadService(store, orchestrator.PopularLoader(),
			services.PreloadConfig{OnStart: true}, logger))
		logging.Info().Int("destinations", len(cache.PopularDestinations)).Msg("Popular destination preload enabled")
	}
	tree.AddAnalyticsService(services.NewAnalyticsFlushService(tracker,
		services.AnalyticsFlushConfig{Interval: cfg.Analytics.FlushInterval}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initScoring builds the travel platform client, the scoring engine and the
// personalizer. Without an upstream base URL there is no booking backfill
// and the personalizer is nil.
func initScoring(cfg *config.Config, store *cache.Store) (*recommend.Engine, *personalize.Service, error) {
	rcfg := recommend.DefaultConfig()
	rcfg.BudgetWeight = cfg.Recommend.BudgetWeight
	rcfg.RatingWeight = cfg.Recommend.RatingWeight
	rcfg.ProximityWeight = cfg.Recommend.ProximityWeight
	rcfg.AvailabilityWeight = cfg.Recommend.AvailabilityWeight
	rcfg.PartnerBonus = cfg.Recommend.PartnerBonus
	rcfg.TopN = cfg.Recommend.TopN
	rcfg.ProfileTTL = cfg.Recommend.ProfileTTL

	if cfg.Upstream.BaseURL == "" {
		logging.Warn().Msg("UPSTREAM_BASE_URL not set; personalization and booking backfill disabled")
		engine, err := recommend.NewEngine(rcfg, store, nil, logging.WithComponent("recommend"))
		return engine, nil, err
	}

	client, err := travelapi.NewClient(travelapi.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RateLimit,
		Burst:             cfg.Upstream.RateBurst,
		AuthToken:         cfg.Upstream.APIToken,
	}, logging.Logger())
	if err != nil {
		return nil, nil, fmt.Errorf("travel api client: %w", err)
	}

	window := cfg.Personalize.HistoryWindow
	history := recommend.BookingHistoryFunc(func(ctx context.Context, _ string) ([]recommend.Booking, error) {
		return client.ListBookings(ctx, time.Now().Add(-window))
	})
	engine, err := recommend.NewEngine(rcfg, store, history, logging.WithComponent("recommend"))
	if err != nil {
		return nil, nil, err
	}

	personalizer, err := personalize.NewService(personalize.Config{
		ProfileTTL:    cfg.Personalize.ProfileTTL,
		HistoryWindow: cfg.Personalize.HistoryWindow,
	}, client, client, store, logging.WithComponent("personalize"))
	if err != nil {
		return nil, nil, err
	}
	return engine, personalizer, nil
}
