// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router owns the chi route tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router. A nil middleware uses the defaults.
func NewRouter(handler *Handler, middleware *Middleware) *Router {
	if middleware == nil {
		middleware = NewMiddleware(nil)
	}
	return &Router{handler: handler, middleware: middleware}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/", h.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(RequestMetrics())
		r.Use(SessionID())

		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RateLimit())
			r.Post("/recommendations/score", h.ScoreRecommendations)
			r.Post("/recommendations/personalize", h.PersonalizeRecommendations)

			r.Get("/profile", h.withPersonalizer(h.GetProfile))
			r.Post("/profile/refresh", h.withPersonalizer(h.RefreshProfile))
			r.Post("/profile/trips", h.withPersonalizer(h.LearnFromTrip))
			r.Post("/profile/bookings", h.withPersonalizer(h.RecordBooking))
			r.Get("/profile/suggestions", h.withPersonalizer(h.ContextualSuggestions))

			r.Get("/cache/stats", h.CacheStats)
			r.Post("/cache/invalidate", h.InvalidateCache)
			r.Delete("/cache", h.ClearCache)
		})

		r.With(router.middleware.RateLimitCustom(RateLimitEnrich)).Post("/enrich", h.EnrichItinerary)

		r.Route("/analytics", func(r chi.Router) {
			r.Use(router.middleware.RateLimitCustom(RateLimitAnalytics))
			r.Post("/events", h.withTracker(h.TrackEvent))
			r.Post("/flush", h.withTracker(h.FlushAnalytics))
			r.Get("/conversion", h.withTracker(h.ConversionMetrics))
			r.Get("/performance", h.withTracker(h.PerformanceMetrics))
			r.Get("/abtest", h.withTracker(h.ABTestResults))
			r.Get("/dashboard", h.withTracker(h.Dashboard))
		})
	})

	return r
}
