// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

/*
Package api exposes the scoring, personalization, enrichment, analytics and
cache operations over HTTP using the chi router.

Routes (all under /api/v1):

	POST   /recommendations/score        rank candidates for a trip
	POST   /recommendations/personalize  annotate ranked items with affinity
	GET    /profile                      the traveler's merged profile
	POST   /profile/trips                learn preferences from a planned trip
	POST   /profile/refresh              drop the cached profile and reload it
	POST   /profile/bookings             re-segment and update the booker's scoring profile
	GET    /profile/suggestions          tips for ?destination, ?start, ?end
	POST   /enrich                       fan out to sources and rank everything
	POST   /analytics/events             record an event for this session
	POST   /analytics/flush              flush buffered events
	GET    /analytics/conversion         funnel metrics (?start, ?end, ?product_type)
	GET    /analytics/performance        API latency, error and cache hit rates
	GET    /analytics/abtest             per-variant conversion with significance
	GET    /analytics/dashboard          today's sessions, bookings and top products
	GET    /cache/stats                  cache counters and sizes
	POST   /cache/invalidate             remove keys matching a regular expression
	DELETE /cache                        clear the cache (?persistent=true)
	GET    /health, /health/live         health checks

Prometheus metrics are served at /metrics.

Every body is a models.APIResponse. Invalid input is answered with 400 and
the VALIDATION_ERROR code; the details name each failing JSON field.

Middleware, outermost first: request id and logging context, real IP,
panic recovery, CORS (go-chi/cors), security headers, request metrics, the
X-Session-ID session scope and a per-IP rate limit (go-chi/httprate) tuned
per route group. The session decides the A/B variant; a request without a
valid one is given a fresh id, echoed in the response header.
*/
package api
