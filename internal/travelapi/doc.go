// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package travelapi is the client for the travel platform REST API: the
// preferences document and the booking history. Calls are rate limited and
// guarded by a circuit breaker; NewBreaker and NewLimiter are shared with
// the enrichment sources.
package travelapi
