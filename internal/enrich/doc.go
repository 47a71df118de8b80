// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package enrich turns an itinerary into ranked recommendations.
//
// An Orchestrator asks every configured Source for candidates in parallel,
// each call bounded by its own timeout. A failing source leaves its
// category empty and is reported in Result.Failures. Scored categories are
// then ranked by the recommend engine, annotated by the personalize
// service when a profile is available, and reordered for the session's A/B
// variant. Transfers are returned as fetched.
//
// Results are cached under a key derived from the city, dates, party size
// and budget, in both cache tiers.
package enrich
