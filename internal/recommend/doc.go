// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package recommend ranks travel candidates (hotels, flights, restaurants,
// activities) against a trip and returns the top few with badges.
//
// # Scoring
//
// Each candidate gets four component scores in [0, 1]:
//
//   - Budget (40%): 1.0 inside ±20% of the target budget, where the target is
//     the mean of the trip's daily budget and the user's historical average.
//     Cheaper items climb from 0.7 toward 1.0; dearer items fall to 0 once the
//     overage equals the target itself.
//   - Rating (30%): rating/5 plus up to 0.10 for review volume (full at 100
//     reviews), clamped to 1.
//   - Proximity (20%): haversine distance; 1.0 within 5 km, 0 beyond 50 km.
//   - Availability (10%): category-specific flags.
//
// Partner and internally sourced items receive an additive bonus. The total is
// clamped to 1. Missing price, rating or location resolve to neutral defaults
// rather than errors.
//
// # Badges
//
// After the stable sort, badges are assigned in priority order: the first item
// is "recommended"; otherwise the cheapest positive price is "best_price", a
// rating score of at least 0.9 is "top_rated", and partner items are
// "partner_choice".
//
// # Profiles
//
// Per-user budget and category history lives in the cache store under
// recommend_profile_<user> with its own TTL. Profiles are created on the first
// scoring request, backfilled from the booking history source, and updated
// after each booking.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, history, logger)
//	if err != nil {
//	    return err
//	}
//	top, err := engine.ScoreRecommendations(ctx, hotels, recommend.CategoryHotels, trip, nil)
package recommend
