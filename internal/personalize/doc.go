// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package personalize re-ranks scored items by how well they match the
// current user's declared preferences, booking behavior and the season, and
// keeps the user's segments up to date as trips are planned and booked.
package personalize
