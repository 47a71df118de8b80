// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"context"
	"sort"

	"github.com/tomtom215/tasarini/internal/cache"
)

const (
	anonymousUser    = "anonymous"
	unknownCategory  = "unknown"
	profileKeyPrefix = "recommend_profile_"
	defaultAvgRating = 4.0
)

// ProfileKey is the cache key holding userID's profile.
func ProfileKey(userID string) string {
	if userID == "" {
		userID = anonymousUser
	}
	return profileKeyPrefix + userID
}

// Profile returns the cached profile for userID, creating it when absent.
// An empty userID is the anonymous profile. A new profile is seeded with the
// trip's daily budget and backfilled from the booking history source; a
// failing source leaves the seed profile in place.
//
// The history source is called without holding the profile lock; when two
// callers race to create the same profile, the first one saved wins.
func (e *Engine) Profile(ctx context.Context, userID string, trip TripContext) *UserProfile {
	if userID == "" {
		userID = anonymousUser
	}
	e.profileMu.Lock()
	p, ok := e.loadProfile(ctx, userID)
	e.profileMu.Unlock()
	if ok {
		return p
	}

	last := trip
	p = &UserProfile{
		UserID:          userID,
		AverageRating:   defaultAvgRating,
		LastPreferences: &last,
		UpdatedAt:       e.now(),
	}
	if trip.DailyBudget > 0 {
		p.BudgetHistory = []float64{trip.DailyBudget}
	}
	e.backfill(ctx, p)

	e.profileMu.Lock()
	defer e.profileMu.Unlock()
	if existing, ok := e.loadProfile(ctx, userID); ok {
		return existing
	}
	e.saveProfile(ctx, p)
	return p
}

// UpdateUserProfile records a completed booking. The amount (when positive)
// and booking type are appended, both histories are trimmed to HistoryLimit
// and the preferred categories are recomputed. A user without a profile is
// ignored.
func (e *Engine) UpdateUserProfile(ctx context.Context, userID string, b Booking) {
	e.profileMu.Lock()
	defer e.profileMu.Unlock()

	if userID == "" {
		userID = anonymousUser
	}
	p, ok := e.loadProfile(ctx, userID)
	if !ok {
		e.logger.Debug().Str("user_id", userID).Msg("No profile to update")
		return
	}

	if b.Amount > 0 {
		p.BudgetHistory = append(p.BudgetHistory, b.Amount)
	}
	bookingType := b.Type
	if bookingType == "" {
		bookingType = unknownCategory
	}
	p.BookingHistory = append(p.BookingHistory, bookingType)

	p.BudgetHistory = lastN(p.BudgetHistory, e.cfg.HistoryLimit)
	p.BookingHistory = lastN(p.BookingHistory, e.cfg.HistoryLimit)
	p.PreferredCategories = topCategories(p.BookingHistory, e.cfg.PreferredCategories)
	p.UpdatedAt = e.now()

	e.saveProfile(ctx, p)
}

func (e *Engine) loadProfile(ctx context.Context, userID string) (*UserProfile, bool) {
	p, ok := cache.GetAs[UserProfile](ctx, e.store, ProfileKey(userID), cache.Persistent())
	if !ok {
		return nil, false
	}
	// Detach from the cached value before mutating.
	p.BudgetHistory = append([]float64(nil), p.BudgetHistory...)
	p.BookingHistory = append([]string(nil), p.BookingHistory...)
	p.PreferredCategories = append([]string(nil), p.PreferredCategories...)
	return &p, true
}

func (e *Engine) saveProfile(ctx context.Context, p *UserProfile) {
	e.store.Set(ctx, ProfileKey(p.UserID), *p, cache.WithTTL(e.cfg.ProfileTTL), cache.Persistent())
}

func (e *Engine) backfill(ctx context.Context, p *UserProfile) {
	if e.history == nil {
		return
	}
	bookings, err := e.history.RecentBookings(ctx, p.UserID)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", p.UserID).Msg("Booking history unavailable, keeping seed profile")
		return
	}
	if len(bookings) == 0 {
		return
	}

	amounts := make([]float64, 0, len(bookings))
	destinations := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if b.Amount > 0 {
			amounts = append(amounts, b.Amount)
		}
		dest := b.Destination
		if dest == "" {
			dest = unknownCategory
		}
		destinations = append(destinations, dest)
	}

	p.BudgetHistory = lastN(amounts, e.cfg.HistoryLimit)
	p.PreferredCategories = topCategories(destinations, e.cfg.PreferredCategories)
	p.BookingHistory = lastN(destinations, e.cfg.HistoryLimit)
}

// topCategories returns the n most frequent values. Ties keep first-seen order.
func topCategories(values []string, n int) []string {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return append([]T(nil), s[len(s)-n:]...)
}
