// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/metrics"
)

// BookingHistory supplies a user's recent reservations for profile backfill.
type BookingHistory interface {
	RecentBookings(ctx context.Context, userID string) ([]Booking, error)
}

// BookingHistoryFunc adapts a function to BookingHistory.
type BookingHistoryFunc func(ctx context.Context, userID string) ([]Booking, error)

// RecentBookings calls f.
func (f BookingHistoryFunc) RecentBookings(ctx context.Context, userID string) ([]Booking, error) {
	return f(ctx, userID)
}

// Engine scores and ranks candidates. It is safe for concurrent use.
type Engine struct {
	cfg     *Config
	store   *cache.Store
	history BookingHistory
	logger  zerolog.Logger
	now     func() time.Time

	// profileMu serializes profile read-modify-write cycles.
	profileMu sync.Mutex
}

// NewEngine creates a scoring engine. history may be nil, in which case
// profiles are never backfilled.
func NewEngine(cfg *Config, store *cache.Store, history BookingHistory, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if store == nil {
		return nil, errors.New("recommend engine requires a cache store")
	}

	return &Engine{
		cfg:     cfg.Clone(),
		store:   store,
		history: history,
		logger:  logger.With().Str("component", "recommend").Logger(),
		now:     time.Now,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// ScoreRecommendations ranks items for trip and returns the top TopN, sorted
// by descending total score with 1-based ranks and badges.
//
// userLocation may be nil, in which case every item gets a neutral proximity
// score. An empty input returns an empty result.
func (e *Engine) ScoreRecommendations(ctx context.Context, items []Candidate, category Category, trip TripContext, userLocation *GeoPoint) ([]ScoredItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []ScoredItem{}, nil
	}
	start := time.Now()

	profile := e.Profile(ctx, trip.UserID, trip)
	historical := profile.HistoricalBudget(trip.DailyBudget)

	scored := make([]ScoredItem, len(items))
	for i := range items {
		scored[i] = ScoredItem{
			Item:  items[i],
			Score: e.scoreItem(&items[i], category, trip.DailyBudget, historical, userLocation),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.TotalScore > scored[j].Score.TotalScore
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	assignBadges(scored)

	if len(scored) > e.cfg.TopN {
		scored = scored[:e.cfg.TopN]
	}

	metrics.RecordScoring(string(category), len(items), time.Since(start))
	e.logger.Debug().
		Str("category", string(category)).
		Int("candidates", len(items)).
		Int("returned", len(scored)).
		Str("user_id", profile.UserID).
		Msg("Scored recommendations")

	return scored, nil
}
