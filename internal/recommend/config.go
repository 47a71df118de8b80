// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains the scoring weights and profile settings.
type Config struct {
	// Weights of the four components. They must sum to 1.
	BudgetWeight       float64 `json:"budget_weight"`
	RatingWeight       float64 `json:"rating_weight"`
	ProximityWeight    float64 `json:"proximity_weight"`
	AvailabilityWeight float64 `json:"availability_weight"`

	// PartnerBonus is added for partner or internally sourced items.
	PartnerBonus float64 `json:"partner_bonus"`

	// TopN is how many ranked items ScoreRecommendations returns.
	TopN int `json:"top_n"`

	// NearKm and FarKm bound the linear proximity decay.
	NearKm float64 `json:"near_km"`
	FarKm  float64 `json:"far_km"`

	// BudgetWindow is the ± fraction around the target budget that scores 1.0.
	BudgetWindow float64 `json:"budget_window"`

	// FullReviewBonusAt is the review count that earns the full rating bonus.
	FullReviewBonusAt int     `json:"full_review_bonus_at"`
	MaxReviewBonus    float64 `json:"max_review_bonus"`

	// HistoryLimit caps BudgetHistory and BookingHistory.
	HistoryLimit int `json:"history_limit"`

	// PreferredCategories is how many top booking categories a profile keeps.
	PreferredCategories int `json:"preferred_categories"`

	// ProfileTTL is how long a profile lives in the cache store.
	ProfileTTL time.Duration `json:"profile_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BudgetWeight:        0.4,
		RatingWeight:        0.3,
		ProximityWeight:     0.2,
		AvailabilityWeight:  0.1,
		PartnerBonus:        0.05,
		TopN:                3,
		NearKm:              5,
		FarKm:               50,
		BudgetWindow:        0.2,
		FullReviewBonusAt:   100,
		MaxReviewBonus:      0.1,
		HistoryLimit:        10,
		PreferredCategories: 3,
		ProfileTTL:          24 * time.Hour,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	weights := []struct {
		name string
		v    float64
	}{
		{"budget_weight", c.BudgetWeight},
		{"rating_weight", c.RatingWeight},
		{"proximity_weight", c.ProximityWeight},
		{"availability_weight", c.AvailabilityWeight},
	}
	sum := 0.0
	for _, w := range weights {
		if w.v < 0 || w.v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", w.name, w.v)
		}
		sum += w.v
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %f", sum)
	}

	if c.PartnerBonus < 0 || c.PartnerBonus > 1 {
		return fmt.Errorf("partner_bonus must be in [0, 1], got %f", c.PartnerBonus)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.NearKm < 0 || c.FarKm <= c.NearKm {
		return fmt.Errorf("proximity thresholds must satisfy 0 <= near_km < far_km, got %f/%f", c.NearKm, c.FarKm)
	}
	if c.BudgetWindow < 0 || c.BudgetWindow >= 1 {
		return fmt.Errorf("budget_window must be in [0, 1), got %f", c.BudgetWindow)
	}
	if c.FullReviewBonusAt < 1 {
		return fmt.Errorf("full_review_bonus_at must be positive, got %d", c.FullReviewBonusAt)
	}
	if c.MaxReviewBonus < 0 || c.MaxReviewBonus > 1 {
		return fmt.Errorf("max_review_bonus must be in [0, 1], got %f", c.MaxReviewBonus)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	if c.PreferredCategories < 1 {
		return fmt.Errorf("preferred_categories must be positive, got %d", c.PreferredCategories)
	}
	if c.ProfileTTL <= 0 {
		return fmt.Errorf("profile_ttl must be positive, got %v", c.ProfileTTL)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All fields are value types.
	clone := *c
	return &clone
}
