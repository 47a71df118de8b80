// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"math"
)

const (
	earthRadiusKm = 6371.0
	maxRating     = 5.0
	neutralScore  = 0.5
)

// scoreItem computes the component scores and weighted total for one item.
func (e *Engine) scoreItem(c *Candidate, category Category, dailyBudget, historicalBudget float64, userLocation *GeoPoint) RecommendationScore {
	s := RecommendationScore{
		BudgetScore:       e.budgetScore(c.Price, dailyBudget, historicalBudget),
		RatingScore:       e.ratingScore(c.Rating, c.ReviewCount),
		ProximityScore:    e.proximityScore(userLocation, c.Location),
		AvailabilityScore: availabilityScore(c, category),
	}

	total := e.cfg.BudgetWeight*s.BudgetScore +
		e.cfg.RatingWeight*s.RatingScore +
		e.cfg.ProximityWeight*s.ProximityScore +
		e.cfg.AvailabilityWeight*s.AvailabilityScore
	if c.PartnerOrInternal() {
		total += e.cfg.PartnerBonus
	}
	s.TotalScore = clamp01(total)
	return s
}

// budgetScore compares price against target = (daily + historical) / 2.
//
// Inside [target·(1-w), target·(1+w)] the score is 1. Below the window it
// rises linearly from 0.7 toward 1; above it falls linearly and reaches 0
// once the overage equals the target. No price, or a non-positive target,
// is neutral.
func (e *Engine) budgetScore(price, dailyBudget, historicalBudget float64) float64 {
	if price <= 0 {
		return neutralScore
	}
	target := (dailyBudget + historicalBudget) / 2
	if target <= 0 {
		return neutralScore
	}

	optimalMin := target * (1 - e.cfg.BudgetWindow)
	optimalMax := target * (1 + e.cfg.BudgetWindow)

	switch {
	case price >= optimalMin && price <= optimalMax:
		return 1
	case price < optimalMin:
		return 0.7 + (price/optimalMin)*0.3
	default:
		return math.Max(0, 1-(price-optimalMax)/target)
	}
}

// ratingScore normalizes rating to a 5-point scale and adds a review-count
// bonus that is full at FullReviewBonusAt reviews.
func (e *Engine) ratingScore(rating float64, reviews int) float64 {
	normalized := math.Min(math.Max(rating, 0)/maxRating, 1)

	capped := reviews
	if capped > e.cfg.FullReviewBonusAt {
		capped = e.cfg.FullReviewBonusAt
	}
	if capped < 0 {
		capped = 0
	}
	bonus := e.cfg.MaxReviewBonus * float64(capped) / float64(e.cfg.FullReviewBonusAt)

	return math.Min(normalized+bonus, 1)
}

// proximityScore is 1 within NearKm, 0 beyond FarKm and linear in between.
// A missing location on either side is neutral.
func (e *Engine) proximityScore(user, item *GeoPoint) float64 {
	if user == nil || item == nil || item.Lat == 0 || item.Lng == 0 {
		return neutralScore
	}

	d := HaversineKm(*user, *item)
	switch {
	case d <= e.cfg.NearKm:
		return 1
	case d >= e.cfg.FarKm:
		return 0
	default:
		return 1 - (d-e.cfg.NearKm)/(e.cfg.FarKm-e.cfg.NearKm)
	}
}

func availabilityScore(c *Candidate, category Category) float64 {
	switch category {
	case CategoryHotels:
		if c.IsAvailable() {
			return 1
		}
		return 0.3
	case CategoryFlights:
		if c.IsAvailable() {
			return 1
		}
		return 0.2
	case CategoryRestaurants:
		if c.BookingAvailable {
			return 1
		}
		return 0.7
	case CategoryActivities:
		if c.BookingRequired {
			return 0.7
		}
		return 1
	default:
		return 0.8
	}
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b GeoPoint) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

// lowestPrice returns the smallest positive price, or 0 when none exist.
func lowestPrice(items []ScoredItem) float64 {
	lowest := 0.0
	for i := range items {
		p := items[i].Item.Price
		if p > 0 && (lowest == 0 || p < lowest) {
			lowest = p
		}
	}
	return lowest
}

// assignBadges walks the sorted list once.
func assignBadges(items []ScoredItem) {
	best := lowestPrice(items)
	for i := range items {
		item := &items[i]
		switch {
		case i == 0:
			item.Score.Badge = BadgeRecommended
		case best > 0 && item.Item.Price == best:
			item.Score.Badge = BadgeBestPrice
		case item.Score.RatingScore >= 0.9:
			item.Score.Badge = BadgeTopRated
		case item.Item.PartnerOrInternal():
			item.Score.Badge = BadgePartnerChoice
		default:
			item.Score.Badge = BadgeNone
		}
	}
}
