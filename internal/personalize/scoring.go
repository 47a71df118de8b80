// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/tasarini/internal/metrics"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// PersonalizedThreshold is the score above which an item counts as personalized.
const PersonalizedThreshold = 0.5

// GetPersonalizedRecommendations annotates items with an affinity score for
// the profile in pctx and re-ranks them by it, stable on ties.
//
// Without a profile the items are returned unannotated in their input order.
func (s *Service) GetPersonalizedRecommendations(ctx context.Context, items []recommend.ScoredItem, category recommend.Category, pctx Context) []PersonalizedItem {
	out := make([]PersonalizedItem, len(items))
	for i := range items {
		out[i].ScoredItem = items[i]
	}

	if pctx.Profile == nil {
		metrics.RecordPersonalization(false)
		return out
	}

	season := pctx.Profile.ContextualData.Seasonality
	if season == "" {
		if pctx.Trip != nil && !pctx.Trip.StartDate.IsZero() {
			season = SeasonOf(pctx.Trip.StartDate)
		} else {
			season = SeasonOf(s.now())
		}
	}

	personalized := 0
	for i := range out {
		score, reasons := scoreItem(&out[i].Item, category, pctx.Profile)
		score = math.Min(score+seasonalBonus(category, season), 1)

		out[i].PersonalizedScore = score
		out[i].PersonalizationReasons = reasons
		out[i].IsPersonalized = score > PersonalizedThreshold
		if out[i].IsPersonalized {
			personalized++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PersonalizedScore > out[j].PersonalizedScore
	})

	metrics.RecordPersonalization(true)
	s.logger.Debug().
		Str("category", string(category)).
		Int("items", len(out)).
		Int("personalized", personalized).
		Str("season", string(season)).
		Msg("Applied personalization")

	return out
}

func scoreItem(c *recommend.Candidate, category recommend.Category, p *UserProfile) (float64, []string) {
	var reasons []string
	score := 0.0

	switch category {
	case recommend.CategoryHotels:
		acc := p.Preferences.Accommodation
		if contains(acc.PreferredTypes, c.Type) {
			score += 0.3
			reasons = append(reasons, "Matches your preferred accommodation type")
		}
		if matched := countMatches(acc.ImportantAmenities, c.Amenities); matched > 0 {
			score += 0.2 * float64(matched) / float64(len(acc.ImportantAmenities))
			reasons = append(reasons, fmt.Sprintf("Includes %d amenities that matter to you", matched))
		}

	case recommend.CategoryRestaurants:
		cul := p.Preferences.Culinary
		if contains(cul.CuisinePreferences, c.Cuisine) {
			score += 0.4
			reasons = append(reasons, fmt.Sprintf("%s cuisine you enjoy", c.Cuisine))
		}
		if c.PriceRange != "" && c.PriceRange == cul.PriceRangePreference {
			score += 0.3
			reasons = append(reasons, "Within your usual price range")
		}

	case recommend.CategoryActivities:
		act := p.Preferences.Activities
		if contains(act.PreferredCategories, c.ActivityCategory) {
			score += 0.4
			reasons = append(reasons, fmt.Sprintf("%s is one of your interests", c.ActivityCategory))
		}
		if c.Intensity != "" && c.Intensity == act.IntensityLevel {
			score += 0.3
			reasons = append(reasons, "Activity level that suits you")
		}

	case recommend.CategoryFlights:
		prefersDirect := p.Preferences.Travel.PreferredTravelStyle == TravelStyleLuxury
		switch {
		case c.Stops == nil:
		case prefersDirect && *c.Stops == 0:
			score += 0.5
			reasons = append(reasons, "Direct flight, as you prefer")
		case !prefersDirect && *c.Stops > 0:
			score += 0.3
			reasons = append(reasons, "Good value with a stopover")
		}
	}

	return math.Min(score, 1), reasons
}

// seasonalBonus favors outdoor activities in summer and accommodation in winter.
func seasonalBonus(category recommend.Category, season Season) float64 {
	switch {
	case season == SeasonSummer && category == recommend.CategoryActivities:
		return 0.1
	case season == SeasonWinter && category == recommend.CategoryHotels:
		return 0.05
	default:
		return 0
	}
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// countMatches counts the wanted values present in have.
func countMatches(wanted, have []string) int {
	if len(wanted) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	n := 0
	for _, w := range wanted {
		if _, ok := set[w]; ok {
			n++
		}
	}
	return n
}
