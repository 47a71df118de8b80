// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"time"

	"github.com/tomtom215/tasarini/internal/recommend"
)

// Season of the year, northern hemisphere.
type Season string

// Seasons.
const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// SeasonOf maps a date to its season: Dec-Feb winter, Mar-May spring,
// Jun-Aug summer, otherwise autumn.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// User segments.
const (
	SegmentNewUser             = "new_user"
	SegmentPremiumSpender      = "premium_spender"
	SegmentBudgetConscious     = "budget_conscious"
	SegmentFrequentTraveler    = "frequent_traveler"
	SegmentDestinationExplorer = "destination_explorer"
	SegmentFamilyFocused       = "family_focused"
)

// TravelStyleLuxury is the travel style that prefers direct flights.
const TravelStyleLuxury = "luxury"

// Budget preferences.
type Budget struct {
	Typical     float64 `json:"typical"`
	Currency    string  `json:"currency"`
	Flexibility string  `json:"flexibility"`
}

// Accommodation preferences.
type Accommodation struct {
	PreferredTypes     []string `json:"preferredTypes"`
	ImportantAmenities []string `json:"importantAmenities"`
	LocationPreference string   `json:"locationPreference"`
}

// Activities preferences.
type Activities struct {
	PreferredCategories []string `json:"preferredCategories"`
	IntensityLevel      string   `json:"intensityLevel"`
	CulturalInterest    int      `json:"culturalInterest"`
	AdventureLevel      int      `json:"adventureLevel"`
}

// Culinary preferences.
type Culinary struct {
	DietaryRestrictions  []string `json:"dietaryRestrictions"`
	CuisinePreferences   []string `json:"cuisinePreferences"`
	PriceRangePreference string   `json:"priceRangePreference"`
	Adventurous          bool     `json:"adventurous"`
}

// Travel preferences.
type Travel struct {
	PreferredTravelStyle string `json:"preferredTravelStyle"`
	PlanningStyle        string `json:"planningStyle"`
	GroupDynamics        string `json:"groupDynamics"`
}

// Preferences groups the explicit preference sections.
type Preferences struct {
	Budget        Budget        `json:"budget"`
	Accommodation Accommodation `json:"accommodation"`
	Activities    Activities    `json:"activities"`
	Culinary      Culinary      `json:"culinary"`
	Travel        Travel        `json:"travel"`
}

// BookingPatterns describes when a user books.
type BookingPatterns struct {
	AdvanceBookingDays    int      `json:"advanceBookingDays"`
	PreferredBookingTimes []string `json:"preferredBookingTimes"`
	LastMinuteBooker      bool     `json:"lastMinuteBooker"`
}

// SearchBehavior describes how a user searches.
type SearchBehavior struct {
	AverageSearchTime        int     `json:"averageSearchTime"`
	ComparisonsBeforeBooking int     `json:"comparisonsBeforeBooking"`
	PriceThreshold           float64 `json:"priceThreshold"`
}

// LoyaltyIndicators describes repeat behavior.
type LoyaltyIndicators struct {
	RepeatDestinations    []string `json:"repeatDestinations"`
	PreferredBrands       []string `json:"preferredBrands"`
	TrustsRecommendations bool     `json:"trustsRecommendations"`
}

// BehaviorProfile is observed rather than declared behavior.
type BehaviorProfile struct {
	BookingPatterns   BookingPatterns   `json:"bookingPatterns"`
	SearchBehavior    SearchBehavior    `json:"searchBehavior"`
	LoyaltyIndicators LoyaltyIndicators `json:"loyaltyIndicators"`
}

// ContextualData is the situational context attached to a profile.
type ContextualData struct {
	CurrentWeather       string   `json:"currentWeather,omitempty"`
	Seasonality          Season   `json:"seasonality"`
	LocalEvents          []string `json:"localEvents,omitempty"`
	TrendingDestinations []string `json:"trendingDestinations,omitempty"`
}

// UserProfile is the personalization view of a user.
type UserProfile struct {
	UserID          string          `json:"userId"`
	Preferences     Preferences     `json:"preferences"`
	BehaviorProfile BehaviorProfile `json:"behaviorProfile"`
	ContextualData  ContextualData  `json:"contextualData"`
	Segments        []string        `json:"segments"`
}

// HasSegment reports whether the profile carries segment.
func (p *UserProfile) HasSegment(segment string) bool {
	for _, s := range p.Segments {
		if s == segment {
			return true
		}
	}
	return false
}

func (p *UserProfile) clone() *UserProfile {
	c := *p
	c.Preferences.Accommodation.PreferredTypes = cloneStrings(p.Preferences.Accommodation.PreferredTypes)
	c.Preferences.Accommodation.ImportantAmenities = cloneStrings(p.Preferences.Accommodation.ImportantAmenities)
	c.Preferences.Activities.PreferredCategories = cloneStrings(p.Preferences.Activities.PreferredCategories)
	c.Preferences.Culinary.DietaryRestrictions = cloneStrings(p.Preferences.Culinary.DietaryRestrictions)
	c.Preferences.Culinary.CuisinePreferences = cloneStrings(p.Preferences.Culinary.CuisinePreferences)
	c.BehaviorProfile.BookingPatterns.PreferredBookingTimes = cloneStrings(p.BehaviorProfile.BookingPatterns.PreferredBookingTimes)
	c.BehaviorProfile.LoyaltyIndicators.RepeatDestinations = cloneStrings(p.BehaviorProfile.LoyaltyIndicators.RepeatDestinations)
	c.BehaviorProfile.LoyaltyIndicators.PreferredBrands = cloneStrings(p.BehaviorProfile.LoyaltyIndicators.PreferredBrands)
	c.ContextualData.LocalEvents = cloneStrings(p.ContextualData.LocalEvents)
	c.ContextualData.TrendingDestinations = cloneStrings(p.ContextualData.TrendingDestinations)
	c.Segments = cloneStrings(p.Segments)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// PreferencesDocument is the preferences endpoint payload. Absent sections
// are nil and get defaults.
type PreferencesDocument struct {
	UserID          string           `json:"user_id,omitempty"`
	Preferences     *Preferences     `json:"preferences,omitempty"`
	BehaviorProfile *BehaviorProfile `json:"behavior_profile,omitempty"`
	Segments        []string         `json:"segments,omitempty"`
	ContextualData  *ContextualData  `json:"contextual_data,omitempty"`
}

// Trip is the subset of a planned trip that feeds preference learning.
type Trip struct {
	DailyBudget        float64  `json:"daily_budget" validate:"gte=0"`
	AccommodationTypes []string `json:"accommodation_types,omitempty"`
	CuisineTypes       []string `json:"cuisine_types,omitempty"`
	ActivityCategories []string `json:"activity_categories,omitempty"`
	GroupType          string   `json:"group_type,omitempty"`
}

// Weather is an optional forecast attached to a personalization request.
type Weather struct {
	Current  string   `json:"current"`
	Forecast []string `json:"forecast,omitempty"`
}

// LocalEvent is an event happening at the destination.
type LocalEvent struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

// Context is the input to GetPersonalizedRecommendations. A nil Profile
// disables personalization.
type Context struct {
	Profile     *UserProfile           `json:"userProfile,omitempty"`
	Trip        *recommend.TripContext `json:"currentTrip,omitempty"`
	Weather     *Weather               `json:"weather,omitempty"`
	LocalEvents []LocalEvent           `json:"localEvents,omitempty"`
	TrendingNow []string               `json:"trendingNow,omitempty"`
}

// PersonalizedItem is a scored item annotated with its affinity score.
type PersonalizedItem struct {
	recommend.ScoredItem
	PersonalizedScore      float64  `json:"personalizedScore"`
	PersonalizationReasons []string `json:"personalizationReasons,omitempty"`
	IsPersonalized         bool     `json:"isPersonalized"`
}

// Suggestions are destination tips for a date range.
type Suggestions struct {
	WeatherTips        []string `json:"weatherTips"`
	LocalEvents        []string `json:"localEvents"`
	SeasonalActivities []string `json:"seasonalActivities"`
	PackingAdvice      []string `json:"packingAdvice"`
}
