// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"strings"
	"time"
)

// Category is a travel item category.
type Category string

// Item categories.
const (
	CategoryHotels      Category = "hotels"
	CategoryFlights     Category = "flights"
	CategoryRestaurants Category = "restaurants"
	CategoryActivities  Category = "activities"
	CategoryTransfers   Category = "transfers"
)

// ScoredCategories are the categories run through the scorer. Transfers are
// passed through unscored.
var ScoredCategories = []Category{CategoryHotels, CategoryFlights, CategoryRestaurants, CategoryActivities}

// ProductType is the singular form used in analytics events ("hotel", "activity").
func (c Category) ProductType() string {
	s := string(c)
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

// Badge labels why an item stands out in a ranked list.
type Badge string

// Badges in assignment priority order.
const (
	BadgeNone          Badge = ""
	BadgeRecommended   Badge = "recommended"
	BadgeBestPrice     Badge = "best_price"
	BadgeTopRated      Badge = "top_rated"
	BadgePartnerChoice Badge = "partner_choice"
)

// SourceInternal marks items supplied by Tasarini partners directly.
const SourceInternal = "internal"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Candidate is the canonical item every source adapter produces.
// A zero Price means the item has no price.
type Candidate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Category Category `json:"category,omitempty"`
	Source   string   `json:"source,omitempty"`

	IsPartner bool    `json:"isPartner,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Currency  string  `json:"currency,omitempty"`

	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"reviewCount,omitempty"`

	Location *GeoPoint `json:"location,omitempty"`

	// Available is nil when the source does not say; nil counts as available.
	Available        *bool `json:"available,omitempty"`
	BookingAvailable bool  `json:"bookingAvailable,omitempty"`
	BookingRequired  bool  `json:"bookingRequired,omitempty"`

	// Category-specific attributes used by personalization.
	Type             string   `json:"type,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
	Cuisine          string   `json:"cuisine,omitempty"`
	PriceRange       string   `json:"priceRange,omitempty"`
	ActivityCategory string   `json:"activityCategory,omitempty"`
	Intensity        string   `json:"intensity,omitempty"`
	// Stops is nil when the source does not report a stop count.
	Stops *int `json:"stops,omitempty"`

	// Raw keeps the adapter payload for clients that render extra fields.
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// PartnerOrInternal reports whether the item earns the partner bonus.
func (c *Candidate) PartnerOrInternal() bool {
	return c.IsPartner || c.Source == SourceInternal
}

// IsAvailable treats a missing flag as available.
func (c *Candidate) IsAvailable() bool {
	return c.Available == nil || *c.Available
}

// TripContext is the read-only trip a ranking is computed for.
type TripContext struct {
	UserID      string    `json:"user_id,omitempty"`
	City        string    `json:"city" validate:"required"`
	Country     string    `json:"country,omitempty"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Travelers   int       `json:"travelers" validate:"gte=1,lte=50"`
	GroupType   string    `json:"group_type,omitempty"`
	DailyBudget float64   `json:"daily_budget" validate:"gte=0"`
	BudgetLevel string    `json:"budget_level,omitempty"`
	Currency    string    `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Preferences []string  `json:"preferences,omitempty"`
}

// RecommendationScore holds the component scores and the weighted total.
type RecommendationScore struct {
	BudgetScore       float64 `json:"budgetScore"`
	RatingScore       float64 `json:"ratingScore"`
	ProximityScore    float64 `json:"proximityScore"`
	AvailabilityScore float64 `json:"availabilityScore"`
	TotalScore        float64 `json:"totalScore"`
	Badge             Badge   `json:"badge,omitempty"`
}

// ScoredItem is a ranked candidate. Rank is 1-based.
type ScoredItem struct {
	Item  Candidate           `json:"item"`
	Score RecommendationScore `json:"score"`
	Rank  int                 `json:"rank"`
}

// PartnerOrInternal lets ScoredItem be reordered by A/B tests.
func (s ScoredItem) PartnerOrInternal() bool {
	return s.Item.PartnerOrInternal()
}

// Total returns the weighted total score.
func (s ScoredItem) Total() float64 {
	return s.Score.TotalScore
}

// Booking is one past reservation, as seen by the scorer.
type Booking struct {
	ID          string    `json:"id,omitempty"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"booking_type"`
	Destination string    `json:"destination,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserProfile is the scorer's per-user history.
type UserProfile struct {
	UserID              string       `json:"userId"`
	BudgetHistory       []float64    `json:"budgetHistory"`
	PreferredCategories []string     `json:"preferredCategories"`
	AverageRating       float64      `json:"averageRating"`
	BookingHistory      []string     `json:"bookingHistory"`
	LastPreferences     *TripContext `json:"lastPreferences,omitempty"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// HistoricalBudget is the mean of BudgetHistory, or fallback when empty.
func (p *UserProfile) HistoricalBudget(fallback float64) float64 {
	if len(p.BudgetHistory) == 0 {
		return fallback
	}
	sum := 0.0
	for _, b := range p.BudgetHistory {
		sum += b
	}
	return sum / float64(len(p.BudgetHistory))
}
