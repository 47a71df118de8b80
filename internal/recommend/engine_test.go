// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
)

const tolerance = 1e-9

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func newTestEngine(t *testing.T, cfg *Config, history BookingHistory) *Engine {
	t.Helper()
	store := cache.New(cache.DefaultConfig(), nil, zerolog.Nop())
	e, err := NewEngine(cfg, store, history, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func testTrip(budget float64) TripContext {
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	return TripContext{
		UserID:      "user-1",
		City:        "Lisbon",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 5),
		Travelers:   2,
		DailyBudget: budget,
	}
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BudgetWeight = 0.9
	store := cache.New(cache.DefaultConfig(), nil, zerolog.Nop())
	if _, err := NewEngine(cfg, store, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}
	if _, err := NewEngine(DefaultConfig(), nil, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestScoreRecommendations_WorkedExample(t *testing.T) {
	t.Parallel()

	hotel := Candidate{ID: "h1", Price: 100, Rating: 5, ReviewCount: 200}

	e := newTestEngine(t, nil, nil)
	got, err := e.ScoreRecommendations(context.Background(), []Candidate{hotel}, CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	s := got[0].Score
	if s.BudgetScore != 1 || s.RatingScore != 1 || s.ProximityScore != 0.5 || s.AvailabilityScore != 1 {
		t.Errorf("components = %+v", s)
	}
	// 0.4 + 0.3 + 0.2*0.5 + 0.1
	if !approx(s.TotalScore, 0.9, tolerance) {
		t.Errorf("TotalScore = %v, want 0.9", s.TotalScore)
	}

	hotel.IsPartner = true
	e = newTestEngine(t, nil, nil)
	got, err = e.ScoreRecommendations(context.Background(), []Candidate{hotel}, CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	if !approx(got[0].Score.TotalScore, 0.95, tolerance) {
		t.Errorf("partner TotalScore = %v, want 0.95", got[0].Score.TotalScore)
	}
}

func TestScoreRecommendations_TotalClampedToOne(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.PartnerBonus = 0.5
	e := newTestEngine(t, cfg, nil)

	item := Candidate{ID: "x", Price: 100, Rating: 5, ReviewCount: 100, Source: SourceInternal}
	got, err := e.ScoreRecommendations(context.Background(), []Candidate{item}, CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	if got[0].Score.TotalScore != 1 {
		t.Errorf("TotalScore = %v, want 1", got[0].Score.TotalScore)
	}
}

// With a budget of 100 and no location the totals are
// A 0.90, C 0.87, B 0.84 (cheapest), D 0.79 (partner), E 0.40.
func badgeCandidates() []Candidate {
	return []Candidate{
		{ID: "A", Price: 100, Rating: 5, ReviewCount: 100},
		{ID: "B", Price: 60, Rating: 4, ReviewCount: 100},
		{ID: "C", Price: 110, Rating: 4.5},
		{ID: "D", Price: 130, Rating: 3, IsPartner: true},
		{ID: "E"},
	}
}

func TestScoreRecommendations_TopNAndRanks(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	got, err := e.ScoreRecommendations(context.Background(), badgeCandidates(), CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	wantIDs := []string{"A", "C", "B"}
	for i, item := range got {
		if item.Item.ID != wantIDs[i] {
			t.Errorf("position %d = %s, want %s", i, item.Item.ID, wantIDs[i])
		}
		if item.Rank != i+1 {
			t.Errorf("position %d rank = %d, want %d", i, item.Rank, i+1)
		}
		if i > 0 && item.Score.TotalScore > got[i-1].Score.TotalScore {
			t.Errorf("not sorted descending at %d", i)
		}
	}
}

func TestScoreRecommendations_Badges(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TopN = 5
	e := newTestEngine(t, cfg, nil)

	got, err := e.ScoreRecommendations(context.Background(), badgeCandidates(), CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}

	want := map[string]Badge{
		"A": BadgeRecommended,
		"C": BadgeTopRated,
		"B": BadgeBestPrice,
		"D": BadgePartnerChoice,
		"E": BadgeNone,
	}
	for _, item := range got {
		if item.Score.Badge != want[item.Item.ID] {
			t.Errorf("%s badge = %q, want %q", item.Item.ID, item.Score.Badge, want[item.Item.ID])
		}
	}
}

func TestScoreRecommendations_StableOnTies(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TopN = 4
	e := newTestEngine(t, cfg, nil)

	items := []Candidate{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	got, err := e.ScoreRecommendations(context.Background(), items, CategoryActivities, testTrip(0), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	for i, item := range got {
		if item.Item.ID != items[i].ID {
			t.Errorf("position %d = %s, want %s", i, item.Item.ID, items[i].ID)
		}
	}
}

func TestScoreRecommendations_EmptyAndCancelled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	got, err := e.ScoreRecommendations(context.Background(), nil, CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.ScoreRecommendations(ctx, []Candidate{{ID: "x"}}, CategoryHotels, testTrip(100), nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestScoreRecommendations_UsesHistoricalBudget(t *testing.T) {
	t.Parallel()

	history := BookingHistoryFunc(func(context.Context, string) ([]Booking, error) {
		return []Booking{{Amount: 300, Destination: "Paris"}, {Amount: 300, Destination: "Rome"}}, nil
	})
	e := newTestEngine(t, nil, history)

	// Target is (100 + 300) / 2 = 200.
	got, err := e.ScoreRecommendations(context.Background(), []Candidate{{ID: "x", Price: 200}}, CategoryHotels, testTrip(100), nil)
	if err != nil {
		t.Fatalf("ScoreRecommendations: %v", err)
	}
	if got[0].Score.BudgetScore != 1 {
		t.Errorf("BudgetScore = %v, want 1", got[0].Score.BudgetScore)
	}
}

func TestBudgetScore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	tests := []struct {
		name   string
		price  float64
		budget float64
		want   float64
	}{
		{"at target", 100, 100, 1},
		{"window low side", 81, 100, 1},
		{"window high side", 119, 100, 1},
		{"below window", 50, 100, 0.7 + 50.0/80.0*0.3},
		{"above window", 200, 100, 0.2},
		{"far above window", 300, 100, 0},
		{"no price", 0, 100, 0.5},
		{"no budget", 100, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.budgetScore(tt.price, tt.budget, tt.budget)
			if !approx(got, tt.want, tolerance) {
				t.Errorf("budgetScore(%v, %v) = %v, want %v", tt.price, tt.budget, got, tt.want)
			}
		})
	}
}

func TestRatingScore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	tests := []struct {
		rating  float64
		reviews int
		want    float64
	}{
		{5, 200, 1},
		{4, 0, 0.8},
		{4, 50, 0.85},
		{4, 100, 0.9},
		{0, 0, 0},
		{7, 0, 1},
		{-1, -5, 0},
	}
	for _, tt := range tests {
		got := e.ratingScore(tt.rating, tt.reviews)
		if !approx(got, tt.want, tolerance) {
			t.Errorf("ratingScore(%v, %d) = %v, want %v", tt.rating, tt.reviews, got, tt.want)
		}
	}
}

func TestProximityScore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	lisbon := &GeoPoint{Lat: 38.7223, Lng: -9.1393}

	if got := e.proximityScore(nil, lisbon); got != 0.5 {
		t.Errorf("nil user = %v, want 0.5", got)
	}
	if got := e.proximityScore(lisbon, nil); got != 0.5 {
		t.Errorf("nil item = %v, want 0.5", got)
	}
	if got := e.proximityScore(lisbon, &GeoPoint{Lat: 0, Lng: -9.1}); got != 0.5 {
		t.Errorf("zero coordinate = %v, want 0.5", got)
	}
	if got := e.proximityScore(lisbon, lisbon); got != 1 {
		t.Errorf("same point = %v, want 1", got)
	}

	porto := &GeoPoint{Lat: 41.1579, Lng: -8.6291}
	if got := e.proximityScore(lisbon, porto); got != 0 {
		t.Errorf("Lisbon to Porto = %v, want 0", got)
	}

	// 0.2 degrees of latitude is about 22.24 km.
	north := &GeoPoint{Lat: lisbon.Lat + 0.2, Lng: lisbon.Lng}
	want := 1 - (HaversineKm(*lisbon, *north)-5)/45
	if got := e.proximityScore(lisbon, north); !approx(got, want, tolerance) || !approx(got, 0.617, 0.01) {
		t.Errorf("22 km = %v, want %v", got, want)
	}
}

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	paris := GeoPoint{Lat: 48.8566, Lng: 2.3522}
	london := GeoPoint{Lat: 51.5074, Lng: -0.1278}
	if d := HaversineKm(paris, london); !approx(d, 343.5, 2) {
		t.Errorf("Paris-London = %v km, want about 343.5", d)
	}
	if d := HaversineKm(paris, paris); d != 0 {
		t.Errorf("same point = %v, want 0", d)
	}
}

func TestAvailabilityScore(t *testing.T) {
	t.Parallel()

	no := false
	yes := true
	tests := []struct {
		name     string
		c        Candidate
		category Category
		want     float64
	}{
		{"hotel unknown", Candidate{}, CategoryHotels, 1},
		{"hotel available", Candidate{Available: &yes}, CategoryHotels, 1},
		{"hotel full", Candidate{Available: &no}, CategoryHotels, 0.3},
		{"flight full", Candidate{Available: &no}, CategoryFlights, 0.2},
		{"restaurant bookable", Candidate{BookingAvailable: true}, CategoryRestaurants, 1},
		{"restaurant walk-in", Candidate{}, CategoryRestaurants, 0.7},
		{"activity booking required", Candidate{BookingRequired: true}, CategoryActivities, 0.7},
		{"activity open", Candidate{}, CategoryActivities, 1},
		{"other", Candidate{}, CategoryTransfers, 0.8},
	}
	for _, tt := range tests {
		if got := availabilityScore(&tt.c, tt.category); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCategoryProductType(t *testing.T) {
	t.Parallel()

	if got := CategoryHotels.ProductType(); got != "hotel" {
		t.Errorf("ProductType = %q, want hotel", got)
	}
	if got := CategoryActivities.ProductType(); got != "activity" {
		t.Errorf("ProductType = %q, want activity", got)
	}
}
