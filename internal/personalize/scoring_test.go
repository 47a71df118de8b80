// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/recommend"
)

func scored(items ...recommend.Candidate) []recommend.ScoredItem {
	out := make([]recommend.ScoredItem, len(items))
	for i, c := range items {
		out[i] = recommend.ScoredItem{Item: c, Rank: i + 1}
	}
	return out
}

func ids(items []PersonalizedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Item.ID
	}
	return out
}

func profileIn(season Season) *UserProfile {
	return &UserProfile{
		UserID:         "u1",
		Preferences:    DefaultPreferences(),
		ContextualData: ContextualData{Seasonality: season},
	}
}

func TestPersonalized_NoProfileKeepsOrder(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	items := scored(recommend.Candidate{ID: "a"}, recommend.Candidate{ID: "b", Type: "hotel"})

	got := s.GetPersonalizedRecommendations(context.Background(), items, recommend.CategoryHotels, Context{})
	if !reflect.DeepEqual(ids(got), []string{"a", "b"}) {
		t.Errorf("order = %v", ids(got))
	}
	for _, it := range got {
		if it.PersonalizedScore != 0 || it.IsPersonalized || it.PersonalizationReasons != nil {
			t.Errorf("%s annotated without profile: %+v", it.Item.ID, it)
		}
	}
}

func TestPersonalized_Hotels(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	items := scored(
		recommend.Candidate{ID: "plain", Type: "hostel"},
		recommend.Candidate{ID: "amenities", Type: "hostel", Amenities: []string{"wifi", "pool", "gym"}},
		recommend.Candidate{ID: "full", Type: "boutique", Amenities: []string{"wifi", "breakfast", "pool"}},
	)

	got := s.GetPersonalizedRecommendations(context.Background(), items, recommend.CategoryHotels,
		Context{Profile: profileIn(SeasonWinter)})

	if want := []string{"full", "amenities", "plain"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	// 0.3 + 0.2 + 0.05 winter bonus
	if !approx(got[0].PersonalizedScore, 0.55) || !got[0].IsPersonalized {
		t.Errorf("full = %v, personalized %v", got[0].PersonalizedScore, got[0].IsPersonalized)
	}
	// 0.2 * 2/3 + 0.05
	if !approx(got[1].PersonalizedScore, 0.2*2/3+0.05) || got[1].IsPersonalized {
		t.Errorf("amenities = %v", got[1].PersonalizedScore)
	}
	if len(got[0].PersonalizationReasons) != 2 {
		t.Errorf("reasons = %v", got[0].PersonalizationReasons)
	}
	if got[0].Rank != 3 {
		t.Errorf("scored rank not preserved: %d", got[0].Rank)
	}
}

func TestPersonalized_Restaurants(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	items := scored(
		recommend.Candidate{ID: "price", Cuisine: "thai", PriceRange: "mid"},
		recommend.Candidate{ID: "both", Cuisine: "local", PriceRange: "mid"},
		recommend.Candidate{ID: "cuisine", Cuisine: "fusion", PriceRange: "high"},
	)

	got := s.GetPersonalizedRecommendations(context.Background(), items, recommend.CategoryRestaurants,
		Context{Profile: profileIn(SeasonSpring)})

	if want := []string{"both", "cuisine", "price"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if !approx(got[0].PersonalizedScore, 0.7) {
		t.Errorf("both = %v, want 0.7", got[0].PersonalizedScore)
	}
	if !approx(got[2].PersonalizedScore, 0.3) {
		t.Errorf("price = %v, want 0.3", got[2].PersonalizedScore)
	}
}

func TestPersonalized_ActivitiesSummerBonus(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	items := scored(
		recommend.Candidate{ID: "other", ActivityCategory: "shopping", Intensity: "intense"},
		recommend.Candidate{ID: "match", ActivityCategory: "culture", Intensity: "moderate"},
	)

	got := s.GetPersonalizedRecommendations(context.Background(), items, recommend.CategoryActivities,
		Context{Profile: profileIn(SeasonSummer)})

	if got[0].Item.ID != "match" || !approx(got[0].PersonalizedScore, 0.8) {
		t.Errorf("match = %s %v, want 0.8", got[0].Item.ID, got[0].PersonalizedScore)
	}
	if !approx(got[1].PersonalizedScore, 0.1) {
		t.Errorf("other = %v, want summer bonus 0.1", got[1].PersonalizedScore)
	}
}

func TestPersonalized_Flights(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	zero, one := 0, 1
	direct := recommend.Candidate{ID: "direct", Stops: &zero}
	stopover := recommend.Candidate{ID: "stopover", Stops: &one}

	comfort := profileIn(SeasonAutumn)
	got := s.GetPersonalizedRecommendations(context.Background(), scored(direct, stopover), recommend.CategoryFlights,
		Context{Profile: comfort})
	if got[0].Item.ID != "stopover" || !approx(got[0].PersonalizedScore, 0.3) {
		t.Errorf("comfort: %s %v", got[0].Item.ID, got[0].PersonalizedScore)
	}

	luxury := profileIn(SeasonAutumn)
	luxury.Preferences.Travel.PreferredTravelStyle = TravelStyleLuxury
	got = s.GetPersonalizedRecommendations(context.Background(), scored(stopover, direct), recommend.CategoryFlights,
		Context{Profile: luxury})
	if got[0].Item.ID != "direct" || !approx(got[0].PersonalizedScore, 0.5) || got[0].IsPersonalized {
		t.Errorf("luxury: %s %v %v", got[0].Item.ID, got[0].PersonalizedScore, got[0].IsPersonalized)
	}
}

func TestPersonalized_FlightWithoutStopCount(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	zero := 0
	unknown := recommend.Candidate{ID: "unknown"}
	direct := recommend.Candidate{ID: "direct", Stops: &zero}

	luxury := profileIn(SeasonAutumn)
	luxury.Preferences.Travel.PreferredTravelStyle = TravelStyleLuxury
	got := s.GetPersonalizedRecommendations(context.Background(), scored(unknown, direct), recommend.CategoryFlights,
		Context{Profile: luxury})
	if got[0].Item.ID != "direct" {
		t.Errorf("first = %s, want direct", got[0].Item.ID)
	}
	if got[1].Item.ID != "unknown" || !approx(got[1].PersonalizedScore, 0) {
		t.Errorf("unknown stops scored %v, want 0", got[1].PersonalizedScore)
	}
}

func TestPersonalized_StableOnTies(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	items := scored(recommend.Candidate{ID: "1"}, recommend.Candidate{ID: "2"}, recommend.Candidate{ID: "3"})

	got := s.GetPersonalizedRecommendations(context.Background(), items, recommend.CategoryRestaurants,
		Context{Profile: profileIn(SeasonSpring)})
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3"}) {
		t.Errorf("order = %v", ids(got))
	}
}

func TestPersonalized_SeasonFallsBackToTrip(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	p := profileIn("")
	trip := &recommend.TripContext{StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}

	got := s.GetPersonalizedRecommendations(context.Background(), scored(recommend.Candidate{ID: "h"}), recommend.CategoryHotels,
		Context{Profile: p, Trip: trip})
	if !approx(got[0].PersonalizedScore, 0.05) {
		t.Errorf("score = %v, want winter bonus 0.05", got[0].PersonalizedScore)
	}
}

func TestGetContextualSuggestions(t *testing.T) {
	s := newTestService(t, &fakePrefs{}, nil)
	start := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)

	got := s.GetContextualSuggestions(context.Background(), "Vienna", start, start.AddDate(0, 0, 4))
	if !reflect.DeepEqual(got.WeatherTips, []string{"Pack light clothing"}) {
		t.Errorf("WeatherTips = %v", got.WeatherTips)
	}
	if !reflect.DeepEqual(got.SeasonalActivities, []string{"Christmas markets in Vienna", "Snow sports"}) {
		t.Errorf("SeasonalActivities = %v", got.SeasonalActivities)
	}
	if !reflect.DeepEqual(got.LocalEvents, []string{"Cultural events in Vienna"}) {
		t.Errorf("LocalEvents = %v", got.LocalEvents)
	}
}

func TestGetContextualSuggestions_CustomLookups(t *testing.T) {
	store := cache.New(cache.DefaultConfig(), nil, zerolog.Nop())
	s, err := NewService(DefaultConfig(), &fakePrefs{}, nil, store, zerolog.Nop(),
		WithWeather(func(context.Context, string, time.Time) (string, error) { return WeatherRainy, nil }),
		WithEvents(func(context.Context, string, time.Time, time.Time) ([]LocalEvent, error) {
			return nil, errors.New("events down")
		}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got := s.GetContextualSuggestions(context.Background(), "Bergen", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	if !reflect.DeepEqual(got.PackingAdvice, []string{"Waterproof coat", "Waterproof shoes"}) {
		t.Errorf("PackingAdvice = %v", got.PackingAdvice)
	}
	if len(got.LocalEvents) != 0 {
		t.Errorf("LocalEvents = %v, want empty", got.LocalEvents)
	}
	if !reflect.DeepEqual(got.SeasonalActivities, []string{"Garden visits", "Easy hikes"}) {
		t.Errorf("SeasonalActivities = %v", got.SeasonalActivities)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
