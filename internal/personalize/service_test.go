// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/recommend"
)

var testNow = time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

type fakePrefs struct {
	mu      sync.Mutex
	doc     *PreferencesDocument
	getErr   error
	patchErr error
	gets     int
	patches []PreferencesDocument
}

func (f *fakePrefs) GetPreferences(context.Context) (*PreferencesDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *fakePrefs) PatchPreferences(_ context.Context, doc PreferencesDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patches = append(f.patches, doc)
	return nil
}

func (f *fakePrefs) set(fn func(*fakePrefs)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fakeBookings struct {
	bookings []recommend.Booking
	err      error
	since    []time.Time
}

func (f *fakeBookings) ListBookings(_ context.Context, since time.Time) ([]recommend.Booking, error) {
	f.since = append(f.since, since)
	if f.err != nil {
		return nil, f.err
	}
	var out []recommend.Booking
	for _, b := range f.bookings {
		if !b.CreatedAt.Before(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, prefs *fakePrefs, bookings BookingsAPI) *Service {
	t.Helper()
	store := cache.New(cache.DefaultConfig(), nil, zerolog.Nop())
	cfg := DefaultConfig()
	cfg.Clock = func() time.Time { return testNow }
	s, err := NewService(cfg, prefs, bookings, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestNewService_RequiresDependencies(t *testing.T) {
	store := cache.New(cache.DefaultConfig(), nil, zerolog.Nop())
	if _, err := NewService(DefaultConfig(), nil, nil, store, zerolog.Nop()); err == nil {
		t.Error("expected error without preferences API")
	}
	if _, err := NewService(DefaultConfig(), &fakePrefs{}, nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error without store")
	}
}

func TestGetUserProfile_DefaultsForEmptyDocument(t *testing.T) {
	prefs := &fakePrefs{doc: &PreferencesDocument{}}
	s := newTestService(t, prefs, nil)

	p, err := s.GetUserProfile(context.Background())
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if p.UserID != "current" {
		t.Errorf("UserID = %q, want current", p.UserID)
	}
	if !reflect.DeepEqual(p.Preferences, DefaultPreferences()) {
		t.Errorf("Preferences = %+v, want defaults", p.Preferences)
	}
	if p.BehaviorProfile.SearchBehavior.PriceThreshold != 150 {
		t.Errorf("PriceThreshold = %v, want 150", p.BehaviorProfile.SearchBehavior.PriceThreshold)
	}
	if p.ContextualData.Seasonality != SeasonSummer || p.ContextualData.CurrentWeather != "sunny" {
		t.Errorf("ContextualData = %+v", p.ContextualData)
	}
	if !reflect.DeepEqual(p.Segments, []string{SegmentNewUser}) {
		t.Errorf("Segments = %v, want [new_user]", p.Segments)
	}
}

func TestGetUserProfile_FillsPartialSections(t *testing.T) {
	prefs := &fakePrefs{doc: &PreferencesDocument{
		UserID: "u-42",
		Preferences: &Preferences{
			Budget: Budget{Typical: 300},
			Travel: Travel{PreferredTravelStyle: TravelStyleLuxury},
		},
		Segments: []string{"premium_spender", "premium_spender"},
	}}
	s := newTestService(t, prefs, nil)

	p, err := s.GetUserProfile(context.Background())
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if p.Preferences.Budget.Typical != 300 || p.Preferences.Budget.Currency != "EUR" {
		t.Errorf("Budget = %+v", p.Preferences.Budget)
	}
	if p.Preferences.Travel.PreferredTravelStyle != TravelStyleLuxury || p.Preferences.Travel.GroupDynamics != "couple" {
		t.Errorf("Travel = %+v", p.Preferences.Travel)
	}
	if !reflect.DeepEqual(p.Segments, []string{"premium_spender"}) {
		t.Errorf("Segments = %v", p.Segments)
	}
}

func TestGetUserProfile_EnrichesFromBookings(t *testing.T) {
	bookings := &fakeBookings{bookings: []recommend.Booking{
		{Amount: 200, Destination: "Paris", CreatedAt: testNow.AddDate(0, -2, 0)},
		{Amount: 400, Destination: "Rome", CreatedAt: testNow.AddDate(0, -5, 0)},
		{Amount: 0, Destination: "Paris", CreatedAt: testNow.AddDate(0, -6, 0)},
		{Amount: 900, Destination: "Oslo", CreatedAt: testNow.AddDate(-2, 0, 0)},
	}}
	s := newTestService(t, &fakePrefs{doc: &PreferencesDocument{}}, bookings)

	p, err := s.GetUserProfile(context.Background())
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if p.Preferences.Budget.Typical != 300 {
		t.Errorf("Typical = %v, want 300", p.Preferences.Budget.Typical)
	}
	if want := []string{"Paris", "Rome"}; !reflect.DeepEqual(p.BehaviorProfile.LoyaltyIndicators.RepeatDestinations, want) {
		t.Errorf("RepeatDestinations = %v, want %v", p.BehaviorProfile.LoyaltyIndicators.RepeatDestinations, want)
	}
	if len(bookings.since) != 1 || !bookings.since[0].Equal(testNow.Add(-365*24*time.Hour)) {
		t.Errorf("since = %v", bookings.since)
	}
}

func TestGetUserProfile_CachedAndDetached(t *testing.T) {
	prefs := &fakePrefs{doc: &PreferencesDocument{}}
	s := newTestService(t, prefs, nil)
	ctx := context.Background()

	first, err := s.GetUserProfile(ctx)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	first.Segments[0] = "mutated"

	second, err := s.GetUserProfile(ctx)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if prefs.gets != 1 {
		t.Errorf("upstream gets = %d, want 1", prefs.gets)
	}
	if second.Segments[0] != SegmentNewUser {
		t.Errorf("cached profile was mutated through a returned copy: %v", second.Segments)
	}

	s.InvalidateProfile(ctx)
	if _, err := s.GetUserProfile(ctx); err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if prefs.gets != 2 {
		t.Errorf("upstream gets after invalidate = %d, want 2", prefs.gets)
	}
}

func TestGetUserProfile_ErrorNotCached(t *testing.T) {
	prefs := &fakePrefs{getErr: errors.New("503")}
	s := newTestService(t, prefs, nil)

	if _, err := s.GetUserProfile(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	prefs.getErr = nil
	prefs.doc = &PreferencesDocument{}
	if _, err := s.GetUserProfile(context.Background()); err != nil {
		t.Fatalf("GetUserProfile after recovery: %v", err)
	}
}

func TestUpdatePreferencesFromTrip(t *testing.T) {
	prefs := &fakePrefs{doc: &PreferencesDocument{}}
	s := newTestService(t, prefs, nil)
	ctx := context.Background()

	err := s.UpdatePreferencesFromTrip(ctx, Trip{
		DailyBudget:        220,
		AccommodationTypes: []string{"apartment", "boutique"},
		CuisineTypes:       []string{"seafood"},
		ActivityCategories: []string{"nightlife", "food", "sports", "outdoors"},
		GroupType:          "family",
	})
	if err != nil {
		t.Fatalf("UpdatePreferencesFromTrip: %v", err)
	}

	p, err := s.GetUserProfile(ctx)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	// 0.7*120 + 0.3*220
	if got := p.Preferences.Budget.Typical; got < 149.999 || got > 150.001 {
		t.Errorf("Typical = %v, want 150", got)
	}
	if want := []string{"boutique", "hotel", "apartment"}; !reflect.DeepEqual(p.Preferences.Accommodation.PreferredTypes, want) {
		t.Errorf("PreferredTypes = %v, want %v", p.Preferences.Accommodation.PreferredTypes, want)
	}
	if want := []string{"local", "fusion", "seafood"}; !reflect.DeepEqual(p.Preferences.Culinary.CuisinePreferences, want) {
		t.Errorf("CuisinePreferences = %v, want %v", p.Preferences.Culinary.CuisinePreferences, want)
	}
	if want := []string{"outdoors", "culture", "nightlife", "food", "sports"}; !reflect.DeepEqual(p.Preferences.Activities.PreferredCategories, want) {
		t.Errorf("PreferredCategories = %v, want %v", p.Preferences.Activities.PreferredCategories, want)
	}
	if !p.HasSegment(SegmentFamilyFocused) {
		t.Errorf("Segments = %v, want family_focused", p.Segments)
	}
	if len(prefs.patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(prefs.patches))
	}
	if prefs.patches[0].Preferences == nil || prefs.patches[0].Preferences.Travel.GroupDynamics != "family" {
		t.Errorf("patched preferences = %+v", prefs.patches[0].Preferences)
	}
}

func TestUpdateUserSegments(t *testing.T) {
	recent := func(n int, distinct bool) []recommend.Booking {
		out := make([]recommend.Booking, n)
		for i := range out {
			dest := "Paris"
			if distinct {
				dest = string(rune('A' + i))
			}
			out[i] = recommend.Booking{Amount: 100, Destination: dest, CreatedAt: testNow.AddDate(0, 0, -10)}
		}
		return out
	}

	tests := []struct {
		name     string
		initial  []string
		amount   float64
		bookings []recommend.Booking
		want     []string
	}{
		{
			name:    "premium replaces budget conscious",
			initial: []string{SegmentNewUser, SegmentBudgetConscious},
			amount:  200,
			want:    []string{SegmentNewUser, SegmentPremiumSpender},
		},
		{
			name:    "budget conscious replaces premium",
			initial: []string{SegmentPremiumSpender},
			amount:  50,
			want:    []string{SegmentBudgetConscious},
		},
		{
			name:    "typical amount leaves segments alone",
			initial: []string{SegmentNewUser},
			amount:  120,
			want:    []string{SegmentNewUser},
		},
		{
			name:     "frequent traveler",
			initial:  []string{SegmentNewUser},
			amount:   120,
			bookings: recent(3, false),
			want:     []string{SegmentNewUser, SegmentFrequentTraveler},
		},
		{
			name:     "destination explorer",
			initial:  []string{SegmentNewUser},
			amount:   120,
			bookings: recent(5, true),
			want:     []string{SegmentNewUser, SegmentFrequentTraveler, SegmentDestinationExplorer},
		},
		{
			name:    "no duplicates",
			initial: []string{SegmentPremiumSpender},
			amount:  500,
			want:    []string{SegmentPremiumSpender},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &fakePrefs{doc: &PreferencesDocument{Segments: tt.initial}}
			bookings := &fakeBookings{}
			s := newTestService(t, prefs, bookings)
			ctx := context.Background()

			// Load the profile before bookings exist so the typical budget
			// stays at the 120 default.
			if _, err := s.GetUserProfile(ctx); err != nil {
				t.Fatalf("GetUserProfile: %v", err)
			}
			bookings.bookings = tt.bookings

			if err := s.UpdateUserSegments(ctx, recommend.Booking{Amount: tt.amount}); err != nil {
				t.Fatalf("UpdateUserSegments: %v", err)
			}
			p, err := s.GetUserProfile(ctx)
			if err != nil {
				t.Fatalf("GetUserProfile: %v", err)
			}
			if !reflect.DeepEqual(p.Segments, tt.want) {
				t.Errorf("Segments = %v, want %v", p.Segments, tt.want)
			}
		})
	}
}

func TestUpdateUserSegments_FamilyFocused(t *testing.T) {
	prefs := &fakePrefs{doc: &PreferencesDocument{
		Preferences: &Preferences{Travel: Travel{GroupDynamics: "family"}},
	}}
	s := newTestService(t, prefs, nil)

	if err := s.UpdateUserSegments(context.Background(), recommend.Booking{Amount: 120}); err != nil {
		t.Fatalf("UpdateUserSegments: %v", err)
	}
	p, _ := s.GetUserProfile(context.Background())
	if !p.HasSegment(SegmentFamilyFocused) {
		t.Errorf("Segments = %v, want family_focused", p.Segments)
	}
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.December, SeasonWinter},
		{time.January, SeasonWinter},
		{time.February, SeasonWinter},
		{time.March, SeasonSpring},
		{time.May, SeasonSpring},
		{time.June, SeasonSummer},
		{time.August, SeasonSummer},
		{time.September, SeasonAutumn},
		{time.November, SeasonAutumn},
	}
	for _, tt := range tests {
		if got := SeasonOf(time.Date(2026, tt.month, 10, 0, 0, 0, 0, time.UTC)); got != tt.want {
			t.Errorf("SeasonOf(%s) = %s, want %s", tt.month, got, tt.want)
		}
	}
}

func TestUpdateUserSegments_FailedPatchDropsCachedProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	prefs := &fakePrefs{doc: &PreferencesDocument{UserID: "u-1"}, patchErr: errors.New("platform down")}
	s := newTestService(t, prefs, nil)

	if _, err := s.GetUserProfile(ctx); err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if err := s.UpdateUserSegments(ctx, recommend.Booking{ID: "b-1", Amount: 5000}); err == nil {
		t.Fatal("expected patch error")
	}

	prefs.set(func(f *fakePrefs) {
		f.patchErr = nil
		f.doc = &PreferencesDocument{UserID: "u-1", Segments: []string{SegmentFrequentTraveler}}
	})
	p, err := s.GetUserProfile(ctx)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if !p.HasSegment(SegmentFrequentTraveler) {
		t.Errorf("segments = %v, want the platform's document after a failed patch", p.Segments)
	}
	if prefs.gets != 2 {
		t.Errorf("preference fetches = %d, want 2", prefs.gets)
	}
}
