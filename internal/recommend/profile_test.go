// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/tasarini/internal/cache"
)

func TestProfile_SeedsFromTrip(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	p := e.Profile(context.Background(), "", testTrip(150))

	if p.UserID != anonymousUser {
		t.Errorf("UserID = %q, want %q", p.UserID, anonymousUser)
	}
	if !reflect.DeepEqual(p.BudgetHistory, []float64{150}) {
		t.Errorf("BudgetHistory = %v, want [150]", p.BudgetHistory)
	}
	if p.AverageRating != 4 {
		t.Errorf("AverageRating = %v, want 4", p.AverageRating)
	}
	if p.LastPreferences == nil || p.LastPreferences.City != "Lisbon" {
		t.Errorf("LastPreferences = %+v", p.LastPreferences)
	}
	if got := p.HistoricalBudget(0); got != 150 {
		t.Errorf("HistoricalBudget = %v, want 150", got)
	}
}

func TestProfile_BackfillsFromBookings(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	history := BookingHistoryFunc(func(_ context.Context, userID string) ([]Booking, error) {
		calls.Add(1)
		if userID != "user-1" {
			t.Errorf("userID = %q", userID)
		}
		return []Booking{
			{Amount: 200, Destination: "Paris"},
			{Amount: 0, Destination: "Rome"},
			{Amount: 400, Destination: "Paris"},
			{Amount: 90},
			{Amount: 150, Destination: "Lisbon"},
		}, nil
	})
	e := newTestEngine(t, nil, history)

	p := e.Profile(context.Background(), "user-1", testTrip(100))
	if !reflect.DeepEqual(p.BudgetHistory, []float64{200, 400, 90, 150}) {
		t.Errorf("BudgetHistory = %v", p.BudgetHistory)
	}
	if want := []string{"Paris", "Rome", "unknown"}; !reflect.DeepEqual(p.PreferredCategories, want) {
		t.Errorf("PreferredCategories = %v, want %v", p.PreferredCategories, want)
	}
	if len(p.BookingHistory) != 5 {
		t.Errorf("BookingHistory = %v", p.BookingHistory)
	}

	// Served from the cache the second time.
	_ = e.Profile(context.Background(), "user-1", testTrip(100))
	if got := calls.Load(); got != 1 {
		t.Errorf("history calls = %d, want 1", got)
	}
}

func TestProfile_SourceFailureKeepsSeed(t *testing.T) {
	t.Parallel()

	history := BookingHistoryFunc(func(context.Context, string) ([]Booking, error) {
		return nil, errors.New("upstream down")
	})
	e := newTestEngine(t, nil, history)

	p := e.Profile(context.Background(), "user-1", testTrip(80))
	if !reflect.DeepEqual(p.BudgetHistory, []float64{80}) {
		t.Errorf("BudgetHistory = %v, want [80]", p.BudgetHistory)
	}
	if _, ok := cache.GetAs[UserProfile](context.Background(), e.store, ProfileKey("user-1")); !ok {
		t.Error("seed profile was not cached")
	}
}

func TestProfile_SlowHistoryDoesNotBlockOtherUsers(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	history := BookingHistoryFunc(func(_ context.Context, userID string) ([]Booking, error) {
		if userID == "slow" {
			close(entered)
			<-release
		}
		return nil, nil
	})
	e := newTestEngine(t, nil, history)

	slowDone := make(chan *UserProfile, 1)
	go func() { slowDone <- e.Profile(context.Background(), "slow", testTrip(100)) }()
	<-entered

	fastDone := make(chan *UserProfile, 1)
	go func() { fastDone <- e.Profile(context.Background(), "fast", testTrip(100)) }()
	select {
	case p := <-fastDone:
		if p.UserID != "fast" {
			t.Errorf("UserID = %q", p.UserID)
		}
	case <-time.After(time.Second):
		t.Fatal("profile for another user blocked behind a slow history lookup")
	}

	close(release)
	if p := <-slowDone; p.UserID != "slow" {
		t.Errorf("UserID = %q", p.UserID)
	}
}

func TestUpdateUserProfile_MissingProfileIsNoop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	e.UpdateUserProfile(context.Background(), "ghost", Booking{Amount: 100, Type: "hotel"})

	if e.store.Has(context.Background(), ProfileKey("ghost")) {
		t.Error("profile created by UpdateUserProfile")
	}
}

func TestUpdateUserProfile_AppendsAndTrims(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	ctx := context.Background()
	_ = e.Profile(ctx, "user-1", testTrip(100))

	for i := 1; i <= 11; i++ {
		bookingType := "hotel"
		if i > 8 {
			bookingType = "flight"
		}
		e.UpdateUserProfile(ctx, "user-1", Booking{Amount: float64(i), Type: bookingType})
	}
	e.UpdateUserProfile(ctx, "user-1", Booking{Amount: 0, Type: "flight"})

	p, ok := cache.GetAs[UserProfile](ctx, e.store, ProfileKey("user-1"))
	if !ok {
		t.Fatal("profile missing")
	}
	if want := []float64{2, 3, 4, 5, 6, 7, 8, 9, 10, 11}; !reflect.DeepEqual(p.BudgetHistory, want) {
		t.Errorf("BudgetHistory = %v, want %v", p.BudgetHistory, want)
	}
	if len(p.BookingHistory) != 10 {
		t.Fatalf("BookingHistory len = %d, want 10", len(p.BookingHistory))
	}
	// Last ten types: six hotel, four flight.
	if want := []string{"hotel", "flight"}; !reflect.DeepEqual(p.PreferredCategories, want) {
		t.Errorf("PreferredCategories = %v, want %v", p.PreferredCategories, want)
	}
}

func TestTopCategories_TiesKeepFirstSeen(t *testing.T) {
	t.Parallel()

	got := topCategories([]string{"b", "a", "a", "b", "c", "d", "d"}, 3)
	if want := []string{"b", "a", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("topCategories = %v, want %v", got, want)
	}
	if got := topCategories(nil, 3); len(got) != 0 {
		t.Errorf("topCategories(nil) = %v", got)
	}
}
