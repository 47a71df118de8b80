// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/recommend"
)

func TestPopularLoader(t *testing.T) {
	f := newFixture(t, nil, "session_1_b")
	hotelSrc := &fakeSource{name: "hotels-api", category: recommend.CategoryHotels, items: hotels()}
	flightSrc := &fakeSource{name: "flights-api", category: recommend.CategoryFlights, err: errors.New("boom")}
	o := f.orchestrator(t, DefaultConfig(), hotelSrc, flightSrc)
	o.now = func() time.Time { return time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC) }

	data, err := o.PopularLoader()(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	snap, ok := data.(PopularSnapshot)
	if !ok {
		t.Fatalf("loader returned %T", data)
	}
	if snap.Trip.City != "Paris" || snap.Trip.Travelers != 2 {
		t.Errorf("trip = %+v", snap.Trip)
	}
	wantStart := time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC)
	if !snap.Trip.StartDate.Equal(wantStart) || !snap.Trip.EndDate.Equal(wantStart.AddDate(0, 0, 3)) {
		t.Errorf("dates = %s..%s", snap.Trip.StartDate, snap.Trip.EndDate)
	}
	if len(snap.Items[recommend.CategoryHotels]) == 0 {
		t.Error("hotels should be scored")
	}
	if len(snap.Failures) != 1 {
		t.Errorf("failures = %+v", snap.Failures)
	}
	// One performance event per source, no product views.
	if got := len(f.tracker.Events()) + f.tracker.Buffered(); got != 2 {
		t.Errorf("preload tracked %d events, want 2", got)
	}
}

func TestPopularLoader_AllSourcesFail(t *testing.T) {
	f := newFixture(t, nil, "session_1_b")
	src := &fakeSource{name: "hotels-api", category: recommend.CategoryHotels, err: errors.New("down")}
	o := f.orchestrator(t, DefaultConfig(), src)

	if _, err := o.PopularLoader()(context.Background(), "Rome"); err == nil {
		t.Fatal("expected an error when every source fails")
	}

	if n := f.store.PreloadPopular(context.Background(), o.PopularLoader()); n != 0 {
		t.Errorf("preloaded = %d, want 0", n)
	}
	if f.store.Has(context.Background(), cache.PopularKey("Rome"), cache.Persistent()) {
		t.Error("failed destination should not be cached")
	}
}
