// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPreloadPopular(t *testing.T) {
	ctx := context.Background()
	p := newBadger(t)
	s, clock := newTestStore(t, 50, p)

	loader := func(_ context.Context, dest string) (interface{}, error) {
		if dest == "Vienna" {
			return nil, errors.New("no data")
		}
		return map[string]interface{}{"destination": dest, "preloaded": true}, nil
	}

	if n := s.PreloadPopular(ctx, loader); n != 9 {
		t.Errorf("loaded = %d, want 9", n)
	}
	if !s.Has(ctx, "popular_paris", Persistent()) {
		t.Error("popular_paris should be cached")
	}
	if s.Has(ctx, "popular_vienna", Persistent()) {
		t.Error("failed destination should not be cached")
	}

	keys, err := p.Keys(ctx, "travel_cache_popular_")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 9 {
		t.Errorf("durable popular keys = %d, want 9", len(keys))
	}

	// Already cached destinations are skipped.
	if n := s.PreloadPopular(ctx, loader); n != 0 {
		t.Errorf("second preload loaded %d, want 0", n)
	}

	clock.Advance(PopularTTL + time.Second)
	if s.Has(ctx, "popular_paris", Persistent()) {
		t.Error("preloaded data should expire after 24h")
	}
}

func TestPopularKey(t *testing.T) {
	t.Parallel()

	if got := PopularKey("Budapest"); got != "popular_budapest" {
		t.Errorf("PopularKey = %q", got)
	}
}
