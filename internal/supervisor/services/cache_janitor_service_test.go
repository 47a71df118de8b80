// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
)

// manualClock is advanced by the test only.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCacheJanitorService_EvictsExpired(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	store := cache.New(cache.Config{Clock: clock.Now}, nil, zerolog.Nop())
	ctx := context.Background()

	store.Set(ctx, "hotels_lisbon", []string{"h1"}, cache.WithTTL(time.Minute))
	store.Set(ctx, "flights_lisbon", []string{"f1"}, cache.WithTTL(time.Hour))
	clock.Advance(2 * time.Minute)

	svc := NewCacheJanitorService(store, 10*time.Millisecond, zerolog.Nop())
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Serve(runCtx) }()

	deadline := time.After(time.Second)
	for store.Len() != 1 {
		select {
		case <-deadline:
			t.Fatalf("Len() = %d, want the expired entry swept", store.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if !store.Has(ctx, "flights_lisbon") {
		t.Error("live entry was evicted")
	}
}

func TestCacheJanitorService_Defaults(t *testing.T) {
	svc := NewCacheJanitorService(cache.New(cache.Config{}, nil, zerolog.Nop()), 0, zerolog.Nop())
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
	if svc.String() != "cache-janitor" {
		t.Errorf("String() = %q", svc.String())
	}
}
