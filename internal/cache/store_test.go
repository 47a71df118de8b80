// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/metrics"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, maxEntries int, p Persister) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s := New(Config{
		DefaultTTL: time.Hour,
		MaxEntries: maxEntries,
		Namespace:  "travel_cache_",
		Clock:      clock.Now,
	}, p, zerolog.Nop())
	return s, clock
}

func newBadger(t *testing.T) *BadgerPersister {
	t.Helper()
	p, err := OpenBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

type hotel struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestStore_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, 10, nil)

	s.Set(ctx, "k", "v", WithTTL(time.Minute))

	clock.Advance(59 * time.Second)
	if _, ok := s.Get(ctx, "k"); !ok {
		t.Fatal("entry should be present before expiry")
	}

	clock.Advance(time.Second)
	if _, ok := s.Get(ctx, "k"); !ok {
		t.Fatal("entry should be present exactly at ExpiresAt")
	}

	clock.Advance(time.Nanosecond)
	if v, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("expired entry returned %v", v)
	}
	if s.Len() != 0 {
		t.Errorf("expired entry should be removed on read, Len = %d", s.Len())
	}
}

func TestStore_EvictsOldestByInsertion(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, 3, nil)

	for _, k := range []string{"a", "b", "c"} {
		s.Set(ctx, k, k)
		clock.Advance(time.Second)
	}

	// Reading does not refresh recency.
	if !s.Has(ctx, "a") {
		t.Fatal("a should be present")
	}

	s.Set(ctx, "d", "d")

	if s.Has(ctx, "a") {
		t.Error("a is the oldest insertion and should have been evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if !s.Has(ctx, k) {
			t.Errorf("%s should still be present", k)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestStore_EvictsExpiredFirst(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, 3, nil)

	s.Set(ctx, "a", 1)
	clock.Advance(time.Second)
	s.Set(ctx, "short", 2, WithTTL(5*time.Second))
	clock.Advance(time.Second)
	s.Set(ctx, "c", 3)

	clock.Advance(10 * time.Second)
	s.Set(ctx, "d", 4)

	if s.Has(ctx, "short") {
		t.Error("expired entry should be evicted")
	}
	if !s.Has(ctx, "a") {
		t.Error("oldest live entry should survive when expired eviction suffices")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestStore_ResetRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, 3, nil)

	for _, k := range []string{"a", "b", "c"} {
		s.Set(ctx, k, k)
		clock.Advance(time.Second)
	}
	s.Set(ctx, "a", "a2")
	clock.Advance(time.Second)
	s.Set(ctx, "d", "d")

	if s.Has(ctx, "b") {
		t.Error("b should be evicted after a was re-set")
	}
	if v, _ := s.Get(ctx, "a"); v != "a2" {
		t.Errorf("a = %v, want a2", v)
	}
}

func TestStore_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 10, newBadger(t))

	s.Set(ctx, "k", "v", Persistent())
	s.Delete(ctx, "k", Persistent())
	s.Delete(ctx, "k", Persistent())

	if s.Has(ctx, "k", Persistent()) {
		t.Error("deleted key should be absent from both tiers")
	}
}

func TestStore_PrefixOption(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 10, nil)

	s.Set(ctx, "paris", 1, WithPrefix("hotels_"))

	if s.Has(ctx, "paris") {
		t.Error("unprefixed lookup should miss")
	}
	if !s.Has(ctx, "paris", WithPrefix("hotels_")) {
		t.Error("prefixed lookup should hit")
	}
}

func TestStore_HydratesFromDurableTier(t *testing.T) {
	ctx := context.Background()
	p := newBadger(t)

	writer, _ := newTestStore(t, 10, p)
	writer.Set(ctx, "h1", hotel{Name: "Le Marais", Price: 140}, Persistent())

	reader, _ := newTestStore(t, 10, p)
	if reader.Has(ctx, "h1") {
		t.Fatal("non-persistent lookup must not consult the durable tier")
	}

	got, ok := GetAs[hotel](ctx, reader, "h1", Persistent())
	if !ok {
		t.Fatal("expected hydration from durable tier")
	}
	if got.Name != "Le Marais" || got.Price != 140 {
		t.Errorf("hydrated = %+v", got)
	}
	if reader.Len() != 1 {
		t.Errorf("hydration should repopulate memory, Len = %d", reader.Len())
	}

	raw, ok := reader.Get(ctx, "h1")
	if !ok {
		t.Fatal("memory tier should now hold h1")
	}
	if _, isRaw := raw.(json.RawMessage); !isRaw {
		t.Errorf("hydrated value type = %T, want json.RawMessage", raw)
	}
}

func TestStore_ExpiredDurableEntryIsRemoved(t *testing.T) {
	ctx := context.Background()
	p := newBadger(t)

	s, clock := newTestStore(t, 10, p)
	s.Set(ctx, "k", "v", Persistent(), WithTTL(time.Minute))
	s.Clear(ctx)

	clock.Advance(2 * time.Minute)
	if s.Has(ctx, "k", Persistent()) {
		t.Fatal("expired durable entry should miss")
	}
	if _, err := p.Get(ctx, "travel_cache_k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired durable entry should be deleted, got err=%v", err)
	}
}

func TestStore_ClearOnlyTouchesNamespace(t *testing.T) {
	ctx := context.Background()
	p := newBadger(t)
	if err := p.Set(ctx, "tasarini_analytics_events", []byte("[]"), 0); err != nil {
		t.Fatal(err)
	}

	s, _ := newTestStore(t, 10, p)
	s.Set(ctx, "a", 1, Persistent())
	s.Set(ctx, "b", 2, Persistent())
	s.Set(ctx, "mem", 3)

	s.Clear(ctx, Persistent())

	if s.Len() != 0 {
		t.Errorf("memory tier should be empty, Len = %d", s.Len())
	}
	keys, err := p.Keys(ctx, "travel_cache_")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("namespaced durable keys remain: %v", keys)
	}
	if _, err := p.Get(ctx, "tasarini_analytics_events"); err != nil {
		t.Errorf("unrelated durable key was touched: %v", err)
	}
}

func TestStore_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	p := newBadger(t)
	s, _ := newTestStore(t, 10, p)

	s.Set(ctx, "search_hotels_abc", 1, Persistent())
	s.Set(ctx, "search_flights_def", 2, Persistent())
	s.Set(ctx, "popular_paris", 3)

	// A durable-only key written by another instance.
	other, _ := newTestStore(t, 10, p)
	other.Set(ctx, "search_hotels_xyz", 4, Persistent())

	n, err := s.InvalidatePattern(ctx, regexp.MustCompile(`^search_hotels_`), Persistent())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if s.Has(ctx, "search_hotels_abc", Persistent()) || s.Has(ctx, "search_hotels_xyz", Persistent()) {
		t.Error("matching keys should be gone from both tiers")
	}
	if !s.Has(ctx, "search_flights_def") || !s.Has(ctx, "popular_paris") {
		t.Error("non-matching keys should survive")
	}

	if _, err := s.InvalidatePattern(ctx, nil); !errors.Is(err, ErrNilPattern) {
		t.Errorf("nil pattern error = %v, want ErrNilPattern", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, 10, nil)

	s.Set(ctx, "short", 1, WithTTL(time.Second))
	s.Set(ctx, "long", 2)
	clock.Advance(2 * time.Second)

	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep = %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

type failingPersister struct{}

var errDisk = errors.New("quota exceeded")

func (failingPersister) Get(context.Context, string) ([]byte, error) { return nil, errDisk }
func (failingPersister) Set(context.Context, string, []byte, time.Duration) error {
	return errDisk
}
func (failingPersister) Delete(context.Context, string) error { return errDisk }
func (failingPersister) Keys(context.Context, string) ([]string, error) {
	return nil, errDisk
}
func (failingPersister) Close() error { return nil }

func TestStore_DurableFailuresDegradeToMemory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 10, failingPersister{})
	before := testutil.ToFloat64(metrics.CacheDurableErrors.WithLabelValues("set"))

	s.Set(ctx, "k", "v", Persistent())

	if v, ok := s.Get(ctx, "k", Persistent()); !ok || v != "v" {
		t.Fatalf("memory tier should still serve the value, got %v %v", v, ok)
	}
	if s.Has(ctx, "missing", Persistent()) {
		t.Error("failed durable read should be a miss")
	}
	s.Delete(ctx, "k", Persistent())
	s.Clear(ctx, Persistent())
	_ = s.Stats(ctx)

	if got := testutil.ToFloat64(metrics.CacheDurableErrors.WithLabelValues("set")) - before; got != 1 {
		t.Errorf("durable set errors delta = %v, want 1", got)
	}
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	p := newBadger(t)
	s, clock := newTestStore(t, 10, p)

	first := clock.Now()
	s.Set(ctx, "a", "x", Persistent())
	clock.Advance(time.Minute)
	s.Set(ctx, "b", "y")

	s.Get(ctx, "a")
	s.Get(ctx, "b")
	s.Get(ctx, "a")
	s.Get(ctx, "nope")

	st := s.Stats(ctx)
	if st.MemoryEntries != 2 {
		t.Errorf("MemoryEntries = %d, want 2", st.MemoryEntries)
	}
	if st.PersistentEntries != 1 {
		t.Errorf("PersistentEntries = %d, want 1", st.PersistentEntries)
	}
	if st.MemorySize != int64(len(`"x"`)+len(`"y"`)) {
		t.Errorf("MemorySize = %d, want 6", st.MemorySize)
	}
	if st.OldestEntry == nil || !st.OldestEntry.Equal(first) {
		t.Errorf("OldestEntry = %v, want %v", st.OldestEntry, first)
	}
	if st.NewestEntry == nil || !st.NewestEntry.Equal(first.Add(time.Minute)) {
		t.Errorf("NewestEntry = %v", st.NewestEntry)
	}
	if st.Hits != 3 || st.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 3/1", st.Hits, st.Misses)
	}
	if st.HitRate != 75 {
		t.Errorf("HitRate = %v, want 75", st.HitRate)
	}
}

func TestStore_StatsEmpty(t *testing.T) {
	s, _ := newTestStore(t, 10, nil)
	st := s.Stats(context.Background())
	if st.HitRate != 0 || st.OldestEntry != nil || st.NewestEntry != nil {
		t.Errorf("empty stats = %+v", st)
	}
}
