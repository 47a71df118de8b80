// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/logging"
)

var errDown = errors.New("storage down")

// failingPersister fails every write and reports every key as missing.
type failingPersister struct{}

func (failingPersister) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrNotFound }
func (failingPersister) Set(context.Context, string, []byte, time.Duration) error {
	return errDown
}
func (failingPersister) Delete(context.Context, string) error { return errDown }
func (failingPersister) Keys(context.Context, string) ([]string, error) {
	return nil, errDown
}
func (failingPersister) Close() error { return nil }

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBadger(t *testing.T) *cache.BadgerPersister {
	t.Helper()
	p, err := cache.OpenBadger(cache.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func newTracker(t *testing.T, cfg Config, p cache.Persister, sink Sink, opts ...Option) *Tracker {
	t.Helper()
	tr, err := NewTracker(context.Background(), cfg, p, sink, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr
}

func TestNewTracker_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BatchSize = 0
	if _, err := NewTracker(context.Background(), cfg, nil, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}

func TestNewTracker_SessionAndVariant(t *testing.T) {
	t.Parallel()

	tr := newTracker(t, DefaultConfig(), nil, nil)
	if !regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`).MatchString(tr.SessionID()) {
		t.Errorf("SessionID = %q", tr.SessionID())
	}
	if tr.Variant() != VariantFor(tr.SessionID()) {
		t.Errorf("Variant = %s, want %s", tr.Variant(), VariantFor(tr.SessionID()))
	}

	pinned := newTracker(t, DefaultConfig(), nil, nil, WithSessionID("session_1_b"))
	if pinned.SessionID() != "session_1_b" || pinned.Variant() != VariantA {
		t.Errorf("pinned = %s/%s", pinned.SessionID(), pinned.Variant())
	}
}

func TestTrack_CopiesPropsAndTags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig()
	cfg.Clock = clock.Now
	tr := newTracker(t, cfg, nil, nil, WithSessionID("session_1_a"))
	if err := tr.SetUserID(ctx, "user-9"); err != nil {
		t.Fatalf("SetUserID: %v", err)
	}

	props := map[string]interface{}{"query": "lisbon"}
	tr.Track(ctx, EventSearch, CategorySearch, props)
	props["query"] = "mutated"

	if err := tr.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	events := tr.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.Properties["query"] != "lisbon" {
		t.Errorf("props not copied: %v", e.Properties["query"])
	}
	if e.Properties[PropVariant] != string(VariantB) {
		t.Errorf("variant tag = %v", e.Properties[PropVariant])
	}
	if _, ok := props[PropVariant]; ok {
		t.Error("caller map was modified")
	}
	if e.SessionID != "session_1_a" || e.UserID != "user-9" || !e.Timestamp.Equal(clock.Now()) {
		t.Errorf("event stamp = %+v", e)
	}
}

func TestTrack_StampsContextSession(t *testing.T) {
	t.Parallel()

	tr := newTracker(t, DefaultConfig(), nil, nil, WithSessionID("session_1_b"))
	if err := tr.SetUserID(context.Background(), "stored-user"); err != nil {
		t.Fatalf("SetUserID: %v", err)
	}

	ctxA := logging.ContextWithSessionID(context.Background(), "session_7_b") // 115+55+98, A
	ctxB := logging.ContextWithSessionID(context.Background(), "session_7_a") // 115+55+97, B
	ctxB = logging.ContextWithUserID(ctxB, "u-42")

	tr.TrackProductView(ctxA, "hotel", "h1", "test", nil)
	tr.TrackProductView(ctxB, "hotel", "h1", "test", nil)
	tr.TrackBookingSuccess(ctxB, "bk-1", "hotel", 120, "EUR", "test", nil)
	if err := tr.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	events := tr.Events()
	if events[0].SessionID != "session_7_b" || events[0].Properties[PropVariant] != string(VariantA) {
		t.Errorf("first event = %s/%v", events[0].SessionID, events[0].Properties[PropVariant])
	}
	if events[1].SessionID != "session_7_a" || events[1].Properties[PropVariant] != string(VariantB) {
		t.Errorf("second event = %s/%v", events[1].SessionID, events[1].Properties[PropVariant])
	}
	if events[0].UserID != "stored-user" || events[1].UserID != "u-42" {
		t.Errorf("user ids = %q, %q", events[0].UserID, events[1].UserID)
	}

	res := tr.GetABTestResults(context.Background(), time.Time{}, time.Time{})
	if res.VariantA.SampleSize != 1 || res.VariantB.SampleSize != 1 || res.VariantB.Bookings != 1 {
		t.Errorf("ab results = %+v", res)
	}
	if got := tr.GetDashboardMetrics(context.Background()).ActiveSessions; got != 2 {
		t.Errorf("ActiveSessions = %d, want 2", got)
	}
}

func TestTrack_FlushesAtBatchSize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := newTracker(t, DefaultConfig(), newBadger(t), nil)

	for i := 0; i < 9; i++ {
		tr.TrackProductView(ctx, "hotel", "h1", "partner", nil)
	}
	if tr.Buffered() != 9 || len(tr.Events()) != 0 {
		t.Fatalf("before batch: buffered=%d persisted=%d", tr.Buffered(), len(tr.Events()))
	}

	tr.TrackProductView(ctx, "hotel", "h1", "partner", nil)
	if tr.Buffered() != 0 {
		t.Errorf("buffered = %d after batch, want 0", tr.Buffered())
	}
	if got := len(tr.Events()); got != 10 {
		t.Errorf("persisted = %d, want 10", got)
	}
}

func TestFlush_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	tr := newTracker(t, DefaultConfig(), failingPersister{}, nil)
	if err := tr.Flush(context.Background()); err != nil {
		t.Errorf("empty Flush = %v, want nil", err)
	}
}

func TestFlush_TrimsToMaxPersisted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.MaxPersisted = 5
	tr := newTracker(t, cfg, nil, nil)

	for i := 0; i < 8; i++ {
		tr.Track(ctx, EventProductView, CategoryBooking, map[string]interface{}{PropProductID: string(rune('a' + i))})
	}
	if err := tr.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	events := tr.Events()
	if len(events) != 5 {
		t.Fatalf("persisted = %d, want 5", len(events))
	}
	if first := events[0].str(PropProductID); first != "d" {
		t.Errorf("oldest kept = %q, want d", first)
	}
}

func TestFlush_PersistenceErrorReturned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := newTracker(t, DefaultConfig(), failingPersister{}, nil)
	tr.TrackSearch(ctx, "hotel", "rome", nil, 3, 40*time.Millisecond)

	err := tr.Flush(ctx)
	if !errors.Is(err, errDown) {
		t.Fatalf("Flush = %v, want errDown", err)
	}
	if len(tr.Events()) != 1 {
		t.Error("in-memory log should keep the batch")
	}
	if tr.Buffered() != 0 {
		t.Error("batch should not be re-queued")
	}
}

func TestTracker_ReloadsPersistedState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newBadger(t)

	first := newTracker(t, DefaultConfig(), p, nil)
	if err := first.SetUserID(ctx, "traveler"); err != nil {
		t.Fatalf("SetUserID: %v", err)
	}
	first.TrackBookingSuccess(ctx, "bk-1", "hotel", 420, "EUR", "partner", nil)
	if err := first.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	second := newTracker(t, DefaultConfig(), p, nil)
	if second.UserID() != "traveler" {
		t.Errorf("UserID = %q, want traveler", second.UserID())
	}
	events := second.Events()
	if len(events) != 1 {
		t.Fatalf("reloaded events = %d, want 1", len(events))
	}
	if got := events[0].num(PropRevenue); got != 420 {
		t.Errorf("revenue = %v, want 420", got)
	}
}

func TestFlush_PublishesToChannelSink(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sink, pubsub := NewChannelSink(8)
	defer sink.Close()

	msgs, err := pubsub.Subscribe(ctx, DefaultTopic)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	tr := newTracker(t, DefaultConfig(), nil, sink)
	tr.TrackCacheUsage(ctx, "itinerary_x", true, 0)
	tr.TrackCacheUsage(ctx, "itinerary_y", false, 0)
	if err := tr.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	select {
	case msg := <-msgs:
		batch, err := DecodeBatch(msg)
		msg.Ack()
		if err != nil {
			t.Fatalf("DecodeBatch: %v", err)
		}
		if len(batch) != 2 || batch[0].Event != EventCacheUsage {
			t.Errorf("batch = %+v", batch)
		}
		if msg.Metadata.Get("event_count") != "2" {
			t.Errorf("event_count = %q", msg.Metadata.Get("event_count"))
		}
	case <-ctx.Done():
		t.Fatal("no message published")
	}
}

func TestFlush_ConcurrentTrack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.MaxPersisted = 10000
	tr := newTracker(t, cfg, nil, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				tr.TrackProductClick(ctx, "activity", "a1", "internal", i, nil)
			}
		}()
	}
	wg.Wait()
	if err := tr.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := len(tr.Events()); got != 200 {
		t.Errorf("persisted = %d, want 200", got)
	}
}
