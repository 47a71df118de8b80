// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/logging"
	"github.com/tomtom215/tasarini/internal/metrics"
)

// Config controls batching and persistence.
type Config struct {
	// BatchSize is the buffer length that triggers an immediate flush.
	BatchSize int

	// FlushInterval is the FlushService tick.
	FlushInterval time.Duration

	// MaxPersisted caps the persisted log; older events are dropped first.
	MaxPersisted int

	// EventsKey and UserIDKey are the durable keys for the log and user id.
	EventsKey string
	UserIDKey string

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the stock batching settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:     10,
		FlushInterval: 30 * time.Second,
		MaxPersisted:  1000,
		EventsKey:     "tasarini_analytics_events",
		UserIDKey:     "tasarini_user_id",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %s", c.FlushInterval)
	}
	if c.MaxPersisted <= 0 {
		return fmt.Errorf("max persisted must be positive, got %d", c.MaxPersisted)
	}
	if c.EventsKey == "" || c.UserIDKey == "" {
		return errors.New("events key and user id key are required")
	}
	return nil
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSessionID pins the fallback session id instead of generating one.
func WithSessionID(id string) Option {
	return func(t *Tracker) {
		if id != "" {
			t.sessionID = id
		}
	}
}

// Tracker buffers events and flushes them to the persisted log and an
// optional Sink. Each event belongs to the session carried by its context
// (logging.ContextWithSessionID); the tracker's own session is the fallback
// for calls made outside a client session.
type Tracker struct {
	cfg       Config
	persister cache.Persister
	sink      Sink
	logger    zerolog.Logger
	now       func() time.Time

	sessionID string
	variant   Variant

	mu     sync.Mutex
	buffer []Event
	userID string

	// logMu serializes read-modify-write of the persisted log.
	logMu sync.Mutex
	log   []Event
}

// NewTracker creates a tracker and loads the persisted log and user id.
// A nil persister keeps the log in memory only. A nil sink disables
// publishing. Load failures are logged and start from an empty log.
func NewTracker(ctx context.Context, cfg Config, persister cache.Persister, sink Sink, logger zerolog.Logger, opts ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analytics config: %w", err)
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	t := &Tracker{
		cfg:       cfg,
		persister: persister,
		sink:      sink,
		logger:    logger.With().Str("component", "analytics").Logger(),
		now:       now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.sessionID == "" {
		t.sessionID = NewSessionID(now())
	}
	t.variant = VariantFor(t.sessionID)

	t.load(ctx)

	t.logger.Debug().
		Str("session_id", t.sessionID).
		Str("variant", string(t.variant)).
		Int("persisted", len(t.log)).
		Msg("Analytics tracker ready")
	return t, nil
}

func (t *Tracker) load(ctx context.Context) {
	if t.persister == nil {
		return
	}

	data, err := t.persister.Get(ctx, t.cfg.EventsKey)
	switch {
	case errors.Is(err, cache.ErrNotFound):
	case err != nil:
		t.logger.Warn().Err(err).Msg("Failed to read persisted analytics events")
	default:
		var events []Event
		if err := json.Unmarshal(data, &events); err != nil {
			t.logger.Warn().Err(err).Msg("Discarding unreadable analytics log")
		} else {
			t.log = events
		}
	}

	uid, err := t.persister.Get(ctx, t.cfg.UserIDKey)
	switch {
	case errors.Is(err, cache.ErrNotFound):
	case err != nil:
		t.logger.Warn().Err(err).Msg("Failed to read persisted user id")
	default:
		t.userID = string(uid)
	}
}

// SessionID returns the fallback session id.
func (t *Tracker) SessionID() string { return t.sessionID }

// Variant returns the fallback session's A/B variant.
func (t *Tracker) Variant() Variant { return t.variant }

// Session returns the session id carried by ctx and its variant, or the
// fallback session when ctx has none.
func (t *Tracker) Session(ctx context.Context) (string, Variant) {
	if sid := logging.SessionIDFromContext(ctx); sid != "" {
		return sid, VariantFor(sid)
	}
	return t.sessionID, t.variant
}

// UserID returns the persisted user id, if any.
func (t *Tracker) UserID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.userID
}

// SetUserID attaches id to subsequent events and persists it.
func (t *Tracker) SetUserID(ctx context.Context, id string) error {
	t.mu.Lock()
	t.userID = id
	t.mu.Unlock()

	if t.persister == nil {
		return nil
	}
	if err := t.persister.Set(ctx, t.cfg.UserIDKey, []byte(id), 0); err != nil {
		return fmt.Errorf("persist user id: %w", err)
	}
	return nil
}

// Buffered returns the number of events waiting to be flushed.
func (t *Tracker) Buffered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffer)
}

// Track records an event. The caller's props are copied and tagged with the
// session variant. The user id comes from ctx (logging.ContextWithUserID)
// or the persisted one. Reaching BatchSize flushes synchronously; a failed
// flush is logged.
func (t *Tracker) Track(ctx context.Context, event string, category Category, props map[string]interface{}) {
	sessionID, variant := t.Session(ctx)
	p := make(map[string]interface{}, len(props)+1)
	for k, v := range props {
		p[k] = v
	}
	p[PropVariant] = string(variant)

	t.mu.Lock()
	userID := logging.UserIDFromContext(ctx)
	if userID == "" {
		userID = t.userID
	}
	t.buffer = append(t.buffer, Event{
		Event:      event,
		Category:   category,
		Properties: p,
		Timestamp:  t.now(),
		SessionID:  sessionID,
		UserID:     userID,
	})
	n := len(t.buffer)
	t.mu.Unlock()

	metrics.AnalyticsEventsTracked.WithLabelValues(string(category)).Inc()
	metrics.AnalyticsBufferSize.Set(float64(n))

	if n >= t.cfg.BatchSize {
		if err := t.Flush(ctx); err != nil {
			t.logger.Warn().Err(err).Msg("Batch flush failed")
		}
	}
}

// Flush moves buffered events to the persisted log and publishes them to
// the sink. An empty buffer is a no-op. Both persistence and publish
// errors are returned; the batch is not re-queued.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.buffer
	t.buffer = nil
	t.mu.Unlock()
	metrics.AnalyticsBufferSize.Set(0)

	if len(batch) == 0 {
		return nil
	}

	var errs []error
	if err := t.appendLog(ctx, batch); err != nil {
		t.logger.Error().Err(err).Int("events", len(batch)).Msg("Failed to persist analytics events")
		errs = append(errs, err)
	}
	if t.sink != nil {
		if err := t.sink.Publish(ctx, batch); err != nil {
			t.logger.Error().Err(err).Int("events", len(batch)).Msg("Failed to publish analytics events")
			errs = append(errs, fmt.Errorf("publish analytics batch: %w", err))
		}
	}

	err := errors.Join(errs...)
	metrics.RecordAnalyticsFlush(len(batch), err)
	if err == nil {
		t.logger.Debug().Int("events", len(batch)).Msg("Flushed analytics events")
	}
	return err
}

// appendLog appends batch to the log, keeps the newest MaxPersisted events
// and writes the log back. The in-memory log is updated even when the
// write fails.
func (t *Tracker) appendLog(ctx context.Context, batch []Event) error {
	t.logMu.Lock()
	defer t.logMu.Unlock()

	merged := append(t.log, batch...)
	if over := len(merged) - t.cfg.MaxPersisted; over > 0 {
		trimmed := make([]Event, t.cfg.MaxPersisted)
		copy(trimmed, merged[over:])
		merged = trimmed
	}
	t.log = merged

	if t.persister == nil {
		return nil
	}
	data, err := json.Marshal(t.log)
	if err != nil {
		return fmt.Errorf("encode analytics log: %w", err)
	}
	if err := t.persister.Set(ctx, t.cfg.EventsKey, data, 0); err != nil {
		return fmt.Errorf("persist analytics log: %w", err)
	}
	return nil
}

// Events returns a snapshot of the persisted log, oldest first.
func (t *Tracker) Events() []Event {
	t.logMu.Lock()
	defer t.logMu.Unlock()
	out := make([]Event, len(t.log))
	copy(out, t.log)
	return out
}

// TrackProductView records an impression.
func (t *Tracker) TrackProductView(ctx context.Context, productType, productID, source string, props map[string]interface{}) {
	t.Track(ctx, EventProductView, CategoryBooking, merge(map[string]interface{}{
		PropProductType: productType,
		PropProductID:   productID,
		"source":        source,
	}, props))
}

// TrackProductClick records a click at a list position.
func (t *Tracker) TrackProductClick(ctx context.Context, productType, productID, source string, position int, props map[string]interface{}) {
	t.Track(ctx, EventProductClick, CategoryBooking, merge(map[string]interface{}{
		PropProductType: productType,
		PropProductID:   productID,
		"source":        source,
		"position":      position,
	}, props))
}

// TrackBookingAttempt records the start of a checkout.
func (t *Tracker) TrackBookingAttempt(ctx context.Context, productType, productID string, amount float64, currency string, props map[string]interface{}) {
	t.Track(ctx, EventBookingAttempt, CategoryBooking, merge(map[string]interface{}{
		PropProductType: productType,
		PropProductID:   productID,
		PropAmount:      amount,
		"currency":      currency,
	}, props))
}

// TrackBookingSuccess records a completed booking. Revenue equals amount.
func (t *Tracker) TrackBookingSuccess(ctx context.Context, bookingID, productType string, amount float64, currency, source string, props map[string]interface{}) {
	t.Track(ctx, EventBookingSuccess, CategoryBooking, merge(map[string]interface{}{
		"bookingId":     bookingID,
		PropProductType: productType,
		PropAmount:      amount,
		"currency":      currency,
		"source":        source,
		PropRevenue:     amount,
	}, props))
}

// TrackBookingAbandonment records a checkout left at step.
func (t *Tracker) TrackBookingAbandonment(ctx context.Context, productType, step, reason string, props map[string]interface{}) {
	base := map[string]interface{}{
		PropProductType: productType,
		"step":          step,
	}
	if reason != "" {
		base["reason"] = reason
	}
	t.Track(ctx, EventBookingAbandonment, CategoryBooking, merge(base, props))
}

// TrackSearch records a search and its latency.
func (t *Tracker) TrackSearch(ctx context.Context, searchType, query string, filters map[string]interface{}, resultCount int, responseTime time.Duration) {
	t.Track(ctx, EventSearch, CategorySearch, map[string]interface{}{
		"searchType":     searchType,
		"query":          query,
		"filters":        filters,
		"resultCount":    resultCount,
		PropResponseTime: millis(responseTime),
	})
}

// TrackAPIPerformance records one upstream call.
func (t *Tracker) TrackAPIPerformance(ctx context.Context, apiName, endpoint string, responseTime time.Duration, success bool, errorCode string) {
	props := map[string]interface{}{
		PropAPIName:      apiName,
		"endpoint":       endpoint,
		PropResponseTime: millis(responseTime),
		PropSuccess:      success,
	}
	if errorCode != "" {
		props["errorCode"] = errorCode
	}
	t.Track(ctx, EventAPIPerformance, CategoryPerformance, props)
}

// TrackCacheUsage records a cache lookup.
func (t *Tracker) TrackCacheUsage(ctx context.Context, cacheKey string, hit bool, responseTime time.Duration) {
	props := map[string]interface{}{
		"cacheKey": cacheKey,
		PropHit:    hit,
	}
	if responseTime > 0 {
		props[PropResponseTime] = millis(responseTime)
	}
	t.Track(ctx, EventCacheUsage, CategoryPerformance, props)
}

// merge overlays extra onto base; caller props win.
func merge(base, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
