// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

// Package cache provides the cache-aside Store shared by every Tasarini
// component: a size-bounded memory tier with per-entry TTL, backed by an
// optional durable tier (Badger or Redis).
package cache

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/tasarini/internal/metrics"
)

// ErrNilPattern is returned by InvalidatePattern when no pattern is given.
var ErrNilPattern = errors.New("cache: nil invalidation pattern")

// Config holds the Store settings.
type Config struct {
	// DefaultTTL applies when a call does not pass WithTTL.
	DefaultTTL time.Duration

	// MaxEntries bounds the memory tier.
	MaxEntries int

	// Namespace prefixes every durable key so Clear never touches
	// unrelated data sharing the same backend.
	Namespace string

	// FetchTimeout bounds a shared GetOrSet fetch.
	FetchTimeout time.Duration

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the defaults: 1h TTL, 500 entries, travel_cache_
// namespace, 30s fetch timeout.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:   time.Hour,
		MaxEntries:   500,
		Namespace:    "travel_cache_",
		FetchTimeout: 30 * time.Second,
	}
}

// Store is a two-tier TTL cache. It is safe for concurrent use.
type Store struct {
	cfg       Config
	persister Persister
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	entries map[string]*Entry
	order   *entryList

	group singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a Store. persister may be nil for a memory-only store.
func New(cfg Config, persister Persister, logger zerolog.Logger) *Store {
	defaults := DefaultConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaults.DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaults.MaxEntries
	}
	if cfg.Namespace == "" {
		cfg.Namespace = defaults.Namespace
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Store{
		cfg:       cfg,
		persister: persister,
		logger:    logger.With().Str("component", "cache").Logger(),
		now:       now,
		entries:   make(map[string]*Entry, cfg.MaxEntries),
		order:     newEntryList(),
	}
}

// Persister returns the durable tier, or nil.
func (s *Store) Persister() Persister {
	return s.persister
}

// Set stores data under key. The memory tier is always written; with
// Persistent() the entry is also written to the durable tier. Durable
// failures are logged and counted, never returned.
func (s *Store) Set(ctx context.Context, key string, data interface{}, opts ...Option) {
	o := s.resolve(opts)
	k := o.prefix + key
	now := s.now()

	e := &Entry{Key: k, Data: data, Timestamp: now, ExpiresAt: now.Add(o.ttl)}

	s.mu.Lock()
	s.putLocked(e, now)
	n := len(s.entries)
	s.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))

	if o.persistent && s.persister != nil {
		s.persist(ctx, e, o.ttl)
	}
}

// Get returns the data stored under key.
//
// The memory tier is checked first. On a miss with Persistent(), the entry is
// hydrated from the durable tier and re-populates memory. Hydrated values are
// returned as json.RawMessage; use GetAs to decode them. An expired entry is
// removed and reported as a miss.
func (s *Store) Get(ctx context.Context, key string, opts ...Option) (interface{}, bool) {
	o := s.resolve(opts)
	k := o.prefix + key
	now := s.now()

	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()

	if ok {
		if !e.expired(now) {
			s.hits.Add(1)
			metrics.RecordCacheHit("memory")
			return e.Data, true
		}
		s.mu.Lock()
		if cur, still := s.entries[k]; still && cur == e {
			s.removeLocked(e)
			s.recordEvictions("expired", 1)
		}
		s.mu.Unlock()
	}

	if o.persistent && s.persister != nil {
		if e, ok := s.hydrate(ctx, k, now); ok {
			s.hits.Add(1)
			metrics.RecordCacheHit("durable")
			return e.Data, true
		}
	}

	s.misses.Add(1)
	metrics.RecordCacheMiss()
	return nil, false
}

// Has reports whether Get would return a value.
func (s *Store) Has(ctx context.Context, key string, opts ...Option) bool {
	_, ok := s.Get(ctx, key, opts...)
	return ok
}

// Delete removes key from memory, and from the durable tier with
// Persistent(). Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string, opts ...Option) {
	o := s.resolve(opts)
	k := o.prefix + key

	s.mu.Lock()
	if e, ok := s.entries[k]; ok {
		s.removeLocked(e)
		s.recordEvictions("delete", 1)
	}
	n := len(s.entries)
	s.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))

	if o.persistent && s.persister != nil {
		if err := s.persister.Delete(ctx, s.cfg.Namespace+k); err != nil {
			s.durableFailure("delete", k, err)
		}
	}
}

// Clear drops the memory tier. With Persistent() it also deletes every
// durable key under this store's namespace, and nothing else.
func (s *Store) Clear(ctx context.Context, opts ...Option) {
	o := s.resolve(opts)

	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]*Entry, s.cfg.MaxEntries)
	s.order = newEntryList()
	s.mu.Unlock()
	s.recordEvictions("clear", n)
	metrics.CacheEntries.Set(0)

	if !o.persistent || s.persister == nil {
		return
	}
	keys, err := s.persister.Keys(ctx, s.cfg.Namespace)
	if err != nil {
		s.durableFailure("keys", s.cfg.Namespace, err)
		return
	}
	for _, dk := range keys {
		if err := s.persister.Delete(ctx, dk); err != nil {
			s.durableFailure("delete", dk, err)
		}
	}
}

// InvalidatePattern removes every memory key matching re. With Persistent()
// the durable keys under the namespace are swept too, matched with the
// namespace stripped. It returns the number of distinct keys removed.
func (s *Store) InvalidatePattern(ctx context.Context, re *regexp.Regexp, opts ...Option) (int, error) {
	if re == nil {
		return 0, ErrNilPattern
	}
	o := s.resolve(opts)
	removed := make(map[string]struct{})

	s.mu.Lock()
	for k, e := range s.entries {
		if re.MatchString(k) {
			s.removeLocked(e)
			removed[k] = struct{}{}
		}
	}
	n := len(s.entries)
	s.mu.Unlock()
	s.recordEvictions("pattern", len(removed))
	metrics.CacheEntries.Set(float64(n))

	if o.persistent && s.persister != nil {
		keys, err := s.persister.Keys(ctx, s.cfg.Namespace)
		if err != nil {
			s.durableFailure("keys", s.cfg.Namespace, err)
			return len(removed), nil
		}
		for _, dk := range keys {
			k := strings.TrimPrefix(dk, s.cfg.Namespace)
			if !re.MatchString(k) {
				continue
			}
			if err := s.persister.Delete(ctx, dk); err != nil {
				s.durableFailure("delete", dk, err)
				continue
			}
			removed[k] = struct{}{}
		}
	}

	return len(removed), nil
}

// Sweep removes expired memory entries and returns how many were dropped.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := s.dropExpiredLocked(now)
	n := len(s.entries)
	s.mu.Unlock()

	s.recordEvictions("expired", removed)
	metrics.CacheEntries.Set(float64(n))
	return removed
}

// Len returns the number of memory entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close closes the durable tier.
func (s *Store) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

// putLocked inserts e, replacing any previous entry for the key, then
// enforces the size cap. Must be called with s.mu held.
func (s *Store) putLocked(e *Entry, now time.Time) {
	if old, ok := s.entries[e.Key]; ok {
		s.order.unlink(old)
	}
	s.entries[e.Key] = e
	s.order.insert(e)

	if len(s.entries) <= s.cfg.MaxEntries {
		return
	}
	s.recordEvictions("expired", s.dropExpiredLocked(now))

	capacity := 0
	for len(s.entries) > s.cfg.MaxEntries {
		oldest := s.order.oldest()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest)
		capacity++
	}
	s.recordEvictions("capacity", capacity)
}

func (s *Store) dropExpiredLocked(now time.Time) int {
	removed := 0
	for e := s.order.oldest(); e != nil && e != s.order.head; {
		prev := e.prev
		if e.expired(now) {
			s.removeLocked(e)
			removed++
		}
		e = prev
	}
	return removed
}

func (s *Store) removeLocked(e *Entry) {
	s.order.unlink(e)
	delete(s.entries, e.Key)
}

func (s *Store) recordEvictions(reason string, n int) {
	if n <= 0 {
		return
	}
	s.evictions.Add(int64(n))
	metrics.RecordCacheEvictions(reason, n)
}

func (s *Store) persist(ctx context.Context, e *Entry, ttl time.Duration) {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		s.durableFailure("encode", e.Key, err)
		return
	}
	b, err := json.Marshal(durableEntry{
		Key:       e.Key,
		Data:      raw,
		Timestamp: e.Timestamp,
		ExpiresAt: e.ExpiresAt,
	})
	if err != nil {
		s.durableFailure("encode", e.Key, err)
		return
	}
	if err := s.persister.Set(ctx, s.cfg.Namespace+e.Key, b, ttl); err != nil {
		s.durableFailure("set", e.Key, err)
	}
}

func (s *Store) hydrate(ctx context.Context, k string, now time.Time) (*Entry, bool) {
	dk := s.cfg.Namespace + k
	b, err := s.persister.Get(ctx, dk)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.durableFailure("get", k, err)
		return nil, false
	}

	var de durableEntry
	if err := json.Unmarshal(b, &de); err != nil {
		s.durableFailure("decode", k, err)
		_ = s.persister.Delete(ctx, dk)
		return nil, false
	}

	e := &Entry{Key: k, Data: de.Data, Timestamp: de.Timestamp, ExpiresAt: de.ExpiresAt}
	if e.expired(now) {
		if err := s.persister.Delete(ctx, dk); err != nil {
			s.durableFailure("delete", k, err)
		}
		return nil, false
	}

	s.mu.Lock()
	s.putLocked(e, now)
	n := len(s.entries)
	s.mu.Unlock()
	metrics.CacheEntries.Set(float64(n))

	return e, true
}

func (s *Store) durableFailure(op, key string, err error) {
	metrics.RecordDurableError(op)
	s.logger.Warn().Err(err).
		Str("operation", op).
		Str("key", key).
		Msg("Durable cache tier failed, continuing memory-only")
}
