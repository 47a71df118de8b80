// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Stats is a point-in-time snapshot of the Store.
type Stats struct {
	MemoryEntries     int        `json:"memoryEntries"`
	PersistentEntries int        `json:"persistentEntries"`
	MemorySize        int64      `json:"memorySize"`
	OldestEntry       *time.Time `json:"oldestEntry,omitempty"`
	NewestEntry       *time.Time `json:"newestEntry,omitempty"`
	Hits              int64      `json:"hits"`
	Misses            int64      `json:"misses"`
	Evictions         int64      `json:"evictions"`
	HitRate           float64    `json:"hitRate"`
}

// Stats returns entry counts, the JSON size of the memory tier, the oldest
// and newest insertion times and the hit/miss counters. HitRate is a
// percentage and 0 before the first lookup.
func (s *Store) Stats(ctx context.Context) Stats {
	var st Stats

	s.mu.RLock()
	st.MemoryEntries = len(s.entries)
	values := make([]interface{}, 0, len(s.entries))
	for _, e := range s.entries {
		values = append(values, e.Data)
	}
	if e := s.order.oldest(); e != nil {
		ts := e.Timestamp
		st.OldestEntry = &ts
	}
	if e := s.order.newest(); e != nil {
		ts := e.Timestamp
		st.NewestEntry = &ts
	}
	s.mu.RUnlock()

	for _, v := range values {
		if b, err := json.Marshal(v); err == nil {
			st.MemorySize += int64(len(b))
		}
	}

	if s.persister != nil {
		keys, err := s.persister.Keys(ctx, s.cfg.Namespace)
		if err != nil {
			s.durableFailure("keys", s.cfg.Namespace, err)
		} else {
			st.PersistentEntries = len(keys)
		}
	}

	st.Hits = s.hits.Load()
	st.Misses = s.misses.Load()
	st.Evictions = s.evictions.Load()
	if total := st.Hits + st.Misses; total > 0 {
		st.HitRate = float64(st.Hits) / float64(total) * 100.0
	}
	return st
}
