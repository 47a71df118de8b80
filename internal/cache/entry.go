// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"time"

	"github.com/goccy/go-json"
)

// Entry is a cached value with its insertion time and expiry.
// ExpiresAt is always Timestamp plus the TTL it was stored with.
type Entry struct {
	Key       string
	Data      interface{}
	Timestamp time.Time
	ExpiresAt time.Time

	prev *Entry
	next *Entry
}

// expired reports whether the entry is logically absent at now.
func (e *Entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// durableEntry is the JSON form written to the durable tier.
type durableEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// entryList keeps entries ordered by Timestamp, newest at the front.
// Reads never reorder it, so the tail is always the oldest insertion.
type entryList struct {
	head *Entry
	tail *Entry
}

func newEntryList() *entryList {
	l := &entryList{head: &Entry{}, tail: &Entry{}}
	l.head.next = l.tail
	l.tail.prev = l.head
	return l
}

// insert places e after the newest entry whose Timestamp is not after e's.
// Fresh writes land at the front in O(1); hydrated entries carry an older
// timestamp and walk to their slot.
func (l *entryList) insert(e *Entry) {
	at := l.head.next
	for at != l.tail && at.Timestamp.After(e.Timestamp) {
		at = at.next
	}
	e.prev = at.prev
	e.next = at
	at.prev.next = e
	at.prev = e
}

func (l *entryList) unlink(e *Entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

// oldest returns the tail entry, or nil when empty.
func (l *entryList) oldest() *Entry {
	if l.tail.prev == l.head {
		return nil
	}
	return l.tail.prev
}

// newest returns the head entry, or nil when empty.
func (l *entryList) newest() *Entry {
	if l.head.next == l.tail {
		return nil
	}
	return l.head.next
}
