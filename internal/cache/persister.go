// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Persister when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Persister is the durable tier behind a Store. Values are opaque bytes;
// the Store writes JSON-encoded entries.
//
// Implementations must be safe for concurrent use. A ttl of zero means the
// value does not expire.
type Persister interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
