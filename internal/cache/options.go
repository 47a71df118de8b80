// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import "time"

// Option adjusts a single Store call.
type Option func(*callOptions)

type callOptions struct {
	ttl        time.Duration
	persistent bool
	prefix     string
}

// WithTTL overrides the store's default TTL for this call.
func WithTTL(ttl time.Duration) Option {
	return func(o *callOptions) {
		o.ttl = ttl
	}
}

// Persistent makes the call also read or write the durable tier.
func Persistent() Option {
	return func(o *callOptions) {
		o.persistent = true
	}
}

// WithPrefix prepends prefix to the key.
func WithPrefix(prefix string) Option {
	return func(o *callOptions) {
		o.prefix = prefix
	}
}

func (s *Store) resolve(opts []Option) callOptions {
	o := callOptions{ttl: s.cfg.DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl <= 0 {
		o.ttl = s.cfg.DefaultTTL
	}
	return o
}
