// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasarini/internal/metrics"
)

// GetAs returns the value under key as a T. Values hydrated from the durable
// tier (or stored as another shape) are decoded through JSON.
func GetAs[T any](ctx context.Context, s *Store, key string, opts ...Option) (T, bool) {
	var zero T

	data, ok := s.Get(ctx, key, opts...)
	if !ok {
		return zero, false
	}
	if v, ok := data.(T); ok {
		return v, true
	}

	raw, isRaw := data.(json.RawMessage)
	if !isRaw {
		b, err := json.Marshal(data)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cached value is not JSON encodable")
			return zero, false
		}
		raw = b
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Str("type", fmt.Sprintf("%T", zero)).
			Msg("Cached value does not decode into requested type")
		return zero, false
	}
	return out, true
}

// GetOrSet returns the cached value for key, or calls fetch, stores its
// result with opts and returns it. Concurrent misses on the same key share a
// single fetch. Fetch errors are returned and nothing is cached.
//
// The shared fetch is detached from any one caller's cancellation and bounded
// by Config.FetchTimeout. A caller whose ctx ends returns ctx.Err() without
// affecting the others.
func GetOrSet[T any](ctx context.Context, s *Store, key string, fetch func(context.Context) (T, error), opts ...Option) (T, error) {
	var zero T
	if v, ok := GetAs[T](ctx, s, key, opts...); ok {
		return v, nil
	}

	o := s.resolve(opts)
	ch := s.group.DoChan(o.prefix+key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
		defer cancel()

		val, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		s.Set(fctx, key, val, opts...)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CacheFetchDeduplicated.Inc()
		}
		if res.Err != nil {
			return zero, res.Err
		}
		out, _ := res.Val.(T)
		return out, nil
	}
}
