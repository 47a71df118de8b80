// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"strings"
	"time"
)

// PopularDestinations are warmed by PreloadPopular.
var PopularDestinations = []string{
	"Paris", "London", "Rome", "Barcelona", "Amsterdam",
	"Prague", "Vienna", "Budapest", "Berlin", "Madrid",
}

// PopularTTL is how long preloaded destination data is kept.
const PopularTTL = 24 * time.Hour

// PopularKey returns the cache key for a preloaded destination.
func PopularKey(destination string) string {
	return "popular_" + strings.ToLower(destination)
}

// DestinationLoader fetches the data cached for one popular destination.
type DestinationLoader func(ctx context.Context, destination string) (interface{}, error)

// PreloadPopular stores loader's data for each popular destination that is
// not already cached, persistently with a 24h TTL. Loader failures are logged
// per destination and do not stop the others. It returns how many
// destinations were loaded.
func (s *Store) PreloadPopular(ctx context.Context, loader DestinationLoader) int {
	loaded := 0
	for _, dest := range PopularDestinations {
		if ctx.Err() != nil {
			break
		}
		key := PopularKey(dest)
		if s.Has(ctx, key, Persistent()) {
			continue
		}
		data, err := loader(ctx, dest)
		if err != nil {
			s.logger.Warn().Err(err).Str("destination", dest).Msg("Popular destination preload failed")
			continue
		}
		s.Set(ctx, key, data, WithTTL(PopularTTL), Persistent())
		loaded++
	}
	return loaded
}
