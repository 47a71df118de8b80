// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// Default trip used to warm popular destinations.
const (
	popularLeadTime  = 30 * 24 * time.Hour
	popularNights    = 3
	popularTravelers = 2
)

// PopularSnapshot is the anonymous, scored view of a destination stored by
// the preload job.
type PopularSnapshot struct {
	Destination string                                        `json:"destination"`
	Trip        recommend.TripContext                         `json:"trip"`
	Items       map[recommend.Category][]recommend.ScoredItem `json:"items"`
	Failures    []SourceFailure                               `json:"failures,omitempty"`
	GeneratedAt time.Time                                     `json:"generated_at"`
}

// PopularLoader returns a cache.DestinationLoader that fetches and scores
// a standard trip (two travelers, three nights, a month out) for each
// destination. Nothing is personalized and no product views are recorded;
// source latency is still tracked. A destination whose
// sources all fail returns an error so it is retried on the next run.
func (o *Orchestrator) PopularLoader() cache.DestinationLoader {
	return func(ctx context.Context, destination string) (interface{}, error) {
		start := o.now().UTC().Truncate(24 * time.Hour).Add(popularLeadTime)
		trip := recommend.TripContext{
			City:        destination,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, popularNights),
			Travelers:   popularTravelers,
			BudgetLevel: "medium",
		}

		fetched, failures := o.fetchAll(ctx, trip)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(o.sources) > 0 && len(failures) == len(o.sources) {
			return nil, fmt.Errorf("popular %s: all %d sources failed", destination, len(failures))
		}

		snap := PopularSnapshot{
			Destination: destination,
			Trip:        trip,
			Items:       make(map[recommend.Category][]recommend.ScoredItem, len(recommend.ScoredCategories)),
			Failures:    failures,
			GeneratedAt: o.now(),
		}
		for _, cat := range recommend.ScoredCategories {
			items := fetched[cat]
			if len(items) == 0 {
				continue
			}
			scored, err := o.engine.ScoreRecommendations(ctx, items, cat, trip, nil)
			if err != nil {
				return nil, fmt.Errorf("popular %s: score %s: %w", destination, cat, err)
			}
			snap.Items[cat] = scored
		}
		return snap, nil
	}
}
