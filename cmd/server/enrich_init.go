// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/config"
	"github.com/tomtom215/tasarini/internal/enrich"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// initSources builds one HTTP adapter per configured ENRICH_*_URL.
// Categories without a URL are simply not fetched.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initSources(cfg *config.Config, logger zerolog.Logger) ([]enrich.Source, error) {
	urls := []struct {
		category recommend.Category
		url      string
	}{
		{recommend.CategoryHotels, cfg.Enrich.HotelsURL},
		{recommend.CategoryFlights, cfg.Enrich.FlightsURL},
		{recommend.CategoryRestaurants, cfg.Enrich.RestaurantsURL},
		{recommend.CategoryActivities, cfg.Enrich.ActivitiesURL},
		{recommend.CategoryTransfers, cfg.Enrich.TransfersURL},
	}

	var sources []enrich.Source
	for _, u := range urls {
		if u.url == "" {
			continue
		}
		src, err := enrich.NewHTTPSource(enrich.HTTPSourceConfig{
			Name:              string(u.category) + "-adapter",
			Category:          u.category,
			BaseURL:           u.url,
			APIKey:            cfg.Upstream.APIToken,
			RequestsPerSecond: cfg.Upstream.RateLimit,
			Burst:             cfg.Upstream.RateBurst,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("enrichment source %s: %w", u.category, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}
