// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"context"
	"fmt"
	"time"
)

// Weather conditions with dedicated advice.
const (
	WeatherRainy = "rainy"
	WeatherSnowy = "snowy"
)

// WeatherFunc returns the expected weather condition at destination on date.
type WeatherFunc func(ctx context.Context, destination string, date time.Time) (string, error)

// EventsFunc returns the events at destination between start and end.
type EventsFunc func(ctx context.Context, destination string, start, end time.Time) ([]LocalEvent, error)

func defaultWeatherLookup(context.Context, string, time.Time) (string, error) {
	return defaultWeather, nil
}

func defaultEventsLookup(_ context.Context, destination string, start, _ time.Time) ([]LocalEvent, error) {
	return []LocalEvent{{
		Name:     fmt.Sprintf("Cultural events in %s", destination),
		Date:     start.Format(time.RFC3339),
		Category: "culture",
	}}, nil
}

// GetContextualSuggestions returns weather tips, packing advice, local events
// and seasonal activities for a stay. Lookup failures leave the affected
// lists empty.
func (s *Service) GetContextualSuggestions(ctx context.Context, destination string, start, end time.Time) Suggestions {
	out := Suggestions{
		WeatherTips:        []string{},
		LocalEvents:        []string{},
		SeasonalActivities: []string{},
		PackingAdvice:      []string{},
	}

	if condition, err := s.weather(ctx, destination, start); err != nil {
		s.logger.Warn().Err(err).Str("destination", destination).Msg("Weather lookup failed")
	} else if condition != "" {
		out.WeatherTips = weatherTips(condition)
		out.PackingAdvice = packingAdvice(condition)
	}

	if events, err := s.events(ctx, destination, start, end); err != nil {
		s.logger.Warn().Err(err).Str("destination", destination).Msg("Events lookup failed")
	} else {
		for _, e := range events {
			out.LocalEvents = append(out.LocalEvents, e.Name)
		}
	}

	out.SeasonalActivities = seasonalActivities(destination, SeasonOf(start))
	return out
}

func weatherTips(condition string) []string {
	switch condition {
	case WeatherRainy:
		return []string{"Bring an umbrella"}
	case WeatherSnowy:
		return []string{"Dress warmly"}
	default:
		return []string{"Pack light clothing"}
	}
}

func packingAdvice(condition string) []string {
	switch condition {
	case WeatherRainy:
		return []string{"Waterproof coat", "Waterproof shoes"}
	case WeatherSnowy:
		return []string{"Gloves", "Warm hat"}
	default:
		return []string{"Sunglasses", "Sunscreen"}
	}
}

func seasonalActivities(destination string, season Season) []string {
	switch season {
	case SeasonWinter:
		return []string{fmt.Sprintf("Christmas markets in %s", destination), "Snow sports"}
	case SeasonSummer:
		return []string{"Open-air festivals", "Water sports"}
	case SeasonSpring:
		return []string{"Garden visits", "Easy hikes"}
	default:
		return []string{"Wine routes", "Food getaways"}
	}
}
