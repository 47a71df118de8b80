// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/tasarini/internal/analytics"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// ScoreRequest is the body of POST /recommendations/score.
type ScoreRequest struct {
	Items        []recommend.Candidate `json:"items" validate:"required,max=500,dive"`
	Category     recommend.Category    `json:"category" validate:"required,travel_category"`
	Trip         recommend.TripContext `json:"trip"`
	UserLocation *recommend.GeoPoint   `json:"user_location,omitempty"`
}

// PersonalizeRequest is the body of POST /recommendations/personalize.
type PersonalizeRequest struct {
	Items    []recommend.ScoredItem `json:"items" validate:"required,max=500"`
	Category recommend.Category     `json:"category" validate:"required,travel_category"`
	Trip     *recommend.TripContext `json:"trip,omitempty"`
}

// TrackEventRequest is the body of POST /analytics/events.
type TrackEventRequest struct {
	Event      string                 `json:"event" validate:"required,max=64"`
	Category   analytics.Category     `json:"category" validate:"required,oneof=booking search user performance"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// BookingRequest is the body of POST /profile/bookings.
type BookingRequest struct {
	UserID      string  `json:"user_id,omitempty" validate:"omitempty,max=128"`
	ID          string  `json:"id" validate:"required,max=128"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Type        string  `json:"booking_type" validate:"required,max=32"`
	Destination string  `json:"destination,omitempty" validate:"max=128"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Source      string  `json:"source,omitempty" validate:"max=64"`
}

// InvalidateRequest is the body of POST /cache/invalidate.
type InvalidateRequest struct {
	Pattern    string `json:"pattern" validate:"required,max=256"`
	Persistent bool   `json:"persistent"`
}

// dateRange reads the optional start and end query parameters. Each is
// RFC 3339 or a plain date; a plain end date includes that whole day.
func dateRange(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	if start, err = parseBound(q.Get("start"), false); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	if end, err = parseBound(q.Get("end"), true); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return start, end, nil
}

func parseBound(v string, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("want RFC 3339 or YYYY-MM-DD, got %q", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
