// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package travelapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasarini/internal/personalize"
	"github.com/tomtom215/tasarini/internal/recommend"
)

const (
	preferencesPath = "/api/preferences/"
	bookingsPath    = "/api/bookings/"
)

// GetPreferences fetches the current user's preference document.
func (c *Client) GetPreferences(ctx context.Context) (*personalize.PreferencesDocument, error) {
	var doc personalize.PreferencesDocument
	if err := c.do(ctx, requestConfig{method: http.MethodGet, path: preferencesPath}, &doc); err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &doc, nil
}

// PatchPreferences sends a partial preference update.
func (c *Client) PatchPreferences(ctx context.Context, patch personalize.PreferencesDocument) error {
	if err := c.do(ctx, requestConfig{method: http.MethodPatch, path: preferencesPath, body: patch}, nil); err != nil {
		return fmt.Errorf("patch preferences: %w", err)
	}
	return nil
}

// ListBookings returns bookings created at or after since. A zero since
// returns everything the endpoint serves.
func (c *Client) ListBookings(ctx context.Context, since time.Time) ([]recommend.Booking, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}

	var page bookingPage
	if err := c.do(ctx, requestConfig{method: http.MethodGet, path: bookingsPath, query: q}, &page); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	out := make([]recommend.Booking, 0, len(page.records))
	for _, r := range page.records {
		b := r.toBooking()
		if !since.IsZero() && !b.CreatedAt.IsZero() && b.CreatedAt.Before(since) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// bookingPage accepts a bare array or an envelope under results or data.
type bookingPage struct {
	records []bookingRecord
}

func (p *bookingPage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.records)
	}
	var env struct {
		Results []bookingRecord `json:"results"`
		Data    []bookingRecord `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	p.records = env.Results
	if p.records == nil {
		p.records = env.Data
	}
	return nil
}

// bookingRecord is a booking as the platform serializes it.
type bookingRecord struct {
	ID          flexString `json:"id"`
	TotalAmount flexFloat  `json:"total_amount"`
	Amount      flexFloat  `json:"amount"`
	BookingType string     `json:"booking_type"`
	Destination string     `json:"destination"`
	RoomDetail  *struct {
		Name         string `json:"name"`
		TouristPoint string `json:"tourist_point"`
	} `json:"room_detail"`
	CreatedAt string `json:"created_at"`
}

func (r *bookingRecord) toBooking() recommend.Booking {
	b := recommend.Booking{
		ID:          string(r.ID),
		Amount:      float64(r.TotalAmount),
		Type:        r.BookingType,
		Destination: r.Destination,
	}
	if b.Amount == 0 {
		b.Amount = float64(r.Amount)
	}
	if r.RoomDetail != nil && r.RoomDetail.TouristPoint != "" {
		b.Destination = r.RoomDetail.TouristPoint
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		b.CreatedAt = t
	}
	return b
}

// flexFloat decodes a JSON number or a numeric string. Anything else is 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes a JSON string or number as a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}
