// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package enrich

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasarini/internal/recommend"
)

// Normalize maps a raw adapter object onto a Candidate. Unknown fields are
// kept in Raw. Missing values stay at their zero value, which the scorer
// treats as neutral.
func Normalize(raw map[string]interface{}, category recommend.Category) recommend.Candidate {
	c := recommend.Candidate{
		ID:       str(raw, "id"),
		Name:     str(raw, "name"),
		Category: category,
		Source:   str(raw, "source"),
		Raw:      raw,
	}
	if c.Name == "" {
		c.Name = str(raw, "title")
	}
	c.IsPartner, _ = raw["isPartner"].(bool)

	c.Price, c.Currency = price(raw)

	if r, ok := num(raw["rating"]); ok {
		c.Rating = r
	} else if r, ok := num(raw["score"]); ok {
		c.Rating = r
	}
	if n, ok := num(raw["reviewCount"]); ok {
		c.ReviewCount = int(n)
	} else if n, ok := num(raw["reviews"]); ok {
		c.ReviewCount = int(n)
	}

	c.Location = location(raw)

	if v, ok := raw["availability"].(bool); ok {
		c.Available = &v
	} else if v, ok := raw["available"].(bool); ok {
		c.Available = &v
	}
	c.BookingAvailable, _ = raw["bookingAvailable"].(bool)
	c.BookingRequired, _ = raw["bookingRequired"].(bool)

	c.Type = str(raw, "type")
	c.Amenities = strs(raw["amenities"])
	c.Cuisine = str(raw, "cuisine")
	c.PriceRange = str(raw, "priceRange")
	c.ActivityCategory = str(raw, "category")
	c.Intensity = str(raw, "intensity")
	if n, ok := num(raw["stops"]); ok {
		stops := int(n)
		c.Stops = &stops
	}
	return c
}

// price resolves price.amount, then cost, then pricePerNight, then a
// numeric price. Zero or negative values fall through to the next field.
func price(raw map[string]interface{}) (float64, string) {
	cur, _ := raw["currency"].(string)
	if p, ok := raw["price"].(map[string]interface{}); ok {
		if c, ok := p["currency"].(string); ok && c != "" {
			cur = c
		}
		if v, ok := num(p["amount"]); ok && v > 0 {
			return v, cur
		}
	}
	for _, k := range []string{"cost", "pricePerNight", "price"} {
		if v, ok := num(raw[k]); ok && v > 0 {
			return v, cur
		}
	}
	return 0, cur
}

// location reads location{latitude,longitude}, location{lat,lng} or the
// same keys at the top level. A zero coordinate counts as missing.
func location(raw map[string]interface{}) *recommend.GeoPoint {
	candidates := []map[string]interface{}{raw}
	if m, ok := raw["location"].(map[string]interface{}); ok {
		candidates = append([]map[string]interface{}{m}, candidates...)
	}
	for _, m := range candidates {
		lat, okLat := firstNum(m, "latitude", "lat")
		lng, okLng := firstNum(m, "longitude", "lng")
		if okLat && okLng && lat != 0 && lng != 0 {
			return &recommend.GeoPoint{Lat: lat, Lng: lng}
		}
	}
	return nil
}

func firstNum(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := num(m[k]); ok {
			return v, true
		}
	}
	return 0, false
}

// num accepts JSON numbers and numeric strings ("245.50").
func num(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func str(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64, int, int64, json.Number:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func strs(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
