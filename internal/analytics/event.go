// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"time"

	"github.com/goccy/go-json"
)

// Category groups events.
type Category string

// Event categories.
const (
	CategoryBooking     Category = "booking"
	CategorySearch      Category = "search"
	CategoryUser        Category = "user"
	CategoryPerformance Category = "performance"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBooking, CategorySearch, CategoryUser, CategoryPerformance:
		return true
	default:
		return false
	}
}

// Event names emitted by the Track helpers.
const (
	EventProductView        = "product_view"
	EventProductClick       = "product_click"
	EventBookingAttempt     = "booking_attempt"
	EventBookingSuccess     = "booking_success"
	EventBookingAbandonment = "booking_abandonment"
	EventSearch             = "search"
	EventAPIPerformance     = "api_performance"
	EventCacheUsage         = "cache_usage"
)

// Property keys read back by the metric queries.
const (
	PropVariant      = "abTestVariant"
	PropProductType  = "productType"
	PropProductID    = "productId"
	PropAmount       = "amount"
	PropRevenue      = "revenue"
	PropAPIName      = "apiName"
	PropResponseTime = "responseTime"
	PropSuccess      = "success"
	PropHit          = "hit"
)

// Event is one behavioral event. Events are append-only.
type Event struct {
	Event      string                 `json:"event"`
	Category   Category               `json:"category"`
	Properties map[string]interface{} `json:"properties"`
	Timestamp  time.Time              `json:"timestamp"`
	SessionID  string                 `json:"sessionId"`
	UserID     string                 `json:"userId,omitempty"`
}

func (e *Event) str(key string) string {
	s, _ := e.Properties[key].(string)
	return s
}

func (e *Event) boolean(key string) bool {
	b, _ := e.Properties[key].(bool)
	return b
}

// num reads a numeric property. Values that went through JSON come back as
// float64; values recorded in-process keep their Go type.
func (e *Event) num(key string) float64 {
	switch v := e.Properties[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}
