// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tasarini/internal/validation"
)

// TrackEventResponse reports the buffer after a tracked event.
type TrackEventResponse struct {
	SessionID string `json:"sessionId"`
	Variant   string `json:"variant"`
	Buffered  int    `json:"buffered"`
}

// withTracker answers 503 when analytics is disabled.
func (h *Handler) withTracker(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.tracker == nil {
			respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Analytics is not configured", nil)
			return
		}
		next(w, r)
	}
}

// TrackEvent handles POST /api/v1/analytics/events.
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req TrackEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.tracker.Track(r.Context(), req.Event, req.Category, req.Properties)
	sid, variant := h.tracker.Session(r.Context())
	respondSuccess(w, r, http.StatusAccepted, TrackEventResponse{
		SessionID: sid,
		Variant:   string(variant),
		Buffered:  h.tracker.Buffered(),
	}, start, false)
}

// FlushAnalytics handles POST /api/v1/analytics/flush.
func (h *Handler) FlushAnalytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	pending := h.tracker.Buffered()
	if err := h.tracker.Flush(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeStorage, "Failed to flush analytics events", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]int{"flushed": pending}, start, false)
}

// ConversionMetrics handles GET /api/v1/analytics/conversion
// (?start, ?end, ?product_type).
func (h *Handler) ConversionMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	m := h.tracker.GetConversionMetrics(r.Context(), from, to, r.URL.Query().Get("product_type"))
	respondSuccess(w, r, http.StatusOK, m, start, false)
}

// PerformanceMetrics handles GET /api/v1/analytics/performance.
func (h *Handler) PerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, h.tracker.GetPerformanceMetrics(r.Context(), from, to), start, false)
}

// ABTestResults handles GET /api/v1/analytics/abtest.
func (h *Handler) ABTestResults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, h.tracker.GetABTestResults(r.Context(), from, to), start, false)
}

// Dashboard handles GET /api/v1/analytics/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.tracker.GetDashboardMetrics(r.Context()), time.Now(), false)
}

func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, to, err := dateRange(r)
	if err != nil {
		respondValidation(w, r, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field:   "start/end",
			Tag:     "date_range",
			Message: err.Error(),
		}}})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
