// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/tasarini/internal/logging"
	"github.com/tomtom215/tasarini/internal/personalize"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// SuggestionsResponse is returned by the suggestions endpoint.
type SuggestionsResponse struct {
	Destination string    `json:"destination"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	personalize.Suggestions
}

// withPersonalizer answers 503 when personalization is not configured.
func (h *Handler) withPersonalizer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.personalizer == nil {
			respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Personalization is not configured", nil)
			return
		}
		next(w, r)
	}
}

// GetProfile handles GET /api/v1/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respondProfile(ctx, w, r, start)
}

// RefreshProfile handles POST /api/v1/profile/refresh. The cached profile
// is dropped and reloaded from the travel platform.
func (h *Handler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.personalizer.InvalidateProfile(ctx)
	h.respondProfile(ctx, w, r, start)
}

// LearnFromTrip handles POST /api/v1/profile/trips. The planned trip is
// folded into the stored preferences and the refreshed profile returned.
func (h *Handler) LearnFromTrip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var trip personalize.Trip
	if !decodeJSON(w, r, &trip) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.personalizer.UpdatePreferencesFromTrip(ctx, trip); err != nil {
		h.respondUpstreamError(w, r, err, "Failed to update preferences")
		return
	}
	h.respondProfile(ctx, w, r, start)
}

// RecordBooking handles POST /api/v1/profile/bookings. Segments are
// re-evaluated against the booking, the booking is appended to the scoring
// profile of user_id and, when analytics is enabled, tracked as a
// conversion.
func (h *Handler) RecordBooking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if req.UserID != "" {
		ctx = logging.ContextWithUserID(ctx, req.UserID)
	}

	booking := recommend.Booking{
		ID:          req.ID,
		Amount:      req.Amount,
		Type:        req.Type,
		Destination: req.Destination,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.personalizer.UpdateUserSegments(ctx, booking); err != nil {
		h.respondUpstreamError(w, r, err, "Failed to update segments")
		return
	}
	h.engine.UpdateUserProfile(ctx, req.UserID, booking)
	if h.tracker != nil {
		currency := req.Currency
		if currency == "" {
			currency = "USD"
		}
		h.tracker.TrackBookingSuccess(ctx, req.ID, req.Type, req.Amount, currency, req.Source, nil)
	}
	h.respondProfile(ctx, w, r, start)
}

// ContextualSuggestions handles
// GET /api/v1/profile/suggestions?destination=&start=&end=.
func (h *Handler) ContextualSuggestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	destination := strings.TrimSpace(r.URL.Query().Get("destination"))
	if destination == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "destination is required", nil)
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if from.IsZero() || to.IsZero() {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "start and end are required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.personalizer.GetContextualSuggestions(ctx, destination, from, to)
	respondSuccess(w, r, http.StatusOK, SuggestionsResponse{
		Destination: destination,
		Start:       from,
		End:         to,
		Suggestions: s,
	}, start, false)
}

// respondProfile writes the current profile. Its user id becomes the
// tracker's default for events without a user in context.
func (h *Handler) respondProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, start time.Time) {
	profile, err := h.personalizer.GetUserProfile(ctx)
	if err != nil {
		h.respondUpstreamError(w, r, err, "Failed to load profile")
		return
	}
	if h.tracker != nil && profile.UserID != "" && profile.UserID != h.tracker.UserID() {
		if err := h.tracker.SetUserID(ctx, profile.UserID); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", profile.UserID).Msg("Failed to persist analytics user id")
		}
	}
	respondSuccess(w, r, http.StatusOK, profile, start, false)
}

// respondUpstreamError maps deadline errors to 503 and failures of the
// travel platform to 502.
func (h *Handler) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Request timed out", err)
		return
	}
	respondError(w, r, http.StatusBadGateway, ErrCodeUpstream, message, err)
}
