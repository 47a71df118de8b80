// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/tasarini/internal/enrich"
	"github.com/tomtom215/tasarini/internal/logging"
	"github.com/tomtom215/tasarini/internal/personalize"
	"github.com/tomtom215/tasarini/internal/recommend"
	"github.com/tomtom215/tasarini/internal/validation"
)

// ScoredResponse is returned by the score endpoint.
type ScoredResponse struct {
	Category recommend.Category     `json:"category"`
	Items    []recommend.ScoredItem `json:"items"`
}

// PersonalizedResponse is returned by the personalize endpoint.
type PersonalizedResponse struct {
	Category     recommend.Category             `json:"category"`
	Items        []personalize.PersonalizedItem `json:"items"`
	Personalized bool                           `json:"personalized"`
}

// ScoreRecommendations handles POST /api/v1/recommendations/score.
// It returns the top ranked items for the trip with badges and breakdowns.
func (h *Handler) ScoreRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.engine.ScoreRecommendations(ctx, req.Items, req.Category, req.Trip, req.UserLocation)
	if err != nil {
		h.respondContextError(w, r, err, "Failed to score recommendations")
		return
	}
	respondSuccess(w, r, http.StatusOK, ScoredResponse{Category: req.Category, Items: items}, start, false)
}

// PersonalizeRecommendations handles POST /api/v1/recommendations/personalize.
// When the profile cannot be loaded the items come back in their original
// order with personalized=false.
func (h *Handler) PersonalizeRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.personalizer == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Personalization is not configured", nil)
		return
	}
	var req PersonalizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	pctx := personalize.Context{Trip: req.Trip}
	profile, err := h.personalizer.GetUserProfile(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Profile unavailable, returning unpersonalized items")
	} else {
		pctx.Profile = profile
	}

	items := h.personalizer.GetPersonalizedRecommendations(ctx, req.Items, req.Category, pctx)
	respondSuccess(w, r, http.StatusOK, PersonalizedResponse{
		Category:     req.Category,
		Items:        items,
		Personalized: pctx.Profile != nil,
	}, start, false)
}

// EnrichItinerary handles POST /api/v1/enrich. Source failures are
// reported inside the result; only an invalid request, a timeout or a
// scoring error fail the call.
func (h *Handler) EnrichItinerary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.orchestrator == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Enrichment is not configured", nil)
		return
	}
	var req enrich.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.orchestrator.EnrichItinerary(ctx, req, func(p enrich.Progress) {
		logging.Ctx(ctx).Debug().Str("stage", string(p.Stage)).Int("percent", p.Percent).Msg("Enrichment progress")
	})
	if err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			respondValidation(w, r, ve)
			return
		}
		h.respondContextError(w, r, err, "Failed to enrich itinerary")
		return
	}
	respondSuccess(w, r, http.StatusOK, result, start, result.Cached)
}

// respondContextError maps deadline errors to 503 and everything else to 500.
func (h *Handler) respondContextError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Request timed out", err)
		return
	}
	respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, message, err)
}
