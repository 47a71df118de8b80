// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/validation"
)

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, http.StatusOK, h.store.Stats(r.Context()), start, false)
}

// InvalidateCache handles POST /api/v1/cache/invalidate. The pattern is a
// Go regular expression matched against unprefixed keys.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req InvalidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		respondValidation(w, r, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field:   "pattern",
			Tag:     "regexp",
			Value:   req.Pattern,
			Message: "pattern is not a valid regular expression: " + err.Error(),
		}}})
		return
	}

	removed, err := h.store.InvalidatePattern(r.Context(), re, h.cacheOptions(req.Persistent)...)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeStorage, "Failed to invalidate cache", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]int{"removed": removed}, start, false)
}

// ClearCache handles DELETE /api/v1/cache. ?persistent=true also clears
// the durable tier.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	persistent, _ := strconv.ParseBool(r.URL.Query().Get("persistent"))
	before := h.store.Len()
	h.store.Clear(r.Context(), h.cacheOptions(persistent)...)
	respondSuccess(w, r, http.StatusOK, map[string]int{"cleared": before - h.store.Len()}, start, false)
}

func (h *Handler) cacheOptions(persistent bool) []cache.Option {
	if persistent {
		return []cache.Option{cache.Persistent()}
	}
	return nil
}
