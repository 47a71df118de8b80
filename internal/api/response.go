// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasarini/internal/logging"
	"github.com/tomtom215/tasarini/internal/models"
	"github.com/tomtom215/tasarini/internal/validation"
)

// Error codes used in the envelope.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeStorage          = "STORAGE_ERROR"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a success envelope. start is when handling began;
// cached results report a zero query time.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time, cached bool) {
	resp := models.NewSuccess(data)
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	resp.Metadata.Cached = cached
	if !cached {
		resp.Metadata.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondJSON(w, status, resp)
}

// respondError writes an error envelope. err, if set, is logged and never
// returned to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("path", r.URL.Path).
			Err(err).
			Msg("API error")
	}
	resp := models.NewError(code, message, nil)
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	respondJSON(w, status, resp)
}

// respondValidation writes 400 VALIDATION_ERROR with per-field details.
func respondValidation(w http.ResponseWriter, r *http.Request, ve *validation.RequestValidationError) {
	apiErr := ve.ToAPIError()
	resp := models.NewError(apiErr.Code, apiErr.Message, apiErr.Details)
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	respondJSON(w, http.StatusBadRequest, resp)
}

// decodeJSON decodes the body into dst and validates it. On failure the
// error response has already been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Could not read request body", err)
		return false
	}
	if len(body) > maxBodyBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "Request body too large", nil)
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Request body is required", nil)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, fmt.Sprintf("Invalid JSON: %v", err), nil)
		return false
	}
	if ve := validation.ValidateStruct(dst); ve != nil {
		respondValidation(w, r, ve)
		return false
	}
	return true
}
