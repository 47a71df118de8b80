// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status          string  `json:"status"`
	Uptime          float64 `json:"uptime_seconds"`
	CacheEntries    int     `json:"cache_entries"`
	DurableTier     bool    `json:"durable_tier"`
	AnalyticsBuffer int     `json:"analytics_buffered"`
	Enrichment      bool    `json:"enrichment"`
	Personalization bool    `json:"personalization"`
}

// HealthLive handles GET /api/v1/health/live. It only proves the process
// is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, time.Now(), false)
}

// Health handles GET /api/v1/health with a summary of wired components.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:          "healthy",
		Uptime:          time.Since(h.startTime).Seconds(),
		CacheEntries:    h.store.Len(),
		DurableTier:     h.store.Persister() != nil,
		Enrichment:      h.orchestrator != nil,
		Personalization: h.personalizer != nil,
	}
	if h.tracker != nil {
		status.AnalyticsBuffer = h.tracker.Buffered()
	}
	respondSuccess(w, r, http.StatusOK, status, time.Now(), false)
}
