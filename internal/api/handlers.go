// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package api

import (
	"errors"
	"time"

	"github.com/tomtom215/tasarini/internal/analytics"
	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/enrich"
	"github.com/tomtom215/tasarini/internal/personalize"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// Deps are the services the handlers call. Engine and Store are required;
// routes whose service is nil answer 503.
type Deps struct {
	Engine       *recommend.Engine
	Personalizer *personalize.Service
	Orchestrator *enrich.Orchestrator
	Tracker      *analytics.Tracker
	Store        *cache.Store

	// RequestTimeout bounds each handler's work. Defaults to 30s.
	RequestTimeout time.Duration
}

// Handler serves the /api/v1 routes.
type Handler struct {
	engine       *recommend.Engine
	personalizer *personalize.Service
	orchestrator *enrich.Orchestrator
	tracker      *analytics.Tracker
	store        *cache.Store
	timeout      time.Duration
	startTime    time.Time
}

// NewHandler validates deps and returns a Handler.
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Engine == nil {
		return nil, errors.New("api: recommend engine is required")
	}
	if deps.Store == nil {
		return nil, errors.New("api: cache store is required")
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		engine:       deps.Engine,
		personalizer: deps.Personalizer,
		orchestrator: deps.Orchestrator,
		tracker:      deps.Tracker,
		store:        deps.Store,
		timeout:      timeout,
		startTime:    time.Now(),
	}, nil
}
