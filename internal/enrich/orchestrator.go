// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/analytics"
	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/metrics"
	"github.com/tomtom215/tasarini/internal/personalize"
	"github.com/tomtom215/tasarini/internal/recommend"
	"github.com/tomtom215/tasarini/internal/validation"
)

// Stage names a step reported to a ProgressFunc.
type Stage string

// Progress stages, in order.
const (
	StageCache       Stage = "cache"
	StageFetch       Stage = "fetch"
	StageScore       Stage = "score"
	StagePersonalize Stage = "personalize"
	StageComplete    Stage = "complete"
)

// Progress is one progress notification.
type Progress struct {
	Stage   Stage `json:"stage"`
	Percent int   `json:"percent"`
}

// ProgressFunc receives progress notifications. It is called from the
// goroutine running EnrichItinerary.
type ProgressFunc func(Progress)

// Config controls timeouts and caching.
type Config struct {
	// SourceTimeout bounds each source call.
	SourceTimeout time.Duration

	// ResultTTL is how long an enriched itinerary stays cached.
	ResultTTL time.Duration
}

// DefaultConfig returns a 10s source timeout and a 1h result TTL.
func DefaultConfig() Config {
	return Config{
		SourceTimeout: 10 * time.Second,
		ResultTTL:     time.Hour,
	}
}

// Request is an itinerary to enrich.
type Request struct {
	Trip         recommend.TripContext `json:"trip"`
	UserLocation *recommend.GeoPoint   `json:"user_location,omitempty"`
}

// SourceFailure records a source that produced nothing.
type SourceFailure struct {
	Source   string             `json:"source"`
	Category recommend.Category `json:"category"`
	Error    string             `json:"error"`
}

// Result is an enriched itinerary. Scored categories hold at most TopN
// items; transfers are passed through in source order.
type Result struct {
	Hotels       []personalize.PersonalizedItem `json:"hotels"`
	Flights      []personalize.PersonalizedItem `json:"flights"`
	Restaurants  []personalize.PersonalizedItem `json:"restaurants"`
	Activities   []personalize.PersonalizedItem `json:"activities"`
	Transfers    []personalize.PersonalizedItem `json:"transfers"`
	Variant      analytics.Variant              `json:"variant,omitempty"`
	Personalized bool                           `json:"personalized"`
	Failures     []SourceFailure                `json:"failures,omitempty"`
	GeneratedAt  time.Time                      `json:"generatedAt"`
	Cached       bool                           `json:"cached"`
}

// Items returns the items for category.
func (r *Result) Items(category recommend.Category) []personalize.PersonalizedItem {
	if p := r.slot(category); p != nil {
		return *p
	}
	return nil
}

func (r *Result) slot(category recommend.Category) *[]personalize.PersonalizedItem {
	switch category {
	case recommend.CategoryHotels:
		return &r.Hotels
	case recommend.CategoryFlights:
		return &r.Flights
	case recommend.CategoryRestaurants:
		return &r.Restaurants
	case recommend.CategoryActivities:
		return &r.Activities
	case recommend.CategoryTransfers:
		return &r.Transfers
	default:
		return nil
	}
}

func newResult() *Result {
	empty := func() []personalize.PersonalizedItem { return []personalize.PersonalizedItem{} }
	return &Result{
		Hotels:      empty(),
		Flights:     empty(),
		Restaurants: empty(),
		Activities:  empty(),
		Transfers:   empty(),
	}
}

// Orchestrator fans out to sources and runs results through scoring,
// personalization and the A/B reorder.
type Orchestrator struct {
	cfg          Config
	sources      []Source
	engine       *recommend.Engine
	personalizer *personalize.Service
	tracker      *analytics.Tracker
	store        *cache.Store
	logger       zerolog.Logger
	now          func() time.Time
}

// NewOrchestrator wires an orchestrator. personalizer and tracker may be
// nil, which skips personalization and analytics respectively.
func NewOrchestrator(cfg Config, sources []Source, engine *recommend.Engine, personalizer *personalize.Service,
	tracker *analytics.Tracker, store *cache.Store, logger zerolog.Logger) (*Orchestrator, error) {
	if engine == nil {
		return nil, errors.New("enrich: engine is required")
	}
	if store == nil {
		return nil, errors.New("enrich: cache store is required")
	}
	if cfg.SourceTimeout <= 0 || cfg.ResultTTL <= 0 {
		return nil, fmt.Errorf("enrich: timeouts must be positive (source %s, ttl %s)", cfg.SourceTimeout, cfg.ResultTTL)
	}
	return &Orchestrator{
		cfg:          cfg,
		sources:      sources,
		engine:       engine,
		personalizer: personalizer,
		tracker:      tracker,
		store:        store,
		logger:       logger.With().Str("component", "enrich").Logger(),
		now:          time.Now,
	}, nil
}

// CacheKey is the cache key for a trip ranked for the trip's user and an
// A/B variant. Scores depend on the user's booking profile and the order on
// the variant, so both are part of the key.
func CacheKey(trip *recommend.TripContext, variant analytics.Variant) string {
	budget := interface{}(trip.DailyBudget)
	if trip.BudgetLevel != "" {
		budget = trip.BudgetLevel
	}
	user := trip.UserID
	if user == "" {
		user = recommend.ProfileKey("")
	}
	params := map[string]interface{}{
		"type":       "itinerary",
		"city":       trip.City,
		"start":      trip.StartDate.UTC().Format(dateLayout),
		"end":        trip.EndDate.UTC().Format(dateLayout),
		"passengers": trip.Travelers,
		"budget":     budget,
		"user":       user,
	}
	if variant != "" {
		params["variant"] = string(variant)
	}
	return cache.GenerateSearchKey(params)
}

// EnrichItinerary returns enriched recommendations for req. Invalid
// requests fail with a *validation.RequestValidationError. Source
// failures never fail the call; they leave their category empty and are
// listed in Result.Failures.
func (o *Orchestrator) EnrichItinerary(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if ve := validation.ValidateStruct(req); ve != nil {
		return nil, ve
	}
	if progress == nil {
		progress = func(Progress) {}
	}
	start := time.Now()
	log := o.logger.With().Str("city", req.Trip.City).Logger()

	var variant analytics.Variant
	if o.tracker != nil {
		_, variant = o.tracker.Session(ctx)
	}

	progress(Progress{Stage: StageCache, Percent: 0})
	key := CacheKey(&req.Trip, variant)
	if cached, ok := cache.GetAs[Result](ctx, o.store, key, cache.Persistent()); ok {
		o.trackCache(ctx, key, true, time.Since(start))
		cached.Cached = true
		progress(Progress{Stage: StageComplete, Percent: 100})
		log.Debug().Str("key", key).Msg("Serving cached itinerary")
		return &cached, nil
	}
	o.trackCache(ctx, key, false, time.Since(start))

	progress(Progress{Stage: StageFetch, Percent: 10})
	fetched, failures := o.fetchAll(ctx, req.Trip)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := newResult()
	result.Failures = failures
	result.GeneratedAt = o.now()

	progress(Progress{Stage: StageScore, Percent: 60})
	scored := make(map[recommend.Category][]recommend.ScoredItem, len(recommend.ScoredCategories))
	for _, cat := range recommend.ScoredCategories {
		items := fetched[cat]
		if len(items) == 0 {
			continue
		}
		s, err := o.engine.ScoreRecommendations(ctx, items, cat, req.Trip, req.UserLocation)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", cat, err)
		}
		scored[cat] = s
	}

	progress(Progress{Stage: StagePersonalize, Percent: 80})
	pctx, personalized := o.personalizationContext(ctx, &req.Trip, log)
	result.Personalized = personalized

	for _, cat := range recommend.ScoredCategories {
		s, ok := scored[cat]
		if !ok {
			continue
		}
		var items []personalize.PersonalizedItem
		if personalized {
			items = o.personalizer.GetPersonalizedRecommendations(ctx, s, cat, pctx)
		} else {
			items = wrap(s)
		}
		if o.tracker != nil {
			items = analytics.RunABTest(ctx, o.tracker, items)
			o.trackViews(ctx, cat, items)
		}
		*result.slot(cat) = items
	}
	result.Variant = variant

	for i, c := range fetched[recommend.CategoryTransfers] {
		result.Transfers = append(result.Transfers, personalize.PersonalizedItem{
			ScoredItem: recommend.ScoredItem{Item: c, Rank: i + 1},
		})
	}

	o.store.Set(ctx, key, *result, cache.WithTTL(o.cfg.ResultTTL), cache.Persistent())
	metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	progress(Progress{Stage: StageComplete, Percent: 100})

	log.Info().
		Int("failures", len(failures)).
		Bool("personalized", personalized).
		Dur("elapsed", time.Since(start)).
		Msg("Itinerary enriched")
	return result, nil
}

// fetchAll calls every source concurrently and waits for all of them.
func (o *Orchestrator) fetchAll(ctx context.Context, trip recommend.TripContext) (map[recommend.Category][]recommend.Candidate, []SourceFailure) {
	q := Query{
		City:        trip.City,
		Country:     trip.Country,
		Start:       trip.StartDate,
		End:         trip.EndDate,
		Guests:      trip.Travelers,
		BudgetLevel: trip.BudgetLevel,
		Currency:    trip.Currency,
	}

	type outcome struct {
		items []recommend.Candidate
		err   error
	}
	results := make([]outcome, len(o.sources))

	var wg sync.WaitGroup
	for i, src := range o.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			items, err := o.fetchOne(ctx, src, q)
			results[i] = outcome{items: items, err: err}
		}(i, src)
	}
	wg.Wait()

	// Merge in registration order so same-category sources are stable.
	out := make(map[recommend.Category][]recommend.Candidate)
	var failures []SourceFailure
	for i, src := range o.sources {
		r := results[i]
		if r.err != nil {
			failures = append(failures, SourceFailure{Source: src.Name(), Category: src.Category(), Error: r.err.Error()})
			continue
		}
		out[src.Category()] = append(out[src.Category()], r.items...)
	}
	return out, failures
}

func (o *Orchestrator) fetchOne(ctx context.Context, src Source, q Query) ([]recommend.Candidate, error) {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.SourceTimeout)
	defer cancel()

	start := time.Now()
	items, err := src.Fetch(sctx, q)
	elapsed := time.Since(start)

	outcome := "success"
	switch {
	case err != nil && errors.Is(sctx.Err(), context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordEnrichmentSource(string(src.Category()), outcome)
	if o.tracker != nil {
		code := ""
		if err != nil {
			code = outcome
		}
		o.tracker.TrackAPIPerformance(ctx, src.Name(), string(src.Category()), elapsed, err == nil, code)
	}

	if err != nil {
		o.logger.Warn().Err(err).
			Str("source", src.Name()).
			Str("category", string(src.Category())).
			Str("outcome", outcome).
			Msg("Enrichment source failed")
		return nil, err
	}

	for i := range items {
		if items[i].Category == "" {
			items[i].Category = src.Category()
		}
	}
	return items, nil
}

// personalizationContext loads the profile. Any failure disables
// personalization for this request.
func (o *Orchestrator) personalizationContext(ctx context.Context, trip *recommend.TripContext, log zerolog.Logger) (personalize.Context, bool) {
	if o.personalizer == nil {
		return personalize.Context{}, false
	}
	profile, err := o.personalizer.GetUserProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Profile unavailable, skipping personalization")
		return personalize.Context{}, false
	}
	return personalize.Context{Profile: profile, Trip: trip}, true
}

func (o *Orchestrator) trackCache(ctx context.Context, key string, hit bool, elapsed time.Duration) {
	if o.tracker != nil {
		o.tracker.TrackCacheUsage(ctx, key, hit, elapsed)
	}
}

func (o *Orchestrator) trackViews(ctx context.Context, cat recommend.Category, items []personalize.PersonalizedItem) {
	for i := range items {
		it := &items[i].Item
		id := it.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", cat, i)
		}
		source := it.Source
		if source == "" {
			source = "enrichment"
		}
		o.tracker.TrackProductView(ctx, cat.ProductType(), id, source, map[string]interface{}{"position": i + 1})
	}
}

func wrap(items []recommend.ScoredItem) []personalize.PersonalizedItem {
	out := make([]personalize.PersonalizedItem, len(items))
	for i, s := range items {
		out[i] = personalize.PersonalizedItem{ScoredItem: s}
	}
	return out
}
