// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tasarini/internal/cache"
	"github.com/tomtom215/tasarini/internal/recommend"
)

// ProfileCacheKey is the cache key for the current user's profile.
const ProfileCacheKey = "user_profile"

const (
	defaultUserID  = "current"
	defaultWeather = "sunny"
	maxMerged      = 5
)

// PreferencesAPI reads and updates the upstream preferences document.
type PreferencesAPI interface {
	GetPreferences(ctx context.Context) (*PreferencesDocument, error)
	PatchPreferences(ctx context.Context, doc PreferencesDocument) error
}

// BookingsAPI lists the current user's bookings created since a time.
type BookingsAPI interface {
	ListBookings(ctx context.Context, since time.Time) ([]recommend.Booking, error)
}

// Config holds the Service settings.
type Config struct {
	// ProfileTTL is how long a fetched profile is served from the cache.
	ProfileTTL time.Duration

	// HistoryWindow is how far back bookings are read when building a profile.
	HistoryWindow time.Duration

	// RecentWindow is the lookback for the frequent traveler segment.
	RecentWindow time.Duration

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns 30 minute profiles, a 365 day history and a 90 day
// recent window.
func DefaultConfig() Config {
	return Config{
		ProfileTTL:    30 * time.Minute,
		HistoryWindow: 365 * 24 * time.Hour,
		RecentWindow:  90 * 24 * time.Hour,
	}
}

// Service personalizes rankings from the user's declared preferences and
// booking behavior.
type Service struct {
	cfg      Config
	prefs    PreferencesAPI
	bookings BookingsAPI
	store    *cache.Store
	logger   zerolog.Logger
	now      func() time.Time

	weather WeatherFunc
	events  EventsFunc

	// mu serializes profile read-modify-write cycles.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithWeather sets the weather lookup used by GetContextualSuggestions.
func WithWeather(f WeatherFunc) Option {
	return func(s *Service) { s.weather = f }
}

// WithEvents sets the local events lookup used by GetContextualSuggestions.
func WithEvents(f EventsFunc) Option {
	return func(s *Service) { s.events = f }
}

// NewService creates a personalization service. bookings may be nil.
func NewService(cfg Config, prefs PreferencesAPI, bookings BookingsAPI, store *cache.Store, logger zerolog.Logger, opts ...Option) (*Service, error) {
	if prefs == nil {
		return nil, errors.New("personalize: preferences API is required")
	}
	if store == nil {
		return nil, errors.New("personalize: cache store is required")
	}

	d := DefaultConfig()
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = d.ProfileTTL
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = d.HistoryWindow
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = d.RecentWindow
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	s := &Service{
		cfg:      cfg,
		prefs:    prefs,
		bookings: bookings,
		store:    store,
		logger:   logger.With().Str("component", "personalize").Logger(),
		now:      now,
		weather:  defaultWeatherLookup,
		events:   defaultEventsLookup,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetUserProfile returns the current user's profile.
//
// The profile is served from the cache when present. Otherwise it is fetched
// from the preferences API, absent fields are filled from defaults, it is
// enriched from the booking history and cached. Errors are returned so the
// caller can skip personalization.
func (s *Service) GetUserProfile(ctx context.Context) (*UserProfile, error) {
	p, err := cache.GetOrSet(ctx, s.store, ProfileCacheKey, s.fetchProfile, cache.WithTTL(s.cfg.ProfileTTL))
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return p.clone(), nil
}

// InvalidateProfile drops the cached profile so the next read refetches it.
// Writes call it when the platform rejects a patch, since the stored
// document may then differ from the cached one.
func (s *Service) InvalidateProfile(ctx context.Context) {
	s.store.Delete(ctx, ProfileCacheKey)
}

func (s *Service) fetchProfile(ctx context.Context) (UserProfile, error) {
	doc, err := s.prefs.GetPreferences(ctx)
	if err != nil {
		return UserProfile{}, fmt.Errorf("fetch preferences: %w", err)
	}
	if doc == nil {
		doc = &PreferencesDocument{}
	}

	p := UserProfile{UserID: doc.UserID}
	if p.UserID == "" {
		p.UserID = defaultUserID
	}

	if doc.Preferences != nil {
		p.Preferences = *doc.Preferences
		fillPreferences(&p.Preferences)
	} else {
		p.Preferences = DefaultPreferences()
	}

	if doc.BehaviorProfile != nil {
		p.BehaviorProfile = *doc.BehaviorProfile
		fillBehaviorProfile(&p.BehaviorProfile)
	} else {
		p.BehaviorProfile = DefaultBehaviorProfile()
	}

	if doc.ContextualData != nil {
		p.ContextualData = *doc.ContextualData
	} else {
		p.ContextualData.CurrentWeather = defaultWeather
	}
	if p.ContextualData.Seasonality == "" {
		p.ContextualData.Seasonality = SeasonOf(s.now())
	}

	p.Segments = dedupe(doc.Segments)
	if len(p.Segments) == 0 {
		p.Segments = []string{SegmentNewUser}
	}

	s.enrichWithBookingHistory(ctx, &p)

	s.logger.Debug().Str("user_id", p.UserID).Strs("segments", p.Segments).Msg("Loaded user profile")
	return p, nil
}

// enrichWithBookingHistory sets the typical budget to the mean booking amount
// and records the distinct destinations. Failures leave the profile as is.
func (s *Service) enrichWithBookingHistory(ctx context.Context, p *UserProfile) {
	bookings := s.recentBookings(ctx, s.cfg.HistoryWindow)
	if len(bookings) == 0 {
		return
	}

	sum, n := 0.0, 0
	var destinations []string
	for _, b := range bookings {
		if b.Amount > 0 {
			sum += b.Amount
			n++
		}
		if b.Destination != "" {
			destinations = append(destinations, b.Destination)
		}
	}
	if n > 0 {
		p.Preferences.Budget.Typical = sum / float64(n)
	}
	p.BehaviorProfile.LoyaltyIndicators.RepeatDestinations = dedupe(destinations)
}

func (s *Service) recentBookings(ctx context.Context, window time.Duration) []recommend.Booking {
	if s.bookings == nil {
		return nil
	}
	bookings, err := s.bookings.ListBookings(ctx, s.now().Add(-window))
	if err != nil {
		s.logger.Warn().Err(err).Dur("window", window).Msg("Failed to list bookings")
		return nil
	}
	return bookings
}

// UpdatePreferencesFromTrip folds a planned trip into the profile. The
// typical budget moves 30% toward the trip budget and the trip's
// accommodation types, cuisines and activity categories are merged, keeping
// the five most frequent of each. The profile is saved upstream and the
// cache refreshed.
func (s *Service) UpdatePreferencesFromTrip(ctx context.Context, trip Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.GetUserProfile(ctx)
	if err != nil {
		return err
	}

	prefs := &p.Preferences
	if trip.DailyBudget > 0 {
		prefs.Budget.Typical = prefs.Budget.Typical*0.7 + trip.DailyBudget*0.3
	}
	if len(trip.AccommodationTypes) > 0 {
		prefs.Accommodation.PreferredTypes = mergePreferences(prefs.Accommodation.PreferredTypes, trip.AccommodationTypes)
	}
	if len(trip.CuisineTypes) > 0 {
		prefs.Culinary.CuisinePreferences = mergePreferences(prefs.Culinary.CuisinePreferences, trip.CuisineTypes)
	}
	if len(trip.ActivityCategories) > 0 {
		prefs.Activities.PreferredCategories = mergePreferences(prefs.Activities.PreferredCategories, trip.ActivityCategories)
	}
	if trip.GroupType != "" {
		prefs.Travel.GroupDynamics = trip.GroupType
	}

	segs := newSegmentSet(p.Segments)
	applyGroupSegment(segs, p)
	p.Segments = segs.list()

	return s.save(ctx, p)
}

// UpdateUserSegments re-evaluates the segments after a booking.
func (s *Service) UpdateUserSegments(ctx context.Context, booking recommend.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.GetUserProfile(ctx)
	if err != nil {
		return err
	}

	segs := newSegmentSet(p.Segments)
	typical := p.Preferences.Budget.Typical
	switch {
	case booking.Amount > typical*1.5:
		segs.add(SegmentPremiumSpender)
		segs.remove(SegmentBudgetConscious)
	case booking.Amount < typical*0.7:
		segs.add(SegmentBudgetConscious)
		segs.remove(SegmentPremiumSpender)
	}

	recent := s.recentBookings(ctx, s.cfg.RecentWindow)
	if len(recent) >= 3 {
		segs.add(SegmentFrequentTraveler)
	}
	destinations := make([]string, 0, len(recent))
	for _, b := range recent {
		if b.Destination != "" {
			destinations = append(destinations, b.Destination)
		}
	}
	if len(dedupe(destinations)) >= 5 {
		segs.add(SegmentDestinationExplorer)
	}
	applyGroupSegment(segs, p)

	p.Segments = segs.list()
	return s.save(ctx, p)
}

func (s *Service) save(ctx context.Context, p *UserProfile) error {
	prefs := p.Preferences
	behavior := p.BehaviorProfile
	contextual := p.ContextualData
	doc := PreferencesDocument{
		Preferences:     &prefs,
		BehaviorProfile: &behavior,
		Segments:        p.Segments,
		ContextualData:  &contextual,
	}
	if err := s.prefs.PatchPreferences(ctx, doc); err != nil {
		s.InvalidateProfile(ctx)
		return fmt.Errorf("save user profile: %w", err)
	}

	s.store.Set(ctx, ProfileCacheKey, *p, cache.WithTTL(s.cfg.ProfileTTL))
	return nil
}

// mergePreferences combines existing and incoming values and keeps the five
// most frequent. Ties keep first-seen order.
func mergePreferences(existing, incoming []string) []string {
	combined := make([]string, 0, len(existing)+len(incoming))
	combined = append(combined, existing...)
	combined = append(combined, incoming...)
	return topByCount(combined, maxMerged)
}
