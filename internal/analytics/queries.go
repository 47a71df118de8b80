// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"context"
	"math"
	"sort"
	"time"
)

// topProductsLimit caps Dashboard.TopProducts.
const topProductsLimit = 5

// minSampleSize is the per-variant view count below which an A/B result is
// never reported as significant.
const minSampleSize = 30

// ConversionMetrics summarizes the booking funnel.
type ConversionMetrics struct {
	TotalViews        int     `json:"totalViews"`
	TotalClicks       int     `json:"totalClicks"`
	TotalAttempts     int     `json:"totalAttempts"`
	TotalBookings     int     `json:"totalBookings"`
	TotalAbandonments int     `json:"totalAbandonments"`
	RevenueTotal      float64 `json:"revenueTotal"`
	ClickRate         float64 `json:"clickRate"`
	ConversionRate    float64 `json:"conversionRate"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	AbandonmentRate   float64 `json:"abandonmentRate"`
}

// PerformanceMetrics summarizes latency and cache efficiency. Times are in
// milliseconds.
type PerformanceMetrics struct {
	APIResponseTimes map[string]float64 `json:"apiResponseTimes"`
	ErrorRates       map[string]float64 `json:"errorRates"`
	SearchLatency    float64            `json:"searchLatency"`
	CacheHitRate     float64            `json:"cacheHitRate"`
}

// VariantResult is the outcome of one A/B arm.
type VariantResult struct {
	Variant        Variant `json:"variant"`
	SampleSize     int     `json:"sampleSize"`
	Bookings       int     `json:"bookings"`
	ConversionRate float64 `json:"conversionRate"`
	IsSignificant  bool    `json:"isSignificant"`
	Confidence     float64 `json:"confidence"`
}

// ABTestResults compares both arms.
type ABTestResults struct {
	VariantA VariantResult `json:"variantA"`
	VariantB VariantResult `json:"variantB"`
}

// ProductStat is one row of the dashboard leaderboard.
type ProductStat struct {
	ProductID      string  `json:"productId"`
	ProductType    string  `json:"productType,omitempty"`
	Views          int     `json:"views"`
	Bookings       int     `json:"bookings"`
	ConversionRate float64 `json:"conversionRate"`
	Revenue        float64 `json:"revenue"`
}

// Dashboard is the live view for the current day.
type Dashboard struct {
	ActiveSessions int           `json:"activeSessions"`
	TodayBookings  int           `json:"todayBookings"`
	TodayRevenue   float64       `json:"todayRevenue"`
	TopProducts    []ProductStat `json:"topProducts"`
}

// inRange returns persisted events with start <= ts <= end. A zero bound is
// open.
func (t *Tracker) inRange(start, end time.Time) []Event {
	all := t.Events()
	out := all[:0]
	for _, e := range all {
		if !start.IsZero() && e.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && e.Timestamp.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// GetConversionMetrics computes funnel metrics for events in [start, end].
// A non-empty productType restricts the funnel to that type.
func (t *Tracker) GetConversionMetrics(_ context.Context, start, end time.Time, productType string) ConversionMetrics {
	var m ConversionMetrics
	for _, e := range t.inRange(start, end) {
		if productType != "" && e.str(PropProductType) != productType {
			continue
		}
		switch e.Event {
		case EventProductView:
			m.TotalViews++
		case EventProductClick:
			m.TotalClicks++
		case EventBookingAttempt:
			m.TotalAttempts++
		case EventBookingSuccess:
			m.TotalBookings++
			m.RevenueTotal += e.num(PropAmount)
		case EventBookingAbandonment:
			m.TotalAbandonments++
		}
	}

	m.ClickRate = ratio(m.TotalClicks, m.TotalViews)
	m.ConversionRate = ratio(m.TotalBookings, m.TotalClicks)
	m.AbandonmentRate = ratio(m.TotalAbandonments, m.TotalAttempts)
	if m.TotalBookings > 0 {
		m.AverageOrderValue = m.RevenueTotal / float64(m.TotalBookings)
	}
	return m
}

// GetPerformanceMetrics averages API latency and error rate per API,
// search latency and cache hit rate for events in [start, end].
func (t *Tracker) GetPerformanceMetrics(_ context.Context, start, end time.Time) PerformanceMetrics {
	type apiAgg struct {
		total    float64
		timed    int
		calls    int
		failures int
	}
	apis := make(map[string]*apiAgg)
	var searchTotal float64
	var searches, hits, misses int

	for _, e := range t.inRange(start, end) {
		switch e.Event {
		case EventAPIPerformance:
			name := e.str(PropAPIName)
			if name == "" {
				continue
			}
			a := apis[name]
			if a == nil {
				a = &apiAgg{}
				apis[name] = a
			}
			a.calls++
			if !e.boolean(PropSuccess) {
				a.failures++
			}
			if rt := e.num(PropResponseTime); rt > 0 {
				a.total += rt
				a.timed++
			}
		case EventSearch:
			if rt := e.num(PropResponseTime); rt > 0 {
				searchTotal += rt
				searches++
			}
		case EventCacheUsage:
			if e.boolean(PropHit) {
				hits++
			} else {
				misses++
			}
		}
	}

	m := PerformanceMetrics{
		APIResponseTimes: make(map[string]float64, len(apis)),
		ErrorRates:       make(map[string]float64, len(apis)),
	}
	for name, a := range apis {
		if a.timed > 0 {
			m.APIResponseTimes[name] = a.total / float64(a.timed)
		}
		m.ErrorRates[name] = ratio(a.failures, a.calls)
	}
	if searches > 0 {
		m.SearchLatency = searchTotal / float64(searches)
	}
	m.CacheHitRate = ratio(hits, hits+misses)
	return m
}

// GetABTestResults compares views and bookings per variant for events in
// [start, end]. Conversion is bookings/views. Significance uses a
// two-proportion z-test.
func (t *Tracker) GetABTestResults(_ context.Context, start, end time.Time) ABTestResults {
	res := ABTestResults{
		VariantA: VariantResult{Variant: VariantA},
		VariantB: VariantResult{Variant: VariantB},
	}
	for _, e := range t.inRange(start, end) {
		var r *VariantResult
		switch Variant(e.str(PropVariant)) {
		case VariantA:
			r = &res.VariantA
		case VariantB:
			r = &res.VariantB
		default:
			continue
		}
		switch e.Event {
		case EventProductView:
			r.SampleSize++
		case EventBookingSuccess:
			r.Bookings++
		}
	}
	res.VariantA.ConversionRate = ratio(res.VariantA.Bookings, res.VariantA.SampleSize)
	res.VariantB.ConversionRate = ratio(res.VariantB.Bookings, res.VariantB.SampleSize)

	conf := confidence(res.VariantA, res.VariantB)
	significant := conf >= 0.95 &&
		res.VariantA.SampleSize >= minSampleSize && res.VariantB.SampleSize >= minSampleSize
	res.VariantA.Confidence, res.VariantB.Confidence = conf, conf
	res.VariantA.IsSignificant, res.VariantB.IsSignificant = significant, significant
	return res
}

// confidence is the two-sided confidence that the arms convert at
// different rates.
func confidence(a, b VariantResult) float64 {
	if a.SampleSize == 0 || b.SampleSize == 0 {
		return 0
	}
	na, nb := float64(a.SampleSize), float64(b.SampleSize)
	pooled := float64(a.Bookings+b.Bookings) / (na + nb)
	se := math.Sqrt(pooled * (1 - pooled) * (1/na + 1/nb))
	if se == 0 || math.IsNaN(se) {
		return 0
	}
	z := math.Abs(a.ConversionRate-b.ConversionRate) / se
	return math.Erf(z / math.Sqrt2)
}

// GetDashboardMetrics reports today's activity, from local midnight.
func (t *Tracker) GetDashboardMetrics(_ context.Context) Dashboard {
	now := t.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sessions := make(map[string]struct{})
	products := make(map[string]*ProductStat)
	var order []string
	stat := func(e *Event) *ProductStat {
		id := e.str(PropProductID)
		if id == "" {
			return nil
		}
		p := products[id]
		if p == nil {
			p = &ProductStat{ProductID: id, ProductType: e.str(PropProductType)}
			products[id] = p
			order = append(order, id)
		}
		return p
	}

	var d Dashboard
	for _, e := range t.Events() {
		if e.Timestamp.Before(midnight) {
			continue
		}
		if e.SessionID != "" {
			sessions[e.SessionID] = struct{}{}
		}
		switch e.Event {
		case EventProductView:
			if p := stat(&e); p != nil {
				p.Views++
			}
		case EventBookingSuccess:
			amount := e.num(PropAmount)
			d.TodayBookings++
			d.TodayRevenue += amount
			if p := stat(&e); p != nil {
				p.Bookings++
				p.Revenue += amount
			}
		}
	}
	d.ActiveSessions = len(sessions)

	top := make([]ProductStat, 0, len(order))
	for _, id := range order {
		p := products[id]
		p.ConversionRate = ratio(p.Bookings, p.Views)
		top = append(top, *p)
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Views > top[j].Views })
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}
	d.TopProducts = top
	return d
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
