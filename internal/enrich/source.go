// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tasarini/internal/recommend"
	"github.com/tomtom215/tasarini/internal/travelapi"
)

const dateLayout = "2006-01-02"

// Query is what a source is asked for.
type Query struct {
	City        string
	Country     string
	Start       time.Time
	End         time.Time
	Guests      int
	BudgetLevel string
	Currency    string
}

// Source supplies candidates for one category.
type Source interface {
	Name() string
	Category() recommend.Category
	Fetch(ctx context.Context, q Query) ([]recommend.Candidate, error)
}

// HTTPSourceConfig configures an HTTPSource.
type HTTPSourceConfig struct {
	Name     string
	Category recommend.Category
	BaseURL  string
	APIKey   string

	RequestsPerSecond float64
	Burst             int
}

// HTTPSource is a generic JSON adapter. It calls
// GET <baseURL>?city=..&start=..&end=..&guests=.. and accepts either a JSON
// array or {"data": [...]}.
type HTTPSource struct {
	cfg     HTTPSourceConfig
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]map[string]interface{}]
	logger  zerolog.Logger
}

// NewHTTPSource builds an HTTPSource. Timeouts come from the caller's
// context.
func NewHTTPSource(cfg HTTPSourceConfig, logger zerolog.Logger) (*HTTPSource, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("source %s: invalid base url %q", cfg.Name, cfg.BaseURL)
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.Category)
	}

	log := logger.With().Str("source", cfg.Name).Logger()
	return &HTTPSource{
		cfg:     cfg,
		client:  &http.Client{},
		limiter: travelapi.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cb:      travelapi.NewBreaker[[]map[string]interface{}]("source-"+cfg.Name, travelapi.BreakerSettings{}, log),
		logger:  log,
	}, nil
}

// Name returns the configured source name.
func (s *HTTPSource) Name() string { return s.cfg.Name }

// Category returns the category this source fills.
func (s *HTTPSource) Category() recommend.Category { return s.cfg.Category }

// Fetch queries the adapter and normalizes its payload.
func (s *HTTPSource) Fetch(ctx context.Context, q Query) ([]recommend.Candidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	raw, err := s.cb.Execute(func() ([]map[string]interface{}, error) {
		return s.get(ctx, q)
	})
	travelapi.RecordBreakerResult("source-"+s.cfg.Name, err)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.cfg.Name, err)
	}

	out := make([]recommend.Candidate, 0, len(raw))
	for i, item := range raw {
		c := Normalize(item, s.cfg.Category)
		if c.ID == "" {
			c.ID = fmt.Sprintf("%s_%d", s.cfg.Category, i)
		}
		if c.Source == "" {
			c.Source = s.cfg.Name
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *HTTPSource) get(ctx context.Context, q Query) ([]map[string]interface{}, error) {
	params := url.Values{}
	params.Set("city", q.City)
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if !q.Start.IsZero() {
		params.Set("start", q.Start.Format(dateLayout))
	}
	if !q.End.IsZero() {
		params.Set("end", q.End.Format(dateLayout))
	}
	if q.Guests > 0 {
		params.Set("guests", strconv.Itoa(q.Guests))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", travelapi.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &travelapi.StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(truncate(body, 512)))}
	}
	return decodeItems(body)
}

func decodeItems(body []byte) ([]map[string]interface{}, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var items []map[string]interface{}
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		return items, nil
	}
	var env struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return env.Data, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
