// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package travelapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned when the upstream cannot serve the request:
// the breaker is open, the transport failed or the server answered 5xx.
var ErrUnavailable = errors.New("travelapi: upstream unavailable")

// maxErrorBodySize caps how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps server errors to ErrUnavailable.
func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	return nil
}

// Config configures a Client.
type Config struct {
	BaseURL string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// RequestsPerSecond and Burst feed the token bucket. A zero rate
	// disables limiting.
	RequestsPerSecond float64
	Burst             int

	// AuthToken is sent as a bearer token when set.
	AuthToken string

	// BreakerName labels the breaker metrics.
	BreakerName string
}

// DefaultConfig returns the client defaults for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
		BreakerName:       "travel-api",
	}
}

// NewLimiter builds the token bucket for rps and burst. rps <= 0 means
// unlimited.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Client talks to the travel platform REST API.
//
// Every call waits on the rate limiter and runs through the circuit
// breaker. 4xx responses do not count against the breaker.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	name    string
	logger  zerolog.Logger
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "travel-api"
	}

	log := logger.With().Str("component", "travelapi").Logger()
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AuthToken,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cb: NewBreaker[[]byte](cfg.BreakerName, BreakerSettings{
			IsSuccessful: isClientError,
		}, log),
		name:   cfg.BreakerName,
		logger: log,
	}, nil
}

func isClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError
}

// requestConfig describes one API call.
type requestConfig struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

// do executes cfg and decodes a JSON response into result when non-nil.
func (c *Client) do(ctx context.Context, cfg requestConfig, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var payload []byte
	if cfg.body != nil {
		var err error
		if payload, err = json.Marshal(cfg.body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, cfg, payload)
	})
	RecordBreakerResult(c.name, err)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", cfg.method).
			Str("path", cfg.path).
			Dur("elapsed", time.Since(start)).
			Msg("Upstream call failed")
		if IsRejected(err) {
			return fmt.Errorf("%s %s: %w: %w", cfg.method, cfg.path, ErrUnavailable, err)
		}
		return fmt.Errorf("%s %s: %w", cfg.method, cfg.path, err)
	}

	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s response: %w", cfg.path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, cfg requestConfig, payload []byte) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, c.baseURL+cfg.path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return b, nil
}

// BreakerState returns the breaker's current state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}
