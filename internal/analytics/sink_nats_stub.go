// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

//go:build !nats

package analytics

import (
	"fmt"
	"time"
)

// NATSConfig configures the JetStream sink.
type NATSConfig struct {
	URL             string
	Subject         string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// NewNATSSink is unavailable without the nats build tag.
func NewNATSSink(_ NATSConfig) (*WatermillSink, error) {
	return nil, fmt.Errorf("NATS sink not available: build with -tags=nats")
}
