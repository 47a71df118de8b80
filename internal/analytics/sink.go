// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tasarini/internal/logging"
)

// DefaultTopic is the topic flushed batches are published to.
const DefaultTopic = "tasarini.analytics.events"

// Sink receives each flushed batch.
type Sink interface {
	Publish(ctx context.Context, batch []Event) error
	Close() error
}

// WatermillSink publishes batches through a watermill publisher.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillSink wraps publisher. An empty topic uses DefaultTopic.
func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillSink{publisher: publisher, topic: topic}
}

// Topic returns the publish topic.
func (s *WatermillSink) Topic() string { return s.topic }

// Publish sends batch as one JSON array message.
func (s *WatermillSink) Publish(ctx context.Context, batch []Event) error {
	if len(batch) == 0 {
		return nil
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("session_id", batch[0].SessionID)
	msg.Metadata.Set("event_count", strconv.Itoa(len(batch)))
	msg.Metadata.Set("content_type", "application/json")

	if err := s.publisher.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

// Close closes the underlying publisher.
func (s *WatermillSink) Close() error {
	return s.publisher.Close()
}

// DecodeBatch decodes a message produced by WatermillSink.
func DecodeBatch(msg *message.Message) ([]Event, error) {
	var batch []Event
	if err := json.Unmarshal(msg.Payload, &batch); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", msg.UUID, err)
	}
	return batch, nil
}

// NewChannelSink returns a sink backed by an in-process gochannel pub/sub,
// along with the pub/sub so callers can subscribe to DefaultTopic.
func NewChannelSink(buffer int64) (*WatermillSink, *gochannel.GoChannel) {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: buffer},
		watermill.NewSlogLogger(logging.NewSlogLoggerFor("analytics")),
	)
	return NewWatermillSink(pubsub, DefaultTopic), pubsub
}
