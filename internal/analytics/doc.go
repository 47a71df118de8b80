// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

/*
Package analytics records booking funnel events, assigns sessions to A/B
variants and derives conversion, performance and dashboard metrics.

# Sessions and Variants

A session id has the form session_<unix ms>_<9 base36 chars>. Events and
A/B reordering use the session carried by the context
(logging.ContextWithSessionID); the HTTP layer puts the client's
X-Session-ID there. A Tracker also owns a fallback session for work done
outside a client request.

The variant is derived from the session id: the first UTF-16 code unit of
every underscore separated segment is summed and an even sum selects
variant A. An empty segment makes the sum undefined and selects B. VariantFor
is pure, so the same session id always lands in the same variant.

Variant A leaves a ranked list untouched. Variant B moves partner and
internally sourced items ahead of the rest, keeping each group ordered by
descending total score.

# Batching

Track appends to an in-memory buffer. The buffer is flushed when it reaches
BatchSize events, every FlushInterval while the supervised flush service runs
and once more when that service stops. Flush swaps the buffer out in a single critical
section, appends the batch to the persisted log (trimmed to the most recent
MaxPersisted events) and hands the batch to the optional Sink.

# Sinks

WatermillSink publishes each flushed batch as one JSON message. NewChannelSink
wires it to an in-process gochannel pub/sub; builds tagged with nats can use
NewNATSSink to publish to a NATS JetStream subject instead.

# Metrics

GetConversionMetrics, GetPerformanceMetrics, GetABTestResults and
GetDashboardMetrics are computed on demand from the persisted log. Every
ratio is zero when its denominator is zero.
*/
package analytics
