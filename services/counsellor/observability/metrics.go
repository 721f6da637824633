// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the counsellor
// service: request counters, streaming latency histograms, active stream
// gauges and ingest counters. Metrics are exposed on /metrics.
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "counsellor"
	chatSubsystem    = "chat"
)

// Metrics holds all Prometheus metrics for the counsellor service.
// Initialize once at startup via InitMetrics().
type Metrics struct {
	// RequestsTotal counts chat requests by endpoint and status.
	// Labels: endpoint, status (success, error)
	RequestsTotal *prometheus.CounterVec

	// TimeToFirstTokenSeconds measures latency to the first streamed token.
	// Labels: endpoint
	TimeToFirstTokenSeconds *prometheus.HistogramVec

	// StreamDurationSeconds measures total stream duration.
	// Labels: endpoint, status
	StreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks currently open streaming connections.
	// Labels: endpoint
	ActiveStreams *prometheus.GaugeVec

	// ErrorsTotal counts errors by endpoint and error code.
	// Labels: endpoint, error_code
	ErrorsTotal *prometheus.CounterVec

	// OffTopicRepliesTotal counts replies the guardrail classifier rejected.
	OffTopicRepliesTotal prometheus.Counter

	// KnowledgeIngestTotal counts knowledge source ingests by type and status.
	// Labels: type (text, pdf, url), status
	KnowledgeIngestTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics(). Handlers
// treat a nil DefaultMetrics as "metrics disabled", which keeps tests free
// of registry setup.
var DefaultMetrics *Metrics

var initOnce sync.Once

// InitMetrics creates and registers all metrics on the default registry.
// Safe to call more than once; registration happens on the first call.
func InitMetrics() *Metrics {
	initOnce.Do(registerMetrics)
	return DefaultMetrics
}

func registerMetrics() {
	DefaultMetrics = &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "requests_total",
				Help:      "Total chat requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		TimeToFirstTokenSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "time_to_first_token_seconds",
				Help:      "Latency until the first streamed token",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		StreamDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "stream_duration_seconds",
				Help:      "Total duration of a completion stream",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"endpoint", "status"},
		),
		ActiveStreams: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "active_streams",
				Help:      "Currently open streaming connections",
			},
			[]string{"endpoint"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "errors_total",
				Help:      "Errors by endpoint and error code",
			},
			[]string{"endpoint", "error_code"},
		),
		OffTopicRepliesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "off_topic_replies_total",
				Help:      "Completed replies the guardrail classifier rejected",
			},
		),
		KnowledgeIngestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "knowledge_ingest_total",
				Help:      "Knowledge source ingests by type and status",
			},
			[]string{"type", "status"},
		),
	}
}

// =============================================================================
// Labels
// =============================================================================

// ErrorCode categorizes an error for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeUnauthorized indicates an unresolvable session.
	ErrorCodeUnauthorized ErrorCode = "unauthorized"

	// ErrorCodeLLMError indicates a completion provider failure.
	ErrorCodeLLMError ErrorCode = "llm_error"

	// ErrorCodeKnowledgeSearch indicates a knowledge base search failure.
	ErrorCodeKnowledgeSearch ErrorCode = "knowledge_search"

	// ErrorCodeStorage indicates a persistence failure.
	ErrorCodeStorage ErrorCode = "storage"

	// ErrorCodeClientDisconnect indicates the client went away mid-stream.
	ErrorCodeClientDisconnect ErrorCode = "client_disconnect"

	// ErrorCodeInternal indicates an unexpected internal error.
	ErrorCodeInternal ErrorCode = "internal"
)

// Endpoint labels a metrics-emitting endpoint.
type Endpoint string

const (
	// EndpointChatStream is the streaming RAG chat endpoint.
	EndpointChatStream Endpoint = "chat_stream"
)

// =============================================================================
// Recording Helpers
// =============================================================================

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError records a categorized error.
func (m *Metrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// StreamStarted increments the active stream gauge.
func (m *Metrics) StreamStarted(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Inc()
}

// StreamEnded decrements the active stream gauge.
func (m *Metrics) StreamEnded(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Dec()
}

// RecordTimeToFirstToken records first-token latency.
func (m *Metrics) RecordTimeToFirstToken(endpoint Endpoint, seconds float64) {
	m.TimeToFirstTokenSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}

// RecordStreamDuration records total stream duration.
func (m *Metrics) RecordStreamDuration(endpoint Endpoint, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.StreamDurationSeconds.WithLabelValues(string(endpoint), status).Observe(seconds)
}

// RecordOffTopicReply records a reply the classifier rejected.
func (m *Metrics) RecordOffTopicReply() {
	m.OffTopicRepliesTotal.Inc()
}

// RecordKnowledgeIngest records a knowledge source ingest attempt.
func (m *Metrics) RecordKnowledgeIngest(sourceType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.KnowledgeIngestTotal.WithLabelValues(sourceType, status).Inc()
}
