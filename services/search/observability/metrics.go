// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and instrumentation for the search
// service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring SSE search
// operations. Metrics include:
//   - Request counters (by endpoint, dispatch branch, status)
//   - Chunk counters for the streamed branch
//   - Cache hit/miss counters
//   - Stream duration histograms
//   - Active stream gauges
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "aisearch"

// Subsystem for SSE search metrics
const sseSubsystem = "sse"

// SearchMetrics holds all Prometheus metrics for SSE search operations.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring search dispatch
// and streaming behavior. Initialize once at startup via InitMetrics().
//
// # Fields
//
//   - RequestsTotal: Counter of search requests by endpoint, branch, status
//   - ChunksTotal: Counter of streamed response chunks
//   - CacheLookupsTotal: Counter of cache lookups by result
//   - StreamDurationSeconds: Histogram of total stream duration
//   - ActiveStreams: Gauge of currently active streams
//   - ErrorsTotal: Counter of errors by type and endpoint
//   - ClientDisconnectsTotal: Counter of client disconnections mid-stream
//
// # Thread Safety
//
// All operations are thread-safe.
type SearchMetrics struct {
	// RequestsTotal counts search requests by endpoint, dispatch branch,
	// and status.
	// Labels: endpoint (ai_search), branch (rejected, cached, streamed,
	// none), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// ChunksTotal counts response chunks delivered on the streamed branch.
	// Labels: endpoint (ai_search)
	ChunksTotal *prometheus.CounterVec

	// CacheLookupsTotal counts answer cache lookups by result.
	// Labels: result (hit, miss)
	CacheLookupsTotal *prometheus.CounterVec

	// StreamDurationSeconds measures total stream duration.
	// Labels: endpoint (ai_search), status (success, error)
	StreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks currently active streaming connections.
	// Labels: endpoint (ai_search)
	ActiveStreams *prometheus.GaugeVec

	// ErrorsTotal counts errors by type and endpoint.
	// Labels: endpoint, error_code (validation, generation, etc.)
	ErrorsTotal *prometheus.CounterVec

	// ClientDisconnectsTotal counts client disconnections during streaming.
	// Labels: endpoint
	ClientDisconnectsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of SearchMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *SearchMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once
// at application startup, after the Prometheus registry is available.
//
// # Outputs
//
//   - *SearchMetrics: The initialized metrics instance.
//
// # Examples
//
//	func main() {
//	    observability.InitMetrics()
//	    // ... start server ...
//	}
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
//
// # Assumptions
//
//   - Prometheus default registry is available.
func InitMetrics() *SearchMetrics {
	DefaultMetrics = &SearchMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "requests_total",
				Help:      "Total number of search requests by endpoint, branch, and status",
			},
			[]string{"endpoint", "branch", "status"},
		),

		ChunksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "chunks_total",
				Help:      "Total response chunks delivered on the streamed branch",
			},
			[]string{"endpoint"},
		),

		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "cache_lookups_total",
				Help:      "Total answer cache lookups by result",
			},
			[]string{"result"},
		),

		StreamDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "stream_duration_seconds",
				Help:      "Total stream duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint", "status"},
		),

		ActiveStreams: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "active_streams",
				Help:      "Number of currently active streaming connections",
			},
			[]string{"endpoint"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "errors_total",
				Help:      "Total search errors by type and endpoint",
			},
			[]string{"endpoint", "error_code"},
		),

		ClientDisconnectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sseSubsystem,
				Name:      "client_disconnects_total",
				Help:      "Total client disconnections during streaming",
			},
			[]string{"endpoint"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeGeneration indicates response generation failure.
	ErrorCodeGeneration ErrorCode = "generation"

	// ErrorCodeStreamWrite indicates an SSE event write failure.
	ErrorCodeStreamWrite ErrorCode = "stream_write"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents a streaming endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointAISearch is the AI search SSE endpoint.
	EndpointAISearch Endpoint = "ai_search"
)

// =============================================================================
// Dispatch Branches
// =============================================================================

// Branch represents the dispatch branch a request took, for metrics labeling.
type Branch string

const (
	// BranchNone means no branch was reached (pre-dispatch failure).
	BranchNone Branch = "none"

	// BranchRejected means the filter deemed the query unsuitable.
	BranchRejected Branch = "rejected"

	// BranchCached means a canned answer was served.
	BranchCached Branch = "cached"

	// BranchStreamed means the generator produced the response.
	BranchStreamed Branch = "streamed"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed search request.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the request.
//   - branch: The dispatch branch the request took.
//   - success: Whether the request completed successfully.
func (m *SearchMetrics) RecordRequest(endpoint Endpoint, branch Branch, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), string(branch), status).Inc()
}

// RecordError records a search error.
//
// # Inputs
//
//   - endpoint: The endpoint where the error occurred.
//   - code: The error type code.
func (m *SearchMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordChunk increments the streamed chunk counter.
//
// # Inputs
//
//   - endpoint: The endpoint delivering the chunk.
func (m *SearchMetrics) RecordChunk(endpoint Endpoint) {
	m.ChunksTotal.WithLabelValues(string(endpoint)).Inc()
}

// RecordCacheLookup records an answer cache lookup.
//
// # Inputs
//
//   - hit: Whether the lookup found a canned answer.
func (m *SearchMetrics) RecordCacheLookup(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// StreamStarted increments the active streams gauge.
//
// # Inputs
//
//   - endpoint: The endpoint handling the stream.
func (m *SearchMetrics) StreamStarted(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Inc()
}

// StreamEnded decrements the active streams gauge.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the stream.
func (m *SearchMetrics) StreamEnded(endpoint Endpoint) {
	m.ActiveStreams.WithLabelValues(string(endpoint)).Dec()
}

// RecordStreamDuration records the total stream duration.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the stream.
//   - seconds: Total duration in seconds.
//   - success: Whether the stream completed successfully.
func (m *SearchMetrics) RecordStreamDuration(endpoint Endpoint, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.StreamDurationSeconds.WithLabelValues(string(endpoint), status).Observe(seconds)
}

// RecordClientDisconnect increments the client disconnect counter.
//
// # Inputs
//
//   - endpoint: The endpoint where the disconnect occurred.
func (m *SearchMetrics) RecordClientDisconnect(endpoint Endpoint) {
	m.ClientDisconnectsTotal.WithLabelValues(string(endpoint)).Inc()
}
