// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/meridian-oss/aisearch/services/answer_cache"
	"github.com/meridian-oss/aisearch/services/generation"
	"github.com/meridian-oss/aisearch/services/query_filter"
	"github.com/meridian-oss/aisearch/services/search/datatypes"
	"github.com/meridian-oss/aisearch/services/search/observability"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SearchHandler defines the contract for handling AI search HTTP requests.
//
// # Description
//
// SearchHandler abstracts the search endpoint so routes depend on an
// interface and tests can substitute mocks. Every request is answered over a
// single SSE connection regardless of which of the three dispatch branches
// it takes:
//
//  1. Rejected: the filter deems the query unsuitable for AI processing.
//  2. Cached: a canned answer exists for the normalized query.
//  3. Streamed: the generator produces chunks incrementally.
//
// All three branches end with the same terminal done event, so a client can
// use one wait-for-done loop for every outcome.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use by multiple goroutines.
// HTTP handlers are called concurrently by the Gin framework.
//
// # Assumptions
//
//   - All dependencies are properly initialized before handler use
//   - Gin context is valid and not nil
type SearchHandler interface {
	// HandleAISearch processes GET /api/ai-search requests with SSE delivery.
	//
	// # Description
	//
	// Classifies the q query parameter, then answers over SSE: a rejection
	// notice, a cached answer with sources, or an incrementally streamed
	// response. The only non-SSE response is 400 for a missing q parameter,
	// rejected before the stream is opened.
	//
	// # Inputs
	//
	//   - c: Gin context containing the HTTP request.
	//
	// # Outputs
	//
	// SSE stream with events:
	//   - message: Payloads discriminated by status (no_ai, cached, stream, error)
	//   - done: Stream completion, always the final event
	//
	// HTTP status (before streaming starts):
	//   - 400 Bad Request: Missing q query parameter
	//   - 500 Internal Server Error: ResponseWriter cannot stream
	//
	// # Limitations
	//
	//   - A client disconnect during streaming ends the session without a
	//     done event; there is nobody left to deliver it to.
	HandleAISearch(c *gin.Context)
}

// =============================================================================
// Struct Definition
// =============================================================================

// searchHandler implements SearchHandler for production use.
//
// # Description
//
// searchHandler coordinates between the HTTP layer and the search pipeline.
// It performs HTTP-related tasks and delegates classification, lookup, and
// generation to injected services:
//   - Query parameter extraction
//   - SSE session lifecycle (init, events, terminal event, teardown)
//   - Dispatch across the rejected/cached/streamed branches
//   - Error handling and cleanup
//
// # Fields
//
//   - filter: Classifies queries as suitable or unsuitable for AI processing
//   - cache: Canned answers for known queries
//   - generator: Produces the incremental response stream
//   - tracer: OpenTelemetry tracer for distributed tracing
//
// # Thread Safety
//
// Thread-safe. All fields are read-only after construction.
// No shared mutable state between requests.
type searchHandler struct {
	filter    query_filter.QueryFilter
	cache     answer_cache.Cache
	generator generation.Generator
	tracer    trace.Tracer
}

// =============================================================================
// Constructor
// =============================================================================

// NewSearchHandler creates a SearchHandler with the provided dependencies.
//
// # Description
//
// Creates a fully configured searchHandler for production use.
// Panics if any dependency is nil (programming errors).
//
// # Inputs
//
//   - filter: Query classifier. Must not be nil.
//   - cache: Canned answer store. Must not be nil.
//   - generator: Streaming response producer. Must not be nil.
//
// # Outputs
//
//   - SearchHandler: Ready for use with Gin router
//
// # Examples
//
//	handler := handlers.NewSearchHandler(filter, cache, generator)
//	router.GET("/api/ai-search", handler.HandleAISearch)
//
// # Limitations
//
//   - Panics on any nil dependency
func NewSearchHandler(
	filter query_filter.QueryFilter,
	cache answer_cache.Cache,
	generator generation.Generator,
) SearchHandler {
	if filter == nil {
		panic("NewSearchHandler: filter must not be nil")
	}
	if cache == nil {
		panic("NewSearchHandler: cache must not be nil")
	}
	if generator == nil {
		panic("NewSearchHandler: generator must not be nil")
	}

	return &searchHandler{
		filter:    filter,
		cache:     cache,
		generator: generator,
		tracer:    otel.Tracer("aisearch.search.handlers.search"),
	}
}

// =============================================================================
// Handler Methods
// =============================================================================

// HandleAISearch processes GET /api/ai-search requests with SSE delivery.
//
// # Description
//
// Handles GET /api/ai-search?q=<query> requests. The flow is:
//  1. Extract and check the q query parameter
//  2. Classify the query (filter verdict decides the rejected branch)
//  3. Open the SSE session and commit streaming headers
//  4. Rejected branch: emit the rejection notice, then done
//  5. Cached branch: emit the full canned answer with sources, then done
//  6. Streamed branch: emit one message event per generated chunk, then done
//
// Errors after the stream is open are delivered in-band as error-status
// message events; the HTTP status is already committed at that point. A
// client disconnect is the one exception: the session ends with no terminal
// event and no error, since the peer is gone.
//
// # Inputs
//
//   - c: Gin context containing the HTTP request
//
// # Outputs
//
// SSE events (all payloads on the message event, discriminated by status):
//   - event: message, data: {"status":"no_ai","message":"..."}
//   - event: message, data: {"status":"cached","ai_response":"...","sources":[...]}
//   - event: message, data: {"status":"stream","content":"..."}
//   - event: message, data: {"status":"error","message":"..."}
//   - event: done, data: (empty)
//
// # Limitations
//
//   - The filter verdict is computed before the stream opens, so a 400 for
//     a missing q is the only pre-stream client error.
func (h *searchHandler) HandleAISearch(c *gin.Context) {
	startTime := time.Now()
	endpoint := observability.EndpointAISearch
	branch := observability.BranchNone

	requestID := uuid.New().String()

	ctx, span := h.tracer.Start(c.Request.Context(), "HandleAISearch")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID))

	// Track active stream (for metrics)
	if m := observability.DefaultMetrics; m != nil {
		m.StreamStarted(endpoint)
		defer m.StreamEnded(endpoint)
	}

	success := false
	defer func() {
		// Record final metrics
		if m := observability.DefaultMetrics; m != nil {
			duration := time.Since(startTime).Seconds()
			m.RecordRequest(endpoint, branch, success)
			m.RecordStreamDuration(endpoint, duration, success)
		}
	}()

	// Step 1: Extract the query parameter
	query := c.Query("q")
	if query == "" {
		span.SetStatus(codes.Error, "missing query parameter")
		slog.Warn("Rejected search request without query parameter",
			"requestId", requestID,
			"path", c.Request.URL.Path,
		)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordError(endpoint, observability.ErrorCodeValidation)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: q"})
		return
	}
	span.SetAttributes(attribute.Int("query.length", len(query)))

	// Step 2: Classify the query. The verdict is computed before any response
	// bytes are written so the dispatch decision never races the stream.
	verdict := h.filter.Classify(query)
	span.SetAttributes(attribute.Bool("query.suitable", verdict.Suitable))

	// Step 3: Open the SSE session
	stream := NewEventStream()
	if err := stream.Init(c.Writer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "SSE setup failed")
		slog.Error("Failed to open SSE session", "requestId", requestID, "error", err)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordError(endpoint, observability.ErrorCodeInternal)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}
	defer stream.Close()

	// Step 4: Rejected branch
	if !verdict.Suitable {
		branch = observability.BranchRejected
		slog.Info("Query rejected by filter", "requestId", requestID, "reason", verdict.Reason)
		if err := stream.WriteEvent(datatypes.EventMessage, datatypes.NewRejectedPayload(verdict.Reason)); err != nil {
			h.logStreamWriteFailure(span, endpoint, err)
			return
		}
		if err := stream.WriteDone(); err != nil {
			h.logStreamWriteFailure(span, endpoint, err)
			return
		}
		success = true
		return
	}

	// Step 5: Cached branch
	if cached, ok := h.cache.Lookup(query); ok {
		branch = observability.BranchCached
		if m := observability.DefaultMetrics; m != nil {
			m.RecordCacheLookup(true)
		}
		span.SetAttributes(attribute.Int("cache.source_count", len(cached.Sources)))
		if err := stream.WriteEvent(datatypes.EventMessage, datatypes.NewCachedPayload(cached.Answer, cached.Sources)); err != nil {
			h.logStreamWriteFailure(span, endpoint, err)
			return
		}
		if err := stream.WriteDone(); err != nil {
			h.logStreamWriteFailure(span, endpoint, err)
			return
		}
		success = true
		return
	}
	if m := observability.DefaultMetrics; m != nil {
		m.RecordCacheLookup(false)
	}

	// Step 6: Streamed branch
	branch = observability.BranchStreamed
	streamErr := h.streamGenerated(ctx, query, stream, endpoint)

	if streamErr != nil {
		// A cancelled request context means the client went away. There is no
		// peer to receive a terminal event, so the session just ends.
		if errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded) {
			span.SetAttributes(attribute.Bool("client.disconnected", true))
			slog.Info("Client disconnected during streaming", "requestId", requestID)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordClientDisconnect(endpoint)
			}
			return
		}

		// A dead sink fails the same way on every subsequent write; nothing
		// more can be delivered.
		if errors.Is(streamErr, ErrStreamClosed) {
			span.RecordError(streamErr)
			slog.Warn("SSE sink closed mid-stream", "requestId", requestID, "error", streamErr)
			return
		}

		span.RecordError(streamErr)
		span.SetStatus(codes.Error, "generation failed")
		slog.Error("Response generation failed", "requestId", requestID, "error", streamErr)
		if m := observability.DefaultMetrics; m != nil {
			m.RecordError(endpoint, observability.ErrorCodeGeneration)
		}
		// Best effort: the sink may already be dead, in which case the
		// secondary failure is swallowed and the request simply ends.
		if werr := stream.WriteError("response generation failed"); werr != nil {
			slog.Debug("Failed to deliver error event", "requestId", requestID, "error", werr)
		}
		return
	}

	// Step 7: Orderly completion
	if err := stream.WriteDone(); err != nil {
		h.logStreamWriteFailure(span, endpoint, err)
		return
	}
	success = true
}

// =============================================================================
// Internal Helpers
// =============================================================================

// streamGenerated drives the generator and forwards each chunk to the stream.
//
// A generator panic is converted into an ordinary error so the dispatch
// branch can deliver the in-band error event instead of tearing down the
// connection with no terminal signal.
func (h *searchHandler) streamGenerated(ctx context.Context, query string, stream EventStream, endpoint observability.Endpoint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	return h.generator.Stream(ctx, query, func(chunk string) error {
		if m := observability.DefaultMetrics; m != nil {
			m.RecordChunk(endpoint)
		}
		return stream.WriteEvent(datatypes.EventMessage, datatypes.NewStreamPayload(chunk))
	})
}

// logStreamWriteFailure records a failed event write. The stream is already
// committed, so there is no HTTP status left to change.
func (h *searchHandler) logStreamWriteFailure(span trace.Span, endpoint observability.Endpoint, err error) {
	span.RecordError(err)
	slog.Warn("Failed to write SSE event", "error", err)
	if m := observability.DefaultMetrics; m != nil {
		m.RecordError(endpoint, observability.ErrorCodeStreamWrite)
	}
}
