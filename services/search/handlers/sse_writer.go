// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/meridian-oss/aisearch/services/search/datatypes"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrAlreadyInitialized is returned by Init when the stream is already
	// open. Calling Init twice is a programming error in the wiring, not a
	// runtime condition; it is never surfaced to the client.
	ErrAlreadyInitialized = errors.New("sse stream already initialized")

	// ErrNotInitialized is returned by any write attempted before Init.
	// The complementary programming error to ErrAlreadyInitialized.
	ErrNotInitialized = errors.New("sse stream not initialized")

	// ErrStreamClosed is returned by writes after the terminal event has been
	// emitted or after Close. This is a soft failure: the caller stops
	// producing further events and the request ends quietly.
	ErrStreamClosed = errors.New("sse stream closed")

	// ErrStreamingUnsupported is returned by Init when the ResponseWriter
	// does not implement http.Flusher. Per-event flushing is the defining
	// property of this transport, so a non-flushable sink is unusable.
	ErrStreamingUnsupported = errors.New("response writer does not support flushing")
)

// =============================================================================
// Interface Definition
// =============================================================================

// EventStream defines the contract for writing Server-Sent Events to one HTTP
// response.
//
// # Description
//
// EventStream abstracts SSE event framing and delivery so that every dispatch
// branch of the search handler speaks the identical wire protocol. It is a
// small state machine:
//
//	Uninitialized --Init--> Open --WriteDone/Close--> Closed
//
// Implementations frame each event as
//
//	event: <name>
//	data: <payload-line>
//	<blank line>
//
// and flush the sink immediately after every event. Flushing is mandatory and
// never batched: each event must be visible to the client as soon as it is
// produced, not when some backpressure threshold fills.
//
// # Thread Safety
//
// One EventStream belongs to exactly one request and is driven sequentially
// by that request's handler. Implementations still serialize writes with a
// mutex so a misbehaving caller cannot interleave frames.
//
// # Limitations
//
//   - Requires an http.Flusher-compatible ResponseWriter.
//   - Not reusable across requests.
type EventStream interface {
	// Init transitions the stream from Uninitialized to Open.
	//
	// # Description
	//
	// Sets the SSE response headers (text/event-stream content type, caching
	// disabled, connection kept alive) exactly once and captures the flusher.
	//
	// # Inputs
	//
	//   - w: HTTP ResponseWriter. Must implement http.Flusher.
	//
	// # Outputs
	//
	//   - error: ErrAlreadyInitialized on a second call,
	//     ErrStreamingUnsupported if the writer cannot flush.
	Init(w http.ResponseWriter) error

	// WriteEvent writes a single named SSE event.
	//
	// # Description
	//
	// Valid only in the Open state. A string payload is written verbatim as
	// the event's data line; any other payload is JSON-encoded to a single
	// line. The sink is flushed before returning.
	//
	// # Inputs
	//
	//   - name: SSE event name (datatypes.EventMessage or datatypes.EventDone).
	//   - payload: Raw string, or any JSON-serializable value.
	//
	// # Outputs
	//
	//   - error: ErrNotInitialized before Init, ErrStreamClosed after the
	//     terminal event or Close, or a wrapped serialization/write failure.
	WriteEvent(name string, payload any) error

	// WriteDone emits the reserved terminal event with an empty payload.
	//
	// # Description
	//
	// This is the unique end-of-stream signal; the client stops listening on
	// receipt. At most one terminal event is ever written: after WriteDone
	// succeeds, every further write returns ErrStreamClosed.
	WriteDone() error

	// WriteError emits one message event carrying an error-status payload,
	// then immediately emits the terminal event.
	//
	// # Description
	//
	// Guarantees every session ends with exactly one done event even on
	// failure, so the client's wait-for-done logic never hangs. If the sink
	// is already dead the returned error is ErrStreamClosed; the caller
	// swallows it and ends the request.
	WriteError(message string) error

	// Close transitions Open to Closed and releases the sink.
	//
	// # Description
	//
	// Idempotent; a second call is a no-op. Close does not emit the terminal
	// event: use WriteDone for orderly termination and Close for teardown
	// after a detected client disconnect.
	Close()
}

// =============================================================================
// Struct Definition
// =============================================================================

// streamState tracks the lifecycle of one SSE session.
type streamState int

const (
	stateUninitialized streamState = iota
	stateOpen
	stateClosed
)

// sseStream implements EventStream over an http.ResponseWriter.
//
// # Description
//
// One sseStream is created per request and owned exclusively by that
// request's handler; it is never shared across requests. It holds the sink,
// the flusher, and the lifecycle state. The doneSent flag enforces the
// exactly-one-terminal-event invariant independently of Close.
//
// # Fields
//
//   - writer: Underlying http.ResponseWriter. Nil until Init.
//   - flusher: http.Flusher captured at Init.
//   - state: Current lifecycle state.
//   - doneSent: True once the terminal event has been written.
//   - mu: Serializes state transitions and writes.
//
// # Limitations
//
//   - Cannot be reused across requests.
type sseStream struct {
	writer   http.ResponseWriter
	flusher  http.Flusher
	state    streamState
	doneSent bool
	mu       sync.Mutex
}

// =============================================================================
// Constructor
// =============================================================================

// NewEventStream creates an EventStream in the Uninitialized state.
//
// # Description
//
// The returned stream is inert until Init is called with the request's
// ResponseWriter. Creating the stream separately from initializing it lets
// the handler construct its session before committing response headers.
//
// # Examples
//
//	stream := handlers.NewEventStream()
//	if err := stream.Init(c.Writer); err != nil {
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
//	    return
//	}
//	defer stream.Close()
func NewEventStream() EventStream {
	return &sseStream{state: stateUninitialized}
}

// =============================================================================
// Methods
// =============================================================================

// Init transitions the stream to Open and sets the SSE response headers.
func (s *sseStream) Init(w http.ResponseWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateUninitialized {
		return ErrAlreadyInitialized
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.writer = w
	s.flusher = flusher
	s.state = stateOpen
	return nil
}

// WriteEvent frames and flushes a single SSE event.
func (s *sseStream) WriteEvent(name string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeEventLocked(name, payload)
}

// writeEventLocked performs the framed write. Caller holds s.mu.
func (s *sseStream) writeEventLocked(name string, payload any) error {
	switch s.state {
	case stateUninitialized:
		return ErrNotInitialized
	case stateClosed:
		return ErrStreamClosed
	}
	if s.doneSent {
		return ErrStreamClosed
	}

	var data string
	switch p := payload.(type) {
	case string:
		data = p
	default:
		encoded, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		data = string(encoded)
	}

	if _, err := fmt.Fprintf(s.writer, "event: %s\ndata: %s\n\n", name, data); err != nil {
		// The sink is gone (client disconnected). Fold the session into the
		// closed state so subsequent writes soft-fail uniformly.
		s.state = stateClosed
		return fmt.Errorf("write event: %w", ErrStreamClosed)
	}

	s.flusher.Flush()
	return nil
}

// WriteDone emits the terminal event. The data line is always empty.
func (s *sseStream) WriteDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeEventLocked(datatypes.EventDone, ""); err != nil {
		return err
	}
	s.doneSent = true
	return nil
}

// WriteError emits one error-status message event followed by the terminal
// event.
func (s *sseStream) WriteError(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeEventLocked(datatypes.EventMessage, datatypes.NewErrorPayload(message)); err != nil {
		return err
	}
	if err := s.writeEventLocked(datatypes.EventDone, ""); err != nil {
		return err
	}
	s.doneSent = true
	return nil
}

// Close releases the sink. Idempotent.
func (s *sseStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return
	}
	s.state = stateClosed
	s.writer = nil
	s.flusher = nil
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ EventStream = (*sseStream)(nil)
