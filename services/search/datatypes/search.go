// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the wire-level data structures for the AI search
// service.
//
// This file contains the SSE message payload shapes. Every payload written to
// the stream is a flat JSON object carrying a "status" discriminator; the
// client switches on that field, never on the SSE event name (which is always
// "message" for content and "done" for termination).
package datatypes

// =============================================================================
// Stream Status Discriminator
// =============================================================================

// StreamStatus identifies which of the response branches produced a payload.
type StreamStatus string

const (
	// StatusNoAI marks a query the filter rejected for AI processing.
	StatusNoAI StreamStatus = "no_ai"

	// StatusCached marks a complete answer served from the answer cache.
	StatusCached StreamStatus = "cached"

	// StatusStream marks one incremental content chunk from the generator.
	StatusStream StreamStatus = "stream"

	// StatusError marks a mid-stream failure surfaced to the client.
	StatusError StreamStatus = "error"
)

// =============================================================================
// SSE Event Names
// =============================================================================

const (
	// EventMessage is the SSE event name for every content-bearing event.
	EventMessage = "message"

	// EventDone is the reserved terminal event name. Its data line is always
	// empty; the client closes its side upon receipt.
	EventDone = "done"
)

// =============================================================================
// Message Payload
// =============================================================================

// MessagePayload is the single data shape every dispatch branch funnels
// through.
//
// # Description
//
// MessagePayload is serialized to one JSON line per SSE event. Which optional
// fields are populated depends on Status:
//
//   - no_ai:  Message (human-readable rejection reason)
//   - cached: AIResponse and Sources
//   - stream: Content (one chunk)
//   - error:  Message (sanitized failure description)
//
// # Fields
//
//   - Status: Required discriminator, see StreamStatus.
//   - Message: Rejection reason or error text.
//   - AIResponse: Full cached answer text.
//   - Sources: Source URLs backing a cached answer, in seeded order.
//   - Content: One incremental generated chunk.
//
// # Limitations
//
//   - Field names are the wire contract; renaming a JSON tag is a breaking
//     protocol change.
type MessagePayload struct {
	Status     StreamStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	AIResponse string       `json:"ai_response,omitempty"`
	Sources    []string     `json:"sources,omitempty"`
	Content    string       `json:"content,omitempty"`
}

// NewRejectedPayload builds the no_ai payload for a filtered query.
//
// # Inputs
//
//   - reason: Human-readable rejection reason, safe to surface to the client.
func NewRejectedPayload(reason string) MessagePayload {
	return MessagePayload{
		Status:  StatusNoAI,
		Message: reason,
	}
}

// NewCachedPayload builds the cached payload for an answer-cache hit.
//
// # Inputs
//
//   - answer: The cached answer text.
//   - sources: Source URLs in seeded order. May be empty.
func NewCachedPayload(answer string, sources []string) MessagePayload {
	return MessagePayload{
		Status:     StatusCached,
		AIResponse: answer,
		Sources:    sources,
	}
}

// NewStreamPayload builds the stream payload for one generated chunk.
func NewStreamPayload(chunk string) MessagePayload {
	return MessagePayload{
		Status:  StatusStream,
		Content: chunk,
	}
}

// NewErrorPayload builds the error payload for a mid-stream failure.
//
// The message must already be sanitized; internal error details are never
// exposed to the client.
func NewErrorPayload(message string) MessagePayload {
	return MessagePayload{
		Status:  StatusError,
		Message: message,
	}
}
