// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package generation produces the incremental AI response stream.
//
// The only implementation today is a mock that chunks the query and inserts
// artificial delays to simulate generation latency. A real inference backend
// satisfies the same Generator contract: chunks are delivered through a
// callback in production order, and a callback error or context cancellation
// stops production.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultChunkDelay is the simulated generation latency between chunks.
const DefaultChunkDelay = 300 * time.Millisecond

// ChunkCallback is called for each chunk as it is produced.
//
// # Description
//
// The callback should write the chunk to the SSE stream. Return an error to
// abort generation (e.g., on client disconnect); the generator stops and
// returns that error to the caller.
//
// # Assumptions
//
//   - Called in production order, never concurrently.
type ChunkCallback func(chunk string) error

// Generator defines the contract for streaming response production.
//
// # Description
//
// Stream produces a finite, forward-only sequence of text chunks for one
// query. The sequence is not restartable; every call produces a fresh
// sequence from scratch. Chunk availability may be delayed, so Stream is the
// one intentionally slow call in the request path and the place where
// cancellation must be observed.
//
// # Outputs
//
//   - error: The callback's error if it aborted, ctx.Err() if the request
//     was cancelled, nil when the sequence completed.
type Generator interface {
	Stream(ctx context.Context, query string, cb ChunkCallback) error
}

// =============================================================================
// Mock Generator
// =============================================================================

// MockGenerator implements Generator without any model backend.
//
// It tokenizes the query into whitespace-delimited words, emits one short
// templated sentence per word, and closes with one summary chunk. Ordering
// follows input token order.
type MockGenerator struct {
	chunkDelay time.Duration
}

// NewMockGenerator creates a MockGenerator with the given inter-chunk delay.
//
// # Inputs
//
//   - chunkDelay: Simulated generation latency before each chunk. Zero is
//     valid and useful in tests; production wiring uses DefaultChunkDelay.
func NewMockGenerator(chunkDelay time.Duration) *MockGenerator {
	return &MockGenerator{chunkDelay: chunkDelay}
}

// Stream produces the mock chunk sequence for a query.
//
// Cancellation is checked between chunks only, after each delay has elapsed:
// a client that disconnects mid-delay is detected once the delay completes,
// not during it. That granularity is part of the component's contract and is
// pinned by tests; tighten it deliberately or not at all.
func (g *MockGenerator) Stream(ctx context.Context, query string, cb ChunkCallback) error {
	words := strings.Fields(query)

	for i, word := range words {
		g.pause()
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cb(fmt.Sprintf("Considering %q (term %d of %d). ", word, i+1, len(words))); err != nil {
			return err
		}
	}

	g.pause()
	if err := ctx.Err(); err != nil {
		return err
	}
	return cb(fmt.Sprintf("In summary: I examined %d search terms. This is a simulated response standing in for real model output.", len(words)))
}

// pause sleeps the full inter-chunk delay unconditionally.
func (g *MockGenerator) pause() {
	if g.chunkDelay > 0 {
		time.Sleep(g.chunkDelay)
	}
}

var _ Generator = (*MockGenerator)(nil)
