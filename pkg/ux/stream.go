// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux renders server responses for terminal consumption.
package ux

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// StreamStatus identifies the kind of payload carried by a message event.
type StreamStatus string

const (
	StreamStatusNoAI   StreamStatus = "no_ai"
	StreamStatusCached StreamStatus = "cached"
	StreamStatusStream StreamStatus = "stream"
	StreamStatusError  StreamStatus = "error"
)

// eventDone is the reserved terminal event name.
const eventDone = "done"

// StreamEvent represents a single message payload from the server.
type StreamEvent struct {
	Status     StreamStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	AIResponse string       `json:"ai_response,omitempty"`
	Sources    []string     `json:"sources,omitempty"`
	Content    string       `json:"content,omitempty"`
}

// StreamResult contains the complete result of processing a stream
type StreamResult struct {
	Answer       string
	Sources      []string
	Rejected     bool
	RejectReason string
}

// StreamProcessor defines the interface for processing streaming responses.
type StreamProcessor interface {
	// Process reads and processes a streaming response from the reader.
	// Returns the accumulated answer, sources, and any error.
	Process(reader io.Reader) (*StreamResult, error)
}

// sseStreamProcessor implements StreamProcessor for Server-Sent Events
type sseStreamProcessor struct {
	writer       io.Writer
	answer       strings.Builder
	sources      []string
	rejected     bool
	rejectReason string
}

// NewStreamProcessor creates a new SSE stream processor
func NewStreamProcessor() StreamProcessor {
	return &sseStreamProcessor{writer: os.Stdout}
}

// NewStreamProcessorWithWriter creates a stream processor with custom writer (for testing)
func NewStreamProcessorWithWriter(w io.Writer) StreamProcessor {
	return &sseStreamProcessor{writer: w}
}

// Process reads and processes a streaming response
func (p *sseStreamProcessor) Process(reader io.Reader) (*StreamResult, error) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		// The done event carries no payload; the event name alone ends the
		// session.
		if strings.HasPrefix(line, "event: ") {
			if strings.TrimPrefix(line, "event: ") == eventDone {
				p.finalize()
				return p.result(), nil
			}
			continue
		}

		// Parse SSE format: "data: {...}"
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if strings.TrimSpace(data) == "" {
			continue
		}

		var event StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// If it's not JSON, treat it as a raw chunk
			p.handleChunk(data)
			continue
		}

		switch event.Status {
		case StreamStatusNoAI:
			p.rejected = true
			p.rejectReason = event.Message
			fmt.Fprintf(p.writer, "Not sent to AI: %s\n", event.Message)
		case StreamStatusCached:
			p.answer.WriteString(event.AIResponse)
			p.sources = event.Sources
			fmt.Fprint(p.writer, event.AIResponse)
		case StreamStatusStream:
			p.handleChunk(event.Content)
		case StreamStatusError:
			p.finalize()
			return nil, fmt.Errorf("%s", event.Message)
		}
	}

	if err := scanner.Err(); err != nil {
		p.finalize()
		return nil, err
	}

	// Stream ended without an explicit done event
	p.finalize()
	return p.result(), nil
}

func (p *sseStreamProcessor) handleChunk(chunk string) {
	p.answer.WriteString(chunk)

	// Print chunk immediately for streaming effect
	fmt.Fprint(p.writer, chunk)
}

func (p *sseStreamProcessor) finalize() {
	// Ensure we end with a newline
	if p.answer.Len() > 0 && !strings.HasSuffix(p.answer.String(), "\n") {
		fmt.Fprintln(p.writer)
	}

	if len(p.sources) > 0 {
		fmt.Fprintln(p.writer, "Sources:")
		for _, src := range p.sources {
			fmt.Fprintf(p.writer, "  - %s\n", src)
		}
	}
}

func (p *sseStreamProcessor) result() *StreamResult {
	return &StreamResult{
		Answer:       p.answer.String(),
		Sources:      p.sources,
		Rejected:     p.rejected,
		RejectReason: p.rejectReason,
	}
}
