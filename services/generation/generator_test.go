// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect(t *testing.T, g *MockGenerator, ctx context.Context, query string) ([]string, error) {
	t.Helper()
	var chunks []string
	err := g.Stream(ctx, query, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	return chunks, err
}

func TestMockGenerator_ChunkCount(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"two words", "hello world", 3},
		{"single word", "golang", 2},
		{"empty query", "", 1},
		{"whitespace only", "   \t  ", 1},
		{"collapses runs of whitespace", "a  b\tc", 4},
	}

	g := NewMockGenerator(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := collect(t, g, context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			if len(chunks) != tt.want {
				t.Errorf("got %d chunks, want %d: %v", len(chunks), tt.want, chunks)
			}
		})
	}
}

func TestMockGenerator_OrderFollowsInput(t *testing.T) {
	g := NewMockGenerator(0)
	chunks, err := collect(t, g, context.Background(), "alpha beta gamma")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, word := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(chunks[i], `"`+word+`"`) {
			t.Errorf("chunk %d = %q, want mention of %q", i, chunks[i], word)
		}
	}
	last := chunks[len(chunks)-1]
	if !strings.Contains(last, "In summary") {
		t.Errorf("final chunk = %q, want summary", last)
	}
}

func TestMockGenerator_FreshSequencePerCall(t *testing.T) {
	g := NewMockGenerator(0)
	first, err := collect(t, g, context.Background(), "repeatable query")
	if err != nil {
		t.Fatalf("first Stream() error = %v", err)
	}
	second, err := collect(t, g, context.Background(), "repeatable query")
	if err != nil {
		t.Fatalf("second Stream() error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestMockGenerator_CallbackErrorStopsProduction(t *testing.T) {
	g := NewMockGenerator(0)
	sentinel := errors.New("downstream write failed")
	calls := 0
	err := g.Stream(context.Background(), "one two three four", func(chunk string) error {
		calls++
		if calls == 2 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Stream() error = %v, want %v", err, sentinel)
	}
	if calls != 2 {
		t.Errorf("callback called %d times, want 2", calls)
	}
}

func TestMockGenerator_CancellationStopsBetweenChunks(t *testing.T) {
	g := NewMockGenerator(0)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := g.Stream(ctx, "one two three four", func(chunk string) error {
		calls++
		if calls == 1 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Stream() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times after cancellation, want 1", calls)
	}
}

func TestMockGenerator_CancellationObservedAfterDelay(t *testing.T) {
	// The generator sleeps the full inter-chunk delay before looking at the
	// context, so a cancellation that lands mid-delay surfaces only once the
	// delay has elapsed.
	g := NewMockGenerator(50 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := g.Stream(ctx, "hello", func(chunk string) error {
		t.Fatal("callback should not run on a cancelled context")
		return nil
	})
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Stream() error = %v, want context.Canceled", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("returned after %v, want at least the full 50ms delay", elapsed)
	}
}

func BenchmarkMockGenerator_Stream(b *testing.B) {
	g := NewMockGenerator(0)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.Stream(ctx, "how do goroutines work in go", func(string) error { return nil })
	}
}
