// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query_filter

import (
	"strings"
	"testing"
)

func TestFilterEngine(t *testing.T) {
	// Initialize the engine once (it's fast!)
	engine, err := NewFilterEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	// Define test cases (Table-Driven)
	tests := []struct {
		name         string
		input        string
		wantSuitable bool
		reasonNames  string
	}{
		{
			name:         "Safe Query",
			input:        "how do I deploy a container to production",
			wantSuitable: true,
		},
		{
			name:         "Empty Query",
			input:        "",
			wantSuitable: true,
		},
		{
			name:         "Full GUID Token",
			input:        "Look up record with id 00000000-0000-0000-0000-000000000000",
			wantSuitable: false,
			reasonNames:  "GUID",
		},
		{
			name:         "Random GUID Token",
			input:        "find order 550e8400-e29b-41d4-a716-446655440000 status",
			wantSuitable: false,
			reasonNames:  "GUID",
		},
		{
			name:         "Truncated Zero GUID",
			input:        "record 00000000 is missing",
			wantSuitable: false,
			reasonNames:  "GUID",
		},
		{
			name:         "Password Mention",
			input:        "My password is 12345",
			wantSuitable: false,
			reasonNames:  "password",
		},
		{
			name:         "Password Mixed Case",
			input:        "reset my PaSsWoRd please",
			wantSuitable: false,
			reasonNames:  "password",
		},
		{
			name:         "API Key Mention",
			input:        "where do I find my API KEY",
			wantSuitable: false,
			reasonNames:  "api key",
		},
		{
			name:         "Social Security Mention",
			input:        "what is a Social Security number used for",
			wantSuitable: false,
			reasonNames:  "social security",
		},
		{
			name:         "Credit Card Mention",
			input:        "is it safe to store a credit card on file",
			wantSuitable: false,
			reasonNames:  "credit card",
		},
		{
			name:         "Substring Match Inside Word",
			input:        "tokenizer internals explained",
			wantSuitable: false,
			reasonNames:  "token",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verdict := engine.Classify(tc.input)

			if verdict.Suitable != tc.wantSuitable {
				t.Errorf("Classify(%q).Suitable = %v, want %v", tc.input, verdict.Suitable, tc.wantSuitable)
			}

			if tc.wantSuitable {
				if verdict.Reason != "" {
					t.Errorf("Expected empty reason for suitable query, got %q", verdict.Reason)
				}
				return
			}

			if verdict.Reason == "" {
				t.Fatal("Expected a rejection reason, got empty string")
			}
			if !strings.Contains(verdict.Reason, tc.reasonNames) {
				t.Errorf("Reason %q does not name %q", verdict.Reason, tc.reasonNames)
			}
		})
	}
}

func TestFilterEngine_FirstMatchWins(t *testing.T) {
	engine, err := NewFilterEngine()
	if err != nil {
		t.Fatalf("Failed to init: %v", err)
	}

	// "password" (priority 100) outranks "secret" (priority 90) regardless of
	// textual order in the query.
	verdict := engine.Classify("the secret password is hunter2")
	if verdict.Suitable {
		t.Fatal("Expected unsuitable verdict")
	}
	if !strings.Contains(verdict.Reason, "password") {
		t.Errorf("Expected highest-priority term 'password' in reason, got %q", verdict.Reason)
	}
}

func TestFilterEngine_GUIDOutranksDenylist(t *testing.T) {
	engine, err := NewFilterEngine()
	if err != nil {
		t.Fatalf("Failed to init: %v", err)
	}

	verdict := engine.Classify("password for 550e8400-e29b-41d4-a716-446655440000")
	if verdict.Suitable {
		t.Fatal("Expected unsuitable verdict")
	}
	if !strings.Contains(verdict.Reason, "GUID") {
		t.Errorf("GUID check should run before the denylist, got reason %q", verdict.Reason)
	}
}

func TestEngineInitializationProperties(t *testing.T) {
	engine, err := NewFilterEngine()
	if err != nil {
		t.Fatalf("Failed to init: %v", err)
	}

	if len(engine.Topics) < 2 {
		t.Fatal("Not enough topics loaded to test sorting.")
	}

	first := engine.Topics[0]
	last := engine.Topics[len(engine.Topics)-1]

	if first.Priority < last.Priority {
		t.Errorf("Topics are not sorted by priority! First: %d, Last: %d", first.Priority, last.Priority)
	}

	for _, topic := range engine.Topics {
		if topic.Term != strings.ToLower(topic.Term) {
			t.Errorf("Term %q was not lowercased at load", topic.Term)
		}
	}
}

func TestFilterEngine_Concurrency(t *testing.T) {
	engine, _ := NewFilterEngine()
	input := "My password is 12345"

	// Simulate 100 concurrent classifications
	t.Run("ParallelClassify", func(t *testing.T) {
		t.Parallel()
		for i := 0; i < 100; i++ {
			t.Run("Worker", func(t *testing.T) {
				t.Parallel()
				verdict := engine.Classify(input)
				if verdict.Suitable {
					t.Error("Concurrent classify failed to flag sensitive query")
				}
			})
		}
	})
}

func BenchmarkClassifySafeQuery(b *testing.B) {
	engine, _ := NewFilterEngine()
	input := "a perfectly ordinary search about container orchestration"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Classify(input)
	}
}

func BenchmarkClassifySensitiveQuery(b *testing.B) {
	engine, _ := NewFilterEngine()
	input := "My password is 12345 and should be detected."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Classify(input)
	}
}
