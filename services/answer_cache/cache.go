// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package answer_cache provides the precomputed-answer lookup for the AI
// search service.
//
// The only implementation today is an in-memory table seeded from an embedded
// YAML file: no TTL, no eviction, no metrics of its own. A production
// replacement (a real cache store with expiration) satisfies the same Cache
// interface; the handler and transport core never change.
package answer_cache

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/meridian-oss/aisearch/services/answer_cache/seed"
)

// CachedAnswer is one precomputed answer.
//
// Immutable once retrieved: the cache owns the backing storage and Lookup
// hands out copies, so a caller mutating the result cannot corrupt the store.
type CachedAnswer struct {
	Answer  string
	Sources []string
}

// Cache defines the contract for answer lookup.
//
// # Description
//
// Lookup is side-effect free and safe to call repeatedly; the same query
// always yields the same result. Matching is exact after normalization
// (surrounding whitespace trimmed, case-insensitive); there is no fuzzy or
// prefix matching.
//
// # Thread Safety
//
// The store is read-only after construction, so implementations are safe for
// unsynchronized concurrent reads.
type Cache interface {
	Lookup(query string) (*CachedAnswer, bool)
}

// =============================================================================
// Seed File Types
// =============================================================================

type seedFile struct {
	Answers []seedEntry `yaml:"answers"`
}

type seedEntry struct {
	Key     string   `yaml:"key" validate:"required"`
	Answer  string   `yaml:"answer" validate:"required"`
	Sources []string `yaml:"sources" validate:"required,min=1,dive,required,url"`
}

// seedValidate validates seed entries at load time. Shared instance, mirrors
// how request DTO validation is initialized elsewhere in the service.
var seedValidate = validator.New()

// =============================================================================
// Memory Cache
// =============================================================================

// memoryCache implements Cache over a map keyed by normalized query text.
type memoryCache struct {
	answers map[string]CachedAnswer
}

// NewMemoryCache builds a Cache from the embedded seed table.
//
// # Description
//
// Unmarshals the embedded YAML, validates every entry (key, answer, and at
// least one well-formed source URL are required), and indexes the entries by
// normalized key. Duplicate normalized keys are rejected rather than silently
// overwritten.
//
// # Outputs
//
//   - Cache: Ready for concurrent lookups.
//   - error: Non-nil if the seed file is malformed or fails validation.
func NewMemoryCache() (Cache, error) {
	var file seedFile
	if err := yaml.Unmarshal(seed.SeedAnswers, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded seed file: %w", err)
	}

	answers := make(map[string]CachedAnswer, len(file.Answers))
	for i, entry := range file.Answers {
		if err := seedValidate.Struct(entry); err != nil {
			return nil, fmt.Errorf("seed entry %d failed validation: %w", i, err)
		}
		key := NormalizeKey(entry.Key)
		if _, exists := answers[key]; exists {
			return nil, fmt.Errorf("seed entry %d has duplicate key %q", i, key)
		}
		answers[key] = CachedAnswer{
			Answer:  entry.Answer,
			Sources: entry.Sources,
		}
	}

	return &memoryCache{answers: answers}, nil
}

// Lookup returns the cached answer for a query, if one exists.
//
// The returned value is a copy; mutating it does not affect the store.
func (c *memoryCache) Lookup(query string) (*CachedAnswer, bool) {
	entry, ok := c.answers[NormalizeKey(query)]
	if !ok {
		return nil, false
	}

	result := CachedAnswer{
		Answer:  entry.Answer,
		Sources: append([]string(nil), entry.Sources...),
	}
	return &result, true
}

// NormalizeKey produces the canonical lookup key for a query: surrounding
// whitespace trimmed, lowercased. " DotNet ", "dotnet", and "DOTNET" all
// normalize to the same key.
func NormalizeKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

var _ Cache = (*memoryCache)(nil)
