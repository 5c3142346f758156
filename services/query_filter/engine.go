// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query_filter classifies search queries as suitable or unsuitable
// for AI processing.
//
// The engine is a keyword/pattern heuristic, not semantic PII detection: it
// flags queries that look like record-identifier lookups (GUID tokens) and
// queries touching a denylist of sensitive topics. Production deployments
// would swap in a real content-safety model behind the same QueryFilter
// interface without touching the transport core.
package query_filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/meridian-oss/aisearch/services/query_filter/enforcement"
)

// zeroGUIDPrefix is the literal first 8 hex characters of the all-zero UUID.
// Placeholder identifiers frequently leak into queries in this truncated
// form, so it is matched as a plain substring in addition to full UUID
// token parsing.
const zeroGUIDPrefix = "00000000"

// Verdict is the classification outcome for one query.
//
// Reason is populated only when Suitable is false. It is human-readable and
// safe to surface to the client verbatim.
type Verdict struct {
	Suitable bool
	Reason   string
}

// QueryFilter defines the contract for query suitability classification.
//
// # Description
//
// Classify is total: it has no error conditions and never blocks. The filter
// holds no per-query state, so one instance is safe for unsynchronized
// concurrent use by every request.
type QueryFilter interface {
	Classify(query string) Verdict
}

// =============================================================================
// Denylist File Types
// =============================================================================

type denylistFile struct {
	Topics []Topic `yaml:"topics"`
}

// Topic is one denylisted sensitive topic.
type Topic struct {
	Term        string `yaml:"term"`
	Priority    int    `yaml:"priority"`
	Description string `yaml:"description"`
}

// =============================================================================
// Engine
// =============================================================================

// FilterEngine is the main entry point for query classification. It holds the
// denylist loaded from the embedded policy file and provides the Classify
// method to check queries against it.
type FilterEngine struct {
	Topics []Topic
}

// NewFilterEngine initializes a new instance of the FilterEngine.
//
// This function takes no arguments. It automatically loads the denylist
// embedded in the binary via the enforcement package.
//
// It performs the following operations:
// 1. Unmarshals the embedded YAML data.
// 2. Rejects empty or blank terms.
// 3. Lowercases the terms and sorts topics by priority.
//
// Returns an error if the embedded YAML is malformed or contains a blank term.
func NewFilterEngine() (*FilterEngine, error) {
	var file denylistFile
	if err := yaml.Unmarshal(enforcement.SensitiveTopics, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded denylist file: %w", err)
	}
	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("embedded denylist contains no topics")
	}

	for i := range file.Topics {
		term := strings.ToLower(strings.TrimSpace(file.Topics[i].Term))
		if term == "" {
			return nil, fmt.Errorf("denylist topic %d has a blank term", i)
		}
		file.Topics[i].Term = term
	}

	// Sort the topics from highest to lowest priority so the first match
	// determines the reported reason.
	sort.SliceStable(file.Topics, func(i, j int) bool {
		return file.Topics[i].Priority > file.Topics[j].Priority
	})

	return &FilterEngine{Topics: file.Topics}, nil
}

// Classify determines whether a query is suitable for AI processing.
//
// # Description
//
// Checks run in fixed order, first match wins:
//  1. Any whitespace-delimited token that parses as a well-formed UUID, or a
//     literal occurrence of the truncated all-zero GUID, makes the query
//     unsuitable with a GUID-specific reason.
//  2. A case-insensitive substring match against the denylist makes the query
//     unsuitable with a reason naming the matched term.
//  3. Otherwise the query is suitable with no reason.
//
// The query is untrusted input and is intentionally not length-capped here;
// arbitrarily long queries are tokenized and scanned in full.
//
// # Inputs
//
//   - query: Raw query text as received from the client.
//
// # Outputs
//
//   - Verdict: Suitable flag plus an optional client-safe reason.
func (e *FilterEngine) Classify(query string) Verdict {
	for _, token := range strings.Fields(query) {
		if _, err := uuid.Parse(token); err == nil {
			return Verdict{
				Suitable: false,
				Reason:   "query references a record identifier (GUID); identifier lookups are not sent to the AI service",
			}
		}
	}
	if strings.Contains(query, zeroGUIDPrefix) {
		return Verdict{
			Suitable: false,
			Reason:   "query references a record identifier (GUID); identifier lookups are not sent to the AI service",
		}
	}

	lowered := strings.ToLower(query)
	for _, topic := range e.Topics {
		if strings.Contains(lowered, topic.Term) {
			return Verdict{
				Suitable: false,
				Reason:   fmt.Sprintf("query mentions %q; this topic is not sent to the AI service", topic.Term),
			}
		}
	}

	return Verdict{Suitable: true}
}

var _ QueryFilter = (*FilterEngine)(nil)
