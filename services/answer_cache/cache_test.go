// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package answer_cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryCache_LoadsSeedTable(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err, "embedded seed table should load")

	answer, ok := cache.Lookup("dotnet")
	require.True(t, ok, "seed table must contain the dotnet entry")
	assert.Contains(t, answer.Answer, ".NET")
	assert.Len(t, answer.Sources, 2, "dotnet entry carries exactly two sources")
}

func TestLookup_NormalizesKey(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	// Trim-insensitive and case-insensitive: all three variants hit the same
	// entry.
	variants := []string{" DotNet ", "dotnet", "DOTNET"}
	for _, q := range variants {
		answer, ok := cache.Lookup(q)
		require.True(t, ok, "variant %q should hit", q)
		assert.Contains(t, answer.Answer, ".NET")
	}
}

func TestLookup_MissReturnsAbsent(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	answer, ok := cache.Lookup("quantum gravity")
	assert.False(t, ok)
	assert.Nil(t, answer)
}

func TestLookup_NoPrefixMatching(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	_, ok := cache.Lookup("dotnet core")
	assert.False(t, ok, "matching is exact, not prefix")
}

func TestLookup_ReturnsCopy(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	first, ok := cache.Lookup("golang")
	require.True(t, ok)
	first.Sources[0] = "mutated"
	first.Answer = "mutated"

	second, ok := cache.Lookup("golang")
	require.True(t, ok)
	assert.NotEqual(t, "mutated", second.Sources[0], "store must not observe caller mutations")
	assert.NotEqual(t, "mutated", second.Answer)
}

func TestLookup_Idempotent(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)

	first, ok := cache.Lookup("kubernetes")
	require.True(t, ok)
	second, ok := cache.Lookup("kubernetes")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "dotnet", NormalizeKey(" DotNet "))
	assert.Equal(t, "dotnet", NormalizeKey("DOTNET"))
	assert.Equal(t, "", NormalizeKey("   "))
}
