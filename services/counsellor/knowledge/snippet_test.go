// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

func TestFormatSnippet(t *testing.T) {
	got := FormatSnippet(datatypes.SearchResult{
		Title:   "UK Visa Guide",
		Content: "Apply at least three months in advance.",
		Score:   0.912,
	})
	assert.Equal(t, "**UK Visa Guide**\nApply at least three months in advance. (Relevance: 91.2%)", got)
}

func TestFormatSnippets_PreservesOrder(t *testing.T) {
	snippets := FormatSnippets([]datatypes.SearchResult{
		{Title: "A", Content: "first", Score: 0.9},
		{Title: "B", Content: "second", Score: 0.5},
	})
	assert.Len(t, snippets, 2)
	assert.Contains(t, snippets[0], "**A**")
	assert.Contains(t, snippets[1], "**B**")
}

func TestChunkUUID_Deterministic(t *testing.T) {
	assert.Equal(t, chunkUUID("kb_1", 0), chunkUUID("kb_1", 0))
	assert.NotEqual(t, chunkUUID("kb_1", 0), chunkUUID("kb_1", 1))
	assert.NotEqual(t, chunkUUID("kb_1", 0), chunkUUID("kb_2", 0))
}
