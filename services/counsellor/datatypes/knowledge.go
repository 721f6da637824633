// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// =============================================================================
// Knowledge Base Entities
// =============================================================================

// SourceType identifies how a knowledge source was ingested.
type SourceType string

const (
	SourceTypeText SourceType = "text"
	SourceTypePDF  SourceType = "pdf"
	SourceTypeURL  SourceType = "url"
)

// KnowledgeSource is a document the admin added to the knowledge base.
//
// # Description
//
// The source record is the catalogue entry; the searchable content lives in
// the vector index as chunks. VectorIDs holds the identifiers of those chunks
// so deleting the source can cascade to the index.
type KnowledgeSource struct {
	ID        string         `json:"id"`
	Type      SourceType     `json:"type"`
	Title     string         `json:"title"`
	Content   string         `json:"content,omitempty"`
	FileName  string         `json:"fileName,omitempty"`
	URL       string         `json:"url,omitempty"`
	VectorIDs []string       `json:"vectorIds,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// SearchResult is one knowledge chunk returned by a semantic search.
type SearchResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
