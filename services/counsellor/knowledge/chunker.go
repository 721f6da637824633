// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package knowledge implements the counsellor's retrieval layer: fixed-window
// text chunking, OpenAI embeddings and a Weaviate-backed vector index.
package knowledge

// Default chunking geometry. A window of 1000 characters with 200 characters
// of overlap keeps each chunk self-contained while preserving context across
// boundaries.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkText splits text into fixed-size windows with overlap.
//
// # Description
//
//	Each window is size characters long; the window start advances by
//	size-overlap each step, so consecutive chunks share overlap characters.
//	The trailing partial window is kept when non-empty. For input length L
//	greater than overlap, this yields ceil((L-overlap)/(size-overlap))
//	chunks.
//
// # Inputs
//
//   - text: The input text. Empty input yields no chunks.
//   - size: Window length in bytes. Must exceed overlap.
//   - overlap: Shared suffix/prefix length between consecutive windows.
//
// # Outputs
//
//   - []string: The chunks, in document order.
func ChunkText(text string, size, overlap int) []string {
	if text == "" || size <= overlap {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}
