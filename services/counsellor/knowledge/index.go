// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// =============================================================================
// Vector Index
// =============================================================================

// Searcher is the read side of the index, all the chat path needs.
type Searcher interface {
	// Search returns the topK chunks most similar to query, best first.
	Search(ctx context.Context, query string, topK int) ([]datatypes.SearchResult, error)
}

// Indexer is the write side of the index, used by the admin ingest path.
type Indexer interface {
	// Store chunks, embeds and upserts a document, returning the chunk ids.
	Store(ctx context.Context, documentID, title, text string) ([]string, error)
	// DeleteByIDs removes chunks by id, continuing past per-id failures.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// WeaviateIndex implements Searcher and Indexer against a Weaviate instance,
// with vectors computed client-side by an Embedder.
type WeaviateIndex struct {
	client       *weaviate.Client
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
}

var (
	_ Searcher = (*WeaviateIndex)(nil)
	_ Indexer  = (*WeaviateIndex)(nil)
)

// NewWeaviateIndex creates the index. Panics if a dependency is nil:
// construction happens at startup where a missing dependency is a
// programming error.
func NewWeaviateIndex(client *weaviate.Client, embedder Embedder) *WeaviateIndex {
	if client == nil {
		panic("NewWeaviateIndex: client must not be nil")
	}
	if embedder == nil {
		panic("NewWeaviateIndex: embedder must not be nil")
	}
	return &WeaviateIndex{
		client:       client,
		embedder:     embedder,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
}

// chunkQueryResponse is the typed shape of the nearVector GraphQL response.
type chunkQueryResponse struct {
	Get struct {
		KnowledgeChunk []struct {
			Content    string `json:"content"`
			Title      string `json:"title"`
			Additional struct {
				Certainty float64 `json:"certainty"`
			} `json:"_additional"`
		} `json:"KnowledgeChunk"`
	} `json:"Get"`
}

// Search implements the Searcher interface.
//
// # Description
//
//	Embeds the query and runs a nearVector search, returning results in
//	descending similarity order. Callers treat any error as "no context";
//	a search failure must never abort a chat request.
func (w *WeaviateIndex) Search(ctx context.Context, query string, topK int) ([]datatypes.SearchResult, error) {
	vectors, err := w.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	nearVector := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vectors[0])

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "title"},
		{Name: "_additional { certainty }"},
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(ChunkClassName).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("semantic search: %s", result.Errors[0].Message)
	}

	parsed, err := parseGraphQLResponse[chunkQueryResponse](result)
	if err != nil {
		return nil, err
	}

	results := make([]datatypes.SearchResult, 0, len(parsed.Get.KnowledgeChunk))
	for _, c := range parsed.Get.KnowledgeChunk {
		results = append(results, datatypes.SearchResult{
			Title:   c.Title,
			Content: c.Content,
			Score:   c.Additional.Certainty,
		})
	}
	return results, nil
}

// Store implements the Indexer interface.
//
// # Description
//
//	Splits the document into overlapping windows, embeds the whole batch in
//	one call and upserts all chunks in a single Weaviate batch request.
//	Chunk identifiers are deterministic UUIDs derived from the document id
//	and chunk position, so re-ingesting a document overwrites its old
//	chunks instead of duplicating them.
//
// # Outputs
//
//   - []string: The chunk ids, for storage on the knowledge source record.
//   - error: Non-nil when embedding or the batch upsert fails.
func (w *WeaviateIndex) Store(ctx context.Context, documentID, title, text string) ([]string, error) {
	chunks := ChunkText(text, w.chunkSize, w.chunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}
	slog.Info("Split document into chunks", "document_id", documentID, "chunk_count", len(chunks))

	vectors, err := w.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	now := time.Now().UnixMilli()
	objects := make([]*models.Object, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkID := chunkUUID(documentID, i)
		ids[i] = chunkID

		objects[i] = &models.Object{
			Class:  ChunkClassName,
			ID:     strfmt.UUID(chunkID),
			Vector: vectors[i],
			Properties: map[string]interface{}{
				"content":     chunk,
				"title":       title,
				"document_id": documentID,
				"chunk_index": i,
				"ingested_at": now,
			},
		}
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("batch upsert to Weaviate: %w", err)
	}
	for _, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			return nil, fmt.Errorf("batch upsert item failed: %s", item.Result.Errors.Error[0].Message)
		}
	}

	slog.Info("Indexed document", "document_id", documentID, "chunks", len(ids))
	return ids, nil
}

// DeleteByIDs implements the Indexer interface.
//
// Per-id failures are logged and skipped; the last error is returned so the
// caller can record that the cascade was incomplete.
func (w *WeaviateIndex) DeleteByIDs(ctx context.Context, ids []string) error {
	var lastErr error
	for _, id := range ids {
		err := w.client.Data().Deleter().
			WithClassName(ChunkClassName).
			WithID(id).
			Do(ctx)
		if err != nil {
			slog.Warn("Failed to delete knowledge chunk", "chunk_id", id, "error", err)
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("delete chunks: %w", lastErr)
	}
	return nil
}

// chunkUUID derives a stable UUID for a chunk from its document and position.
func chunkUUID(documentID string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s_chunk_%d", documentID, index)))
	id, _ := uuid.FromBytes(hash[:16])
	return id.String()
}

// parseGraphQLResponse decodes a Weaviate GraphQL response into a typed
// struct via a JSON round trip.
func parseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}
	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal GraphQL response data: %w", err)
	}
	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("unmarshal GraphQL response: %w", err)
	}
	return &result, nil
}
