// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// ChunkClassName is the Weaviate class holding knowledge base chunks.
const ChunkClassName = "KnowledgeChunk"

// GetKnowledgeChunkSchema returns the Weaviate class for knowledge chunks.
//
// Vectorizer is "none": vectors are computed client-side by the Embedder
// and supplied with each object.
func GetKnowledgeChunkSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       ChunkClassName,
		Description: "An embedded chunk of a knowledge base document.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "title",
				DataType:        []string{"text"},
				Description:     "Title of the source document.",
				IndexFilterable: indexFilterable,
				Tokenization:    "word",
			},
			{
				Name:            "document_id",
				DataType:        []string{"text"},
				Description:     "Identifier of the owning knowledge source record.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "chunk_index",
				DataType:    []string{"int"},
				Description: "Position of the chunk within its document.",
			},
			{
				Name:        "ingested_at",
				DataType:    []string{"int"},
				Description: "Ingestion time in Unix milliseconds.",
			},
		},
	}
}

// EnsureSchema creates the knowledge chunk class if it does not exist.
func EnsureSchema(ctx context.Context, client *weaviate.Client) error {
	class := GetKnowledgeChunkSchema()

	_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx)
	if err == nil {
		slog.Debug("Weaviate schema already exists", "class", class.Class)
		return nil
	}

	slog.Info("Creating Weaviate schema", "class", class.Class)
	if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create schema for class %s: %w", class.Class, err)
	}
	return nil
}
