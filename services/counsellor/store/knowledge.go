// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// =============================================================================
// Knowledge Source Operations
// =============================================================================

// CreateKnowledgeSource persists a new knowledge source record.
//
// Assigns ID and CreatedAt when unset. The vector identifiers are usually
// set afterwards via SetVectorIDs once indexing has completed.
func (s *Store) CreateKnowledgeSource(ctx context.Context, src *datatypes.KnowledgeSource) error {
	if src.ID == "" {
		src.ID = datatypes.NewID(datatypes.KnowledgeIDPrefix)
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}
	return s.withTxn(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, keyPrefixKnowledge+src.ID, src)
	})
}

// KnowledgeSourceByID returns the source with the given identifier.
func (s *Store) KnowledgeSourceByID(ctx context.Context, id string) (*datatypes.KnowledgeSource, error) {
	var src datatypes.KnowledgeSource
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, keyPrefixKnowledge+id, &src)
	})
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// SetVectorIDs records the vector index chunk identifiers for a source.
//
// The read-modify-write runs in one transaction so a concurrent update to
// the same record cannot be lost.
func (s *Store) SetVectorIDs(ctx context.Context, id string, vectorIDs []string) error {
	return s.withTxn(ctx, func(txn *badger.Txn) error {
		var src datatypes.KnowledgeSource
		if err := getJSON(txn, keyPrefixKnowledge+id, &src); err != nil {
			return err
		}
		src.VectorIDs = vectorIDs
		return setJSON(txn, keyPrefixKnowledge+id, &src)
	})
}

// ListKnowledgeSources returns all knowledge sources, newest first.
func (s *Store) ListKnowledgeSources(ctx context.Context) ([]*datatypes.KnowledgeSource, error) {
	var sources []*datatypes.KnowledgeSource
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		sources, err = scanJSON[datatypes.KnowledgeSource](txn, keyPrefixKnowledge)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].CreatedAt.After(sources[j].CreatedAt)
	})
	return sources, nil
}

// DeleteKnowledgeSource removes a source record and returns it, so the
// caller can cascade deletion to the vector index.
//
// # Outputs
//
//   - *datatypes.KnowledgeSource: The record that was removed.
//   - error: ErrNotFound when no source has the given identifier.
func (s *Store) DeleteKnowledgeSource(ctx context.Context, id string) (*datatypes.KnowledgeSource, error) {
	var src datatypes.KnowledgeSource
	err := s.withTxn(ctx, func(txn *badger.Txn) error {
		if err := getJSON(txn, keyPrefixKnowledge+id, &src); err != nil {
			return err
		}
		return txn.Delete([]byte(keyPrefixKnowledge + id))
	})
	if err != nil {
		return nil, err
	}
	return &src, nil
}
