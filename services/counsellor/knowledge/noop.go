// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"errors"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// ErrIndexUnavailable is returned by NoopIndex writes when the service
// runs without a vector database.
var ErrIndexUnavailable = errors.New("vector index not configured")

// NoopIndex stands in for the vector index when no Weaviate URL is
// configured (lightweight mode). Searches return no context, so the
// chat pipeline still answers, just without retrieval. Ingestion is
// rejected because there is nowhere to store vectors.
type NoopIndex struct{}

var _ Searcher = (*NoopIndex)(nil)
var _ Indexer = (*NoopIndex)(nil)

// Search always returns no results.
func (n *NoopIndex) Search(_ context.Context, _ string, _ int) ([]datatypes.SearchResult, error) {
	return nil, nil
}

// Store rejects ingestion with ErrIndexUnavailable.
func (n *NoopIndex) Store(_ context.Context, _, _, _ string) ([]string, error) {
	return nil, ErrIndexUnavailable
}

// DeleteByIDs is a no-op.
func (n *NoopIndex) DeleteByIDs(_ context.Context, _ []string) error {
	return nil
}
