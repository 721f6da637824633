// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
	"github.com/primeedutech/counsellor/services/counsellor/ingest"
	"github.com/primeedutech/counsellor/services/counsellor/store"
)

// =============================================================================
// Test Setup
// =============================================================================

// mockIndexer implements knowledge.Indexer for ingestion testing.
type mockIndexer struct {
	// VectorIDs are returned by Store
	VectorIDs []string
	// StoreError is returned by Store
	StoreError error
	// StoredDocuments records (documentID, title) pairs passed to Store
	StoredDocuments [][2]string
	// DeletedIDs records every id passed to DeleteByIDs
	DeletedIDs []string
}

func (m *mockIndexer) Store(ctx context.Context, documentID, title, text string) ([]string, error) {
	if m.StoreError != nil {
		return nil, m.StoreError
	}
	m.StoredDocuments = append(m.StoredDocuments, [2]string{documentID, title})
	return m.VectorIDs, nil
}

func (m *mockIndexer) DeleteByIDs(ctx context.Context, ids []string) error {
	m.DeletedIDs = append(m.DeletedIDs, ids...)
	return nil
}

// knowledgeTestEnv bundles the knowledge handler with its collaborators.
type knowledgeTestEnv struct {
	router  *gin.Engine
	store   *store.Store
	indexer *mockIndexer
}

func newKnowledgeTestEnv(t *testing.T, indexer *mockIndexer) *knowledgeTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := NewKnowledgeHandler(st, indexer, ingest.NewURLFetcher(nil))

	router := gin.New()
	router.GET("/v1/admin/knowledge", h.List)
	router.DELETE("/v1/admin/knowledge", h.Delete)
	router.POST("/v1/admin/knowledge/text", h.AddText)
	router.POST("/v1/admin/knowledge/url", h.AddURL)

	return &knowledgeTestEnv{router: router, store: st, indexer: indexer}
}

func (e *knowledgeTestEnv) postJSON(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// validSourceContent clears the 50 character minimum.
const validSourceContent = "Canadian study permits require proof of funds, an acceptance " +
	"letter from a designated learning institution, and biometrics."

// =============================================================================
// AddText Tests
// =============================================================================

func TestAddText_Success(t *testing.T) {
	indexer := &mockIndexer{VectorIDs: []string{"vec-1", "vec-2"}}
	env := newKnowledgeTestEnv(t, indexer)

	w := env.postJSON(t, "/v1/admin/knowledge/text", map[string]string{
		"title":   "Canada Visa Guide",
		"content": validSourceContent,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                      `json:"success"`
		Source  *datatypes.KnowledgeSource `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Source)
	assert.True(t, strings.HasPrefix(resp.Source.ID, "kb_"))
	assert.Equal(t, datatypes.SourceTypeText, resp.Source.Type)
	assert.Equal(t, []string{"vec-1", "vec-2"}, resp.Source.VectorIDs)

	require.Len(t, indexer.StoredDocuments, 1)
	assert.Equal(t, resp.Source.ID, indexer.StoredDocuments[0][0])
	assert.Equal(t, "Canada Visa Guide", indexer.StoredDocuments[0][1])
}

func TestAddText_Validation(t *testing.T) {
	env := newKnowledgeTestEnv(t, &mockIndexer{})

	w := env.postJSON(t, "/v1/admin/knowledge/text", map[string]string{"title": "No content"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Title and content are required")

	w = env.postJSON(t, "/v1/admin/knowledge/text", map[string]string{
		"title":   "Too short",
		"content": "tiny",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Content must be at least 50 characters")
}

func TestAddText_IndexFailure(t *testing.T) {
	indexer := &mockIndexer{StoreError: assert.AnError}
	env := newKnowledgeTestEnv(t, indexer)

	w := env.postJSON(t, "/v1/admin/knowledge/text", map[string]string{
		"title":   "Canada Visa Guide",
		"content": validSourceContent,
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to store document in vector database")
}

// =============================================================================
// AddURL Tests
// =============================================================================

func TestAddURL_Success(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + validSourceContent + "</p></body></html>"))
	}))
	defer page.Close()

	indexer := &mockIndexer{VectorIDs: []string{"vec-1"}}
	env := newKnowledgeTestEnv(t, indexer)

	w := env.postJSON(t, "/v1/admin/knowledge/url", map[string]string{
		"title": "Visa Guide",
		"url":   page.URL,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, indexer.StoredDocuments, 1)

	sources, err := env.store.ListKnowledgeSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, datatypes.SourceTypeURL, sources[0].Type)
	assert.Equal(t, page.URL, sources[0].URL)
}

func TestAddURL_InvalidURL(t *testing.T) {
	env := newKnowledgeTestEnv(t, &mockIndexer{})

	w := env.postJSON(t, "/v1/admin/knowledge/url", map[string]string{
		"title": "Bad",
		"url":   "not-a-url",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid URL format")
}

func TestAddURL_FetchFailure(t *testing.T) {
	env := newKnowledgeTestEnv(t, &mockIndexer{})

	w := env.postJSON(t, "/v1/admin/knowledge/url", map[string]string{
		"title": "Gone",
		"url":   "http://127.0.0.1:0/nowhere",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch URL content")
}

// =============================================================================
// List and Delete Tests
// =============================================================================

func TestKnowledgeListAndDelete(t *testing.T) {
	indexer := &mockIndexer{VectorIDs: []string{"vec-1", "vec-2"}}
	env := newKnowledgeTestEnv(t, indexer)

	w := env.postJSON(t, "/v1/admin/knowledge/text", map[string]string{
		"title":   "Canada Visa Guide",
		"content": validSourceContent,
	})
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest("GET", "/v1/admin/knowledge", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var sources []*datatypes.KnowledgeSource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sources))
	require.Len(t, sources, 1)

	// Delete cascades to the vector index.
	req, _ = http.NewRequest("DELETE", "/v1/admin/knowledge?id="+sources[0].ID, nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"vec-1", "vec-2"}, indexer.DeletedIDs)

	// A second delete is a 404.
	req, _ = http.NewRequest("DELETE", "/v1/admin/knowledge?id="+sources[0].ID, nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeList_EmptyIsArray(t *testing.T) {
	env := newKnowledgeTestEnv(t, &mockIndexer{})

	req, _ := http.NewRequest("GET", "/v1/admin/knowledge", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}
