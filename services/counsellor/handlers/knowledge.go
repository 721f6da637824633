// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
	"github.com/primeedutech/counsellor/services/counsellor/ingest"
	"github.com/primeedutech/counsellor/services/counsellor/knowledge"
	"github.com/primeedutech/counsellor/services/counsellor/observability"
	"github.com/primeedutech/counsellor/services/counsellor/store"
)

// minSourceContentLength rejects documents too short to be worth indexing.
const minSourceContentLength = 50

// maxPDFUploadBytes bounds a PDF upload.
const maxPDFUploadBytes = 20 << 20

// =============================================================================
// Knowledge Source Handlers
// =============================================================================

// KnowledgeHandler implements the admin knowledge base endpoints.
type KnowledgeHandler struct {
	store   *store.Store
	indexer knowledge.Indexer
	fetcher *ingest.URLFetcher
}

// NewKnowledgeHandler creates the knowledge admin handler. Panics on nil
// dependencies.
func NewKnowledgeHandler(st *store.Store, indexer knowledge.Indexer, fetcher *ingest.URLFetcher) *KnowledgeHandler {
	if st == nil {
		panic("NewKnowledgeHandler: store must not be nil")
	}
	if indexer == nil {
		panic("NewKnowledgeHandler: indexer must not be nil")
	}
	if fetcher == nil {
		panic("NewKnowledgeHandler: fetcher must not be nil")
	}
	return &KnowledgeHandler{store: st, indexer: indexer, fetcher: fetcher}
}

// List handles GET: all knowledge source records, newest first.
func (h *KnowledgeHandler) List(c *gin.Context) {
	sources, err := h.store.ListKnowledgeSources(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list knowledge sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}
	if sources == nil {
		sources = []*datatypes.KnowledgeSource{}
	}
	c.JSON(http.StatusOK, sources)
}

// Delete handles DELETE by ?id= query parameter.
//
// Removes the record, then cascades to the vector index. Vector deletion
// failure is logged and swallowed: the record is already gone and a retry
// would only recreate orphan-chunk cleanup work.
func (h *KnowledgeHandler) Delete(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Knowledge source ID is required"})
		return
	}

	src, err := h.store.DeleteKnowledgeSource(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Knowledge source not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to delete knowledge source", "source_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	if len(src.VectorIDs) > 0 {
		if err := h.indexer.DeleteByIDs(c.Request.Context(), src.VectorIDs); err != nil {
			slog.Warn("Failed to delete vectors for knowledge source",
				"source_id", id, "error", err)
		}
	}

	slog.Info("Knowledge source deleted", "source_id", id, "chunks", len(src.VectorIDs))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// addTextRequest is the payload for AddText.
type addTextRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AddText handles POST of a raw-text knowledge source.
func (h *KnowledgeHandler) AddText(c *gin.Context) {
	var req addTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}
	if len(strings.TrimSpace(req.Content)) < minSourceContentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content must be at least 50 characters"})
		return
	}

	h.createAndIndex(c, &datatypes.KnowledgeSource{
		Type:    datatypes.SourceTypeText,
		Title:   req.Title,
		Content: req.Content,
		Metadata: map[string]any{
			"type": string(datatypes.SourceTypeText),
		},
	}, req.Content)
}

// AddPDF handles POST of a multipart PDF upload (fields "file" and "title").
func (h *KnowledgeHandler) AddPDF(c *gin.Context) {
	title := c.PostForm("title")
	fileHeader, err := c.FormFile("file")
	if err != nil || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PDF file and title are required"})
		return
	}
	if !strings.Contains(fileHeader.Header.Get("Content-Type"), "pdf") &&
		!strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a PDF"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("Failed to open PDF upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPDFUploadBytes))
	if err != nil {
		slog.Error("Failed to read PDF upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	text, err := ingest.ExtractPDFText(data)
	if err != nil {
		slog.Warn("Failed to parse PDF upload", "file", fileHeader.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse PDF file"})
		return
	}
	if len(text) < minSourceContentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PDF content is too short or could not be extracted"})
		return
	}

	h.createAndIndex(c, &datatypes.KnowledgeSource{
		Type:     datatypes.SourceTypePDF,
		Title:    title,
		Content:  text,
		FileName: fileHeader.Filename,
		Metadata: map[string]any{
			"type":     string(datatypes.SourceTypePDF),
			"fileName": fileHeader.Filename,
		},
	}, text)
}

// addURLRequest is the payload for AddURL.
type addURLRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AddURL handles POST of a scraped-web-page knowledge source.
func (h *KnowledgeHandler) AddURL(c *gin.Context) {
	var req addURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL and title are required"})
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL format"})
		return
	}

	text, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		slog.Warn("Failed to fetch URL for ingestion", "url", req.URL, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch URL content"})
		return
	}
	if len(text) < minSourceContentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL content is too short or could not be extracted"})
		return
	}

	h.createAndIndex(c, &datatypes.KnowledgeSource{
		Type:    datatypes.SourceTypeURL,
		Title:   req.Title,
		Content: text,
		URL:     req.URL,
		Metadata: map[string]any{
			"type": string(datatypes.SourceTypeURL),
			"url":  req.URL,
		},
	}, text)
}

// createAndIndex persists the source record, indexes its content and stores
// the resulting chunk ids back on the record.
func (h *KnowledgeHandler) createAndIndex(c *gin.Context, src *datatypes.KnowledgeSource, content string) {
	ctx := c.Request.Context()
	metrics := observability.DefaultMetrics

	if err := h.store.CreateKnowledgeSource(ctx, src); err != nil {
		slog.Error("Failed to create knowledge source", "error", err)
		if metrics != nil {
			metrics.RecordKnowledgeIngest(string(src.Type), false)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	vectorIDs, err := h.indexer.Store(ctx, src.ID, src.Title, content)
	if err != nil {
		slog.Error("Failed to index knowledge source", "source_id", src.ID, "error", err)
		if metrics != nil {
			metrics.RecordKnowledgeIngest(string(src.Type), false)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document in vector database"})
		return
	}

	if err := h.store.SetVectorIDs(ctx, src.ID, vectorIDs); err != nil {
		slog.Error("Failed to record vector ids", "source_id", src.ID, "error", err)
		if metrics != nil {
			metrics.RecordKnowledgeIngest(string(src.Type), false)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}
	src.VectorIDs = vectorIDs

	slog.Info("Knowledge source ingested",
		"source_id", src.ID, "type", src.Type, "chunks", len(vectorIDs))
	if metrics != nil {
		metrics.RecordKnowledgeIngest(string(src.Type), true)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "source": src})
}
