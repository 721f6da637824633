// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// =============================================================================
// Server-Sent Events Writer
// =============================================================================

// doneMarker is the literal terminal event of every successful stream.
const doneMarker = "data: [DONE]\n\n"

// StreamWriter writes Server-Sent Events to the chat client.
//
// # Description
//
// Wire format, one event per write:
//
//	data: {"content": "<fragment>"}\n\n   - one text fragment
//	data: {"error": "<message>"}\n\n      - in-stream failure
//	data: [DONE]\n\n                      - terminal marker
//
// Every write flushes, so fragments reach the browser as they are produced.
//
// # Thread Safety
//
// Implementations serialize writes; events never interleave.
type StreamWriter interface {
	// WriteContent sends one text fragment.
	WriteContent(fragment string) error
	// WriteError sends an in-stream error event.
	WriteError(message string) error
	// WriteDone sends the terminal [DONE] marker.
	WriteDone() error
}

// sseWriter is the production StreamWriter over an http.ResponseWriter.
type sseWriter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
}

var _ StreamWriter = (*sseWriter)(nil)

// NewSSEWriter wraps a ResponseWriter as a StreamWriter.
//
// # Outputs
//
//   - StreamWriter: The writer.
//   - error: Non-nil if the ResponseWriter does not support flushing,
//     which streaming requires.
func NewSSEWriter(w http.ResponseWriter) (StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	return &sseWriter{writer: w, flusher: flusher}, nil
}

// SetSSEHeaders sets the response headers for an event stream. Call before
// the first write.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

func (s *sseWriter) WriteContent(fragment string) error {
	return s.writeJSON(map[string]string{"content": fragment})
}

func (s *sseWriter) WriteError(message string) error {
	return s.writeJSON(map[string]string{"error": message})
}

func (s *sseWriter) WriteDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprint(s.writer, doneMarker); err != nil {
		return fmt.Errorf("write done marker: %w", err)
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) writeJSON(payload map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE event: %w", err)
	}
	s.flusher.Flush()
	return nil
}
