// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainResponseWriter hides httptest.ResponseRecorder's Flusher.
type plainResponseWriter struct {
	http.ResponseWriter
}

func TestNewSSEWriter_RequiresFlusher(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := NewSSEWriter(&plainResponseWriter{ResponseWriter: w})
	assert.Error(t, err)

	sse, err := NewSSEWriter(w)
	require.NoError(t, err)
	assert.NotNil(t, sse)
}

func TestSetSSEHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SetSSEHeaders(w)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", w.Header().Get("Connection"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}

func TestSSEWriter_WireFormat(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, sse.WriteContent("Hello"))
	require.NoError(t, sse.WriteContent("with \"quotes\" and\nnewline"))
	require.NoError(t, sse.WriteError("provider unavailable"))
	require.NoError(t, sse.WriteDone())

	expected := "data: {\"content\":\"Hello\"}\n\n" +
		"data: {\"content\":\"with \\\"quotes\\\" and\\nnewline\"}\n\n" +
		"data: {\"error\":\"provider unavailable\"}\n\n" +
		"data: [DONE]\n\n"
	assert.Equal(t, expected, w.Body.String())
	assert.True(t, w.Flushed, "every event must be flushed")
}
