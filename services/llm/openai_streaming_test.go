// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStreamServer returns an httptest server that speaks the OpenAI
// streaming wire format, emitting the given fragments.
func newStreamServer(t *testing.T, fragments []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, frag := range fragments {
			fmt.Fprintf(w,
				"data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", frag)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
}

func newTestClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: baseURL,
	})
	require.NoError(t, err)
	return client
}

func TestChatStream_DeliversFragmentsInOrder(t *testing.T) {
	server := newStreamServer(t, []string{"Hello", ", ", "world"})
	defer server.Close()

	client := newTestClient(t, server.URL)

	var got []string
	var doneCount int
	err := client.ChatStream(context.Background(),
		[]Message{{Role: RoleUser, Content: "hi"}},
		GenerationParams{},
		func(event StreamEvent) error {
			switch event.Type {
			case StreamEventToken:
				got = append(got, event.Content)
			case StreamEventDone:
				doneCount++
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", ", ", "world"}, got)
	assert.Equal(t, 1, doneCount, "done must fire exactly once")
}

func TestChatStream_CallbackErrorAbortsStream(t *testing.T) {
	server := newStreamServer(t, []string{"a", "b", "c"})
	defer server.Close()

	client := newTestClient(t, server.URL)

	wantErr := fmt.Errorf("client went away")
	var seen int
	err := client.ChatStream(context.Background(),
		[]Message{{Role: RoleUser, Content: "hi"}},
		GenerationParams{},
		func(event StreamEvent) error {
			seen++
			return wantErr
		})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, seen)
}

func TestChatStream_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"one\"}}]}\n\n")
		flusher.Flush()
		<-blocked // hold the stream open until the test ends
	}))
	defer server.Close()
	defer close(blocked)

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())

	err := client.ChatStream(ctx,
		[]Message{{Role: RoleUser, Content: "hi"}},
		GenerationParams{},
		func(event StreamEvent) error {
			cancel() // disconnect after the first fragment
			return nil
		})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestChat_NonStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Canada is a great choice."}}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	got, err := client.Chat(context.Background(),
		[]Message{{Role: RoleUser, Content: "Where should I study?"}},
		GenerationParams{})

	require.NoError(t, err)
	assert.Equal(t, "Canada is a great choice.", got)
}

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)
}
