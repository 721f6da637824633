// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm abstracts completion providers behind a small streaming
// interface so handlers never depend on a concrete SDK.
package llm

import "context"

// Message is one turn in a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles understood by completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerationParams tunes a completion request. Nil fields use the
// provider's defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// StreamEventType identifies the kind of a streaming event.
type StreamEventType string

const (
	// StreamEventToken carries one text fragment.
	StreamEventToken StreamEventType = "token"
	// StreamEventDone marks the end of a successful stream.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent is one event emitted during a streaming completion.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Content string          `json:"content,omitempty"`
}

// StreamCallback receives stream events in provider order. Returning a
// non-nil error aborts the stream; ChatStream returns that error.
type StreamCallback func(event StreamEvent) error

// LLMClient is the standard interface for any completion backend.
//
// ChatStream delivers fragments in the exact order the provider produced
// them and emits a final StreamEventDone event exactly once on success.
// When the context is cancelled or the provider fails, ChatStream returns
// a non-nil error and the done event is never emitted. Cancelling ctx
// tears the provider stream down.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
	Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error)
	ChatStream(ctx context.Context, messages []Message, params GenerationParams, callback StreamCallback) error
}
