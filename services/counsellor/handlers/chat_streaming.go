// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the counsellor service's HTTP handlers: the
// streaming RAG chat endpoint, lead onboarding and the admin back office.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
	"github.com/primeedutech/counsellor/services/counsellor/guardrail"
	"github.com/primeedutech/counsellor/services/counsellor/knowledge"
	"github.com/primeedutech/counsellor/services/counsellor/observability"
	"github.com/primeedutech/counsellor/services/counsellor/store"
	"github.com/primeedutech/counsellor/services/llm"
)

// Completion tuning for the counsellor persona.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 2000

	// knowledgeTopK is how many knowledge chunks are retrieved per message.
	knowledgeTopK = 5
)

// Error messages surfaced to the chat client.
const (
	errMissingFields  = "Missing sessionId or message"
	errMessageTooLong = "Message is too long"
	errInvalidSession = "Invalid session. Please complete onboarding first."
	errInternal       = "Internal server error"
)

// =============================================================================
// Dependencies
// =============================================================================

// LeadResolver resolves session identifiers to leads. *store.Store
// satisfies this.
type LeadResolver interface {
	LeadBySessionID(ctx context.Context, sessionID string) (*datatypes.Lead, error)
}

// ConversationLog reads and appends conversation transcripts. *store.Store
// satisfies this.
type ConversationLog interface {
	ConversationBySessionID(ctx context.Context, sessionID string) (*datatypes.Conversation, error)
	AppendMessage(ctx context.Context, sessionID, leadName string, role datatypes.Role, content string) (*datatypes.Conversation, error)
}

// =============================================================================
// Streaming Chat Handler
// =============================================================================

// ChatHandler handles the streaming RAG chat endpoint.
type ChatHandler interface {
	// HandleChat processes POST /v1/chat.
	HandleChat(c *gin.Context)
}

// chatHandler is the production ChatHandler.
type chatHandler struct {
	leads         LeadResolver
	conversations ConversationLog
	searcher      knowledge.Searcher
	llmClient     llm.LLMClient
	policy        guardrail.Policy
	tracer        trace.Tracer
}

var _ ChatHandler = (*chatHandler)(nil)

// NewChatHandler creates the streaming chat handler.
//
// # Description
//
//	Wires the orchestrator's collaborators. Panics on nil dependencies:
//	construction happens once at startup, where a missing dependency is a
//	programming error, not a runtime condition.
func NewChatHandler(
	leads LeadResolver,
	conversations ConversationLog,
	searcher knowledge.Searcher,
	llmClient llm.LLMClient,
	policy guardrail.Policy,
) ChatHandler {
	if leads == nil {
		panic("NewChatHandler: leads must not be nil")
	}
	if conversations == nil {
		panic("NewChatHandler: conversations must not be nil")
	}
	if searcher == nil {
		panic("NewChatHandler: searcher must not be nil")
	}
	if llmClient == nil {
		panic("NewChatHandler: llmClient must not be nil")
	}

	return &chatHandler{
		leads:         leads,
		conversations: conversations,
		searcher:      searcher,
		llmClient:     llmClient,
		policy:        policy,
		tracer:        otel.Tracer("counsellor/handlers"),
	}
}

// HandleChat implements the ChatHandler interface.
//
// # Description
//
//	The full RAG pipeline for one chat message:
//
//	1. Validate the request body.
//	2. Resolve the session to a lead (403 when unresolvable).
//	3. Load prior conversation history (absence is empty history).
//	4. Persist the user message before any provider call, so the
//	   transcript survives provider failure.
//	5. Search the knowledge base, best-effort: a failure logs and
//	   proceeds with empty context, never aborts the request.
//	6. Render the system prompt and stream the completion to the client
//	   as Server-Sent Events, accumulating the full text.
//	7. Classify the completed reply; persist it when on-topic, or the
//	   canned redirect when not.
//	8. Emit the terminal [DONE] marker.
//
//	The provider stream is bound to the request context, so a client
//	disconnect cancels generation; nothing is persisted for a cancelled
//	or failed stream beyond the user's own message.
func (h *chatHandler) HandleChat(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "chat.stream")
	defer span.End()

	metrics := observability.DefaultMetrics
	start := time.Now()

	// Step 1: Validate input.
	var req datatypes.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" || req.Message == "" {
		span.SetStatus(codes.Error, "invalid request")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeValidation)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields})
		return
	}
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeValidation)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errMessageTooLong})
		return
	}
	span.SetAttributes(
		attribute.String("session_id", req.SessionID),
		attribute.Int("message_bytes", len(req.Message)),
	)

	// Step 2: Resolve the session to a lead. Hard boundary: chat is
	// unusable until onboarding has produced a lead.
	lead, err := h.leads.LeadBySessionID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			span.SetStatus(codes.Error, "unknown session")
			if metrics != nil {
				metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeUnauthorized)
			}
			c.JSON(http.StatusForbidden, gin.H{"error": errInvalidSession})
			return
		}
		slog.Error("Failed to resolve session", "session_id", req.SessionID, "error", err)
		span.SetStatus(codes.Error, "lead lookup failed")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeStorage)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	// Step 3: Load prior history. A missing conversation is empty history,
	// not an error.
	var history []llm.Message
	conv, err := h.conversations.ConversationBySessionID(ctx, req.SessionID)
	switch {
	case err == nil:
		history = make([]llm.Message, 0, len(conv.Messages))
		for _, m := range conv.Messages {
			history = append(history, llm.Message{Role: string(m.Role), Content: m.Content})
		}
	case errors.Is(err, store.ErrNotFound):
		// first message of the session
	default:
		slog.Error("Failed to load conversation", "session_id", req.SessionID, "error", err)
		span.SetStatus(codes.Error, "conversation lookup failed")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeStorage)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	// Step 4: Persist the user message before the provider is invoked.
	if _, err := h.conversations.AppendMessage(ctx, req.SessionID, lead.Name, datatypes.RoleUser, req.Message); err != nil {
		slog.Error("Failed to persist user message", "session_id", req.SessionID, "error", err)
		span.SetStatus(codes.Error, "persist user message failed")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeStorage)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	// Step 5: Knowledge base search, best-effort.
	var knowledgeContext []string
	results, err := h.searcher.Search(ctx, req.Message, knowledgeTopK)
	if err != nil {
		slog.Warn("Knowledge base search failed, continuing without context",
			"session_id", req.SessionID, "error", err)
		span.AddEvent("knowledge search failed")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeKnowledgeSearch)
		}
	} else {
		knowledgeContext = knowledge.FormatSnippets(results)
	}
	span.SetAttributes(attribute.Int("knowledge_snippets", len(knowledgeContext)))

	// Step 6: Build the ordered message list: system prompt, prior
	// history, then the new user message.
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: h.policy.RenderSystemPrompt(lead, knowledgeContext),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	// Step 7: Stream the completion.
	SetSSEHeaders(c.Writer)
	sse, err := NewSSEWriter(c.Writer)
	if err != nil {
		slog.Error("Streaming unsupported by response writer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	if metrics != nil {
		metrics.StreamStarted(observability.EndpointChatStream)
		defer metrics.StreamEnded(observability.EndpointChatStream)
	}

	temperature := float32(chatTemperature)
	maxTokens := chatMaxTokens
	params := llm.GenerationParams{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	var fullResponse string
	var firstToken bool
	streamErr := h.llmClient.ChatStream(ctx, messages, params, func(event llm.StreamEvent) error {
		if event.Type != llm.StreamEventToken {
			return nil
		}
		if !firstToken {
			firstToken = true
			if metrics != nil {
				metrics.RecordTimeToFirstToken(observability.EndpointChatStream, time.Since(start).Seconds())
			}
		}
		fullResponse += event.Content
		return sse.WriteContent(event.Content)
	})

	if streamErr != nil {
		h.finishWithStreamError(c, span, sse, req.SessionID, streamErr, start)
		return
	}

	// Step 8: Classify the completed reply and persist the outcome. The
	// streamed text has already reached the browser; only the transcript
	// substitutes the redirect on an off-topic reply.
	persisted := fullResponse
	verdict := h.policy.ClassifyResponse(fullResponse)
	if !verdict.Valid {
		slog.Info("Reply failed guardrail classification, persisting redirect",
			"session_id", req.SessionID, "reason", verdict.Reason)
		span.AddEvent("guardrail redirect")
		if metrics != nil {
			metrics.RecordOffTopicReply()
		}
		persisted = h.policy.RedirectMessage
	}

	if _, err := h.conversations.AppendMessage(ctx, req.SessionID, lead.Name, datatypes.RoleAssistant, persisted); err != nil {
		slog.Error("Failed to persist assistant message", "session_id", req.SessionID, "error", err)
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeStorage)
		}
	}

	if err := sse.WriteDone(); err != nil {
		slog.Debug("Failed to write done marker", "session_id", req.SessionID, "error", err)
	}

	span.SetStatus(codes.Ok, "")
	if metrics != nil {
		metrics.RecordRequest(observability.EndpointChatStream, true)
		metrics.RecordStreamDuration(observability.EndpointChatStream, time.Since(start).Seconds(), true)
	}
}

// finishWithStreamError handles a mid-stream provider failure or client
// disconnect. No assistant message is persisted; the transcript keeps only
// the user's message.
func (h *chatHandler) finishWithStreamError(c *gin.Context, span trace.Span, sse StreamWriter, sessionID string, streamErr error, start time.Time) {
	metrics := observability.DefaultMetrics

	if c.Request.Context().Err() != nil {
		slog.Info("Client disconnected mid-stream", "session_id", sessionID)
		span.SetStatus(codes.Error, "client disconnect")
		if metrics != nil {
			metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeClientDisconnect)
			metrics.RecordRequest(observability.EndpointChatStream, false)
			metrics.RecordStreamDuration(observability.EndpointChatStream, time.Since(start).Seconds(), false)
		}
		return
	}

	slog.Error("Completion stream failed", "session_id", sessionID, "error", streamErr)
	span.SetStatus(codes.Error, "completion stream failed")
	if writeErr := sse.WriteError(streamErr.Error()); writeErr != nil {
		slog.Debug("Failed to write error event", "session_id", sessionID, "error", writeErr)
	}
	if metrics != nil {
		metrics.RecordError(observability.EndpointChatStream, observability.ErrorCodeLLMError)
		metrics.RecordRequest(observability.EndpointChatStream, false)
		metrics.RecordStreamDuration(observability.EndpointChatStream, time.Since(start).Seconds(), false)
	}
}
