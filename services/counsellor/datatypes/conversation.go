// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// =============================================================================
// Conversation Entity
// =============================================================================

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message authored by the lead.
	RoleUser Role = "user"
	// RoleAssistant marks a message authored by the counsellor.
	RoleAssistant Role = "assistant"
	// RoleSystem marks the instruction message prepended for the provider.
	// System messages are never persisted in a transcript.
	RoleSystem Role = "system"
)

// Message is a single turn in a conversation transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the full transcript for one session.
//
// # Description
//
// Exactly one Conversation exists per session; it is created lazily on the
// first persisted message and appended to for the session's lifetime.
// Messages are ordered chronologically, oldest first.
//
// LeadName is denormalised from the owning Lead so admin listings do not
// need a join.
type Conversation struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	LeadName  string    `json:"leadName"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
