// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"

	"github.com/google/uuid"
)

// Entity identifier prefixes. Every persisted identifier is a prefix plus a
// random UUID, so an identifier's kind is recognisable on sight in logs.
const (
	LeadIDPrefix         = "lead"
	SessionIDPrefix      = "session"
	ConversationIDPrefix = "conv"
	KnowledgeIDPrefix    = "kb"
)

// NewID returns a fresh identifier of the form "<prefix>_<uuid>".
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String())
}
