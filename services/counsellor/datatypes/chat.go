// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Chat Request
// =============================================================================

// MaxChatMessageBytes bounds a single user message. Messages beyond this are
// rejected before any provider call is made.
const MaxChatMessageBytes = 32 * 1024

// chatValidate is the validator instance for chat datatypes.
var chatValidate = validator.New()

func init() {
	// maxbytes limits a string field by byte length rather than rune count.
	err := chatValidate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxChatMessageBytes
	})
	if err != nil {
		panic(fmt.Sprintf("datatypes: failed to register maxbytes validation: %v", err))
	}
}

// ChatRequest is the payload for the streaming chat endpoint.
//
// # Fields
//
//   - SessionID: Capability token minted at onboarding. Required.
//   - Message: The user's message. Required, at most MaxChatMessageBytes.
type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required,maxbytes"`
}

// Validate validates the request against its declared constraints.
func (r *ChatRequest) Validate() error {
	if err := chatValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid chat request: %w", err)
	}
	return nil
}
