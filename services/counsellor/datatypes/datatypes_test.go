// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLeadRequest() *CreateLeadRequest {
	return &CreateLeadRequest{
		Countries:      []string{"Canada", "Germany"},
		FieldOfStudy:   "Engineering",
		ProgramOfStudy: "Masters",
		Budget:         25000,
		Name:           "Asha Kumari",
		Phone:          "+91 9000000000",
	}
}

func TestCreateLeadRequest_Valid(t *testing.T) {
	req := validLeadRequest()
	assert.NoError(t, req.Validate())
}

func TestCreateLeadRequest_FieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateLeadRequest)
		wantMsg string
	}{
		{
			name:    "missing countries",
			mutate:  func(r *CreateLeadRequest) { r.Countries = nil },
			wantMsg: "Countries are required",
		},
		{
			name:    "empty countries",
			mutate:  func(r *CreateLeadRequest) { r.Countries = []string{} },
			wantMsg: "Countries are required",
		},
		{
			name:    "missing field of study",
			mutate:  func(r *CreateLeadRequest) { r.FieldOfStudy = "" },
			wantMsg: "Field of study and program are required",
		},
		{
			name:    "missing program",
			mutate:  func(r *CreateLeadRequest) { r.ProgramOfStudy = "" },
			wantMsg: "Field of study and program are required",
		},
		{
			name:    "zero budget",
			mutate:  func(r *CreateLeadRequest) { r.Budget = 0 },
			wantMsg: "Valid budget is required",
		},
		{
			name:    "negative budget",
			mutate:  func(r *CreateLeadRequest) { r.Budget = -100 },
			wantMsg: "Valid budget is required",
		},
		{
			name:    "missing name",
			mutate:  func(r *CreateLeadRequest) { r.Name = "" },
			wantMsg: "Name and phone are required",
		},
		{
			name:    "missing phone",
			mutate:  func(r *CreateLeadRequest) { r.Phone = "" },
			wantMsg: "Name and phone are required",
		},
		{
			name:    "bad email",
			mutate:  func(r *CreateLeadRequest) { r.Email = "not-an-email" },
			wantMsg: "Email address is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLeadRequest()
			tt.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestCreateLeadRequest_ToLead(t *testing.T) {
	req := validLeadRequest()
	req.Email = "asha@example.com"
	req.LookingFor = "scholarships"

	lead := req.ToLead()
	assert.Equal(t, req.Countries, lead.Countries)
	assert.Equal(t, req.Name, lead.Name)
	assert.Equal(t, req.Email, lead.Email)
	assert.Equal(t, req.LookingFor, lead.LookingFor)
	assert.Empty(t, lead.ID, "store assigns the identifier")
	assert.Empty(t, lead.SessionID, "store assigns the session")
}

func TestChatRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := &ChatRequest{SessionID: "session_abc", Message: "Tell me about visas"}
		assert.NoError(t, req.Validate())
	})

	t.Run("missing session", func(t *testing.T) {
		req := &ChatRequest{Message: "hello"}
		assert.Error(t, req.Validate())
	})

	t.Run("missing message", func(t *testing.T) {
		req := &ChatRequest{SessionID: "session_abc"}
		assert.Error(t, req.Validate())
	})

	t.Run("oversized message", func(t *testing.T) {
		req := &ChatRequest{
			SessionID: "session_abc",
			Message:   strings.Repeat("a", MaxChatMessageBytes+1),
		}
		assert.Error(t, req.Validate())
	})

	t.Run("message at limit", func(t *testing.T) {
		req := &ChatRequest{
			SessionID: "session_abc",
			Message:   strings.Repeat("a", MaxChatMessageBytes),
		}
		assert.NoError(t, req.Validate())
	})
}

func TestNewID(t *testing.T) {
	id := NewID(LeadIDPrefix)
	assert.True(t, strings.HasPrefix(id, "lead_"))
	assert.NotEqual(t, id, NewID(LeadIDPrefix))
}
