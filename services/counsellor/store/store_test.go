// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testLead() *datatypes.Lead {
	return &datatypes.Lead{
		Countries:      []string{"Canada"},
		FieldOfStudy:   "Computer Science",
		ProgramOfStudy: "Masters",
		Budget:         30000,
		Name:           "Ravi Prakash",
		Phone:          "+91 9999999999",
	}
}

func TestCreateLead_AssignsIdentifiers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lead := testLead()
	require.NoError(t, s.CreateLead(ctx, lead))

	assert.Contains(t, lead.ID, "lead_")
	assert.Contains(t, lead.SessionID, "session_")
	assert.False(t, lead.CreatedAt.IsZero())
}

func TestLeadBySessionID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lead := testLead()
	require.NoError(t, s.CreateLead(ctx, lead))

	got, err := s.LeadBySessionID(ctx, lead.SessionID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, got.ID)
	assert.Equal(t, lead.Name, got.Name)

	_, err = s.LeadBySessionID(ctx, "session_unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteLead_RemovesSessionIndex(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lead := testLead()
	require.NoError(t, s.CreateLead(ctx, lead))
	require.NoError(t, s.DeleteLead(ctx, lead.ID))

	_, err := s.LeadByID(ctx, lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LeadBySessionID(ctx, lead.SessionID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteLead(ctx, lead.ID), ErrNotFound)
}

func TestAppendMessage_CreatesThenAppends(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	conv, err := s.AppendMessage(ctx, "session_1", "Ravi", datatypes.RoleUser, "hello")
	require.NoError(t, err)
	assert.Contains(t, conv.ID, "conv_")
	assert.Equal(t, "Ravi", conv.LeadName)
	require.Len(t, conv.Messages, 1)

	conv, err = s.AppendMessage(ctx, "session_1", "Ravi", datatypes.RoleAssistant, "hi there")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, datatypes.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, datatypes.RoleAssistant, conv.Messages[1].Role)

	got, err := s.ConversationBySessionID(ctx, "session_1")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Len(t, got.Messages, 2)
}

func TestAppendMessage_ConcurrentAppendsLoseNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Badger aborts conflicting transactions; retry until the
			// append lands.
			for {
				_, err := s.AppendMessage(ctx, "session_busy", "Ravi",
					datatypes.RoleUser, fmt.Sprintf("message %d", i))
				if err == nil {
					return
				}
			}
		}(i)
	}
	wg.Wait()

	conv, err := s.ConversationBySessionID(ctx, "session_busy")
	require.NoError(t, err)
	assert.Len(t, conv.Messages, n)
}

func TestConversationBySessionID_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ConversationBySessionID(context.Background(), "session_none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteConversation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	conv, err := s.AppendMessage(ctx, "session_2", "Asha", datatypes.RoleUser, "hello")
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))
	_, err = s.ConversationBySessionID(ctx, "session_2")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteConversation(ctx, conv.ID), ErrNotFound)
}

func TestKnowledgeSourceLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	src := &datatypes.KnowledgeSource{
		Type:    datatypes.SourceTypeText,
		Title:   "Visa checklist",
		Content: "Documents required for a Canadian study permit...",
	}
	require.NoError(t, s.CreateKnowledgeSource(ctx, src))
	assert.Contains(t, src.ID, "kb_")

	require.NoError(t, s.SetVectorIDs(ctx, src.ID, []string{"v1", "v2"}))

	got, err := s.KnowledgeSourceByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, got.VectorIDs)

	list, err := s.ListKnowledgeSources(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := s.DeleteKnowledgeSource(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, deleted.VectorIDs)

	_, err = s.KnowledgeSourceByID(ctx, src.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.DeleteKnowledgeSource(ctx, src.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListLeads_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		lead := testLead()
		lead.Name = fmt.Sprintf("Lead %d", i)
		require.NoError(t, s.CreateLead(ctx, lead))
	}

	leads, err := s.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	for i := 1; i < len(leads); i++ {
		assert.False(t, leads[i].CreatedAt.After(leads[i-1].CreatedAt))
	}
}
