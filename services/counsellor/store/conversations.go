// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// =============================================================================
// Conversation Operations
// =============================================================================

// ConversationBySessionID returns the transcript for a session.
//
// # Outputs
//
//   - *datatypes.Conversation: The session's conversation.
//   - error: ErrNotFound when the session has no conversation yet.
func (s *Store) ConversationBySessionID(ctx context.Context, sessionID string) (*datatypes.Conversation, error) {
	var conv datatypes.Conversation
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		convID, err := getString(txn, keyPrefixConvSession+sessionID)
		if err != nil {
			return err
		}
		return getJSON(txn, keyPrefixConv+convID, &conv)
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// AppendMessage appends one message to a session's conversation.
//
// # Description
//
//	Loads the session's conversation, creating it when this is the first
//	persisted message, appends the message and updates UpdatedAt. The
//	read-modify-write runs in a single transaction, so two concurrent
//	appends to one session can never drop each other's message.
//
// # Inputs
//
//   - ctx: Request context.
//   - sessionID: The owning session.
//   - leadName: Denormalised lead name, used only when the conversation
//     is created by this call.
//   - role / content: The message to append.
//
// # Outputs
//
//   - *datatypes.Conversation: The conversation after the append.
//   - error: Non-nil if the transaction fails.
func (s *Store) AppendMessage(ctx context.Context, sessionID, leadName string, role datatypes.Role, content string) (*datatypes.Conversation, error) {
	var conv datatypes.Conversation
	now := time.Now().UTC()

	err := s.withTxn(ctx, func(txn *badger.Txn) error {
		convID, err := getString(txn, keyPrefixConvSession+sessionID)
		switch {
		case errors.Is(err, ErrNotFound):
			conv = datatypes.Conversation{
				ID:        datatypes.NewID(datatypes.ConversationIDPrefix),
				SessionID: sessionID,
				LeadName:  leadName,
				CreatedAt: now,
			}
		case err != nil:
			return err
		default:
			if err := getJSON(txn, keyPrefixConv+convID, &conv); err != nil {
				return err
			}
		}

		conv.Messages = append(conv.Messages, datatypes.Message{
			Role:      role,
			Content:   content,
			Timestamp: now,
		})
		conv.UpdatedAt = now

		if err := setJSON(txn, keyPrefixConv+conv.ID, &conv); err != nil {
			return err
		}
		return txn.Set([]byte(keyPrefixConvSession+sessionID), []byte(conv.ID))
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns all conversations, most recently active first.
func (s *Store) ListConversations(ctx context.Context) ([]*datatypes.Conversation, error) {
	var convs []*datatypes.Conversation
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		convs, err = scanJSON[datatypes.Conversation](txn, keyPrefixConv)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// DeleteConversation removes a conversation and its session index.
//
// # Outputs
//
//   - error: ErrNotFound when no conversation has the given identifier.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	return s.withTxn(ctx, func(txn *badger.Txn) error {
		var conv datatypes.Conversation
		if err := getJSON(txn, keyPrefixConv+id, &conv); err != nil {
			return err
		}
		if err := txn.Delete([]byte(keyPrefixConv + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(keyPrefixConvSession + conv.SessionID))
	})
}
