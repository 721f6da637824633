// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// =============================================================================
// Lead Operations
// =============================================================================

// CreateLead persists a new lead and its session index in one transaction.
//
// # Description
//
//	Assigns ID, SessionID and CreatedAt when they are unset, then writes
//	the lead record and the session-to-lead index. The session index is
//	what the chat endpoint resolves bearer sessions through.
//
// # Inputs
//
//   - ctx: Request context.
//   - lead: The lead to persist. Mutated in place with assigned fields.
//
// # Outputs
//
//   - error: Non-nil if the transaction fails.
func (s *Store) CreateLead(ctx context.Context, lead *datatypes.Lead) error {
	if lead.ID == "" {
		lead.ID = datatypes.NewID(datatypes.LeadIDPrefix)
	}
	if lead.SessionID == "" {
		lead.SessionID = datatypes.NewID(datatypes.SessionIDPrefix)
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	return s.withTxn(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, keyPrefixLead+lead.ID, lead); err != nil {
			return err
		}
		return txn.Set([]byte(keyPrefixLeadSession+lead.SessionID), []byte(lead.ID))
	})
}

// LeadByID returns the lead with the given identifier, or ErrNotFound.
func (s *Store) LeadByID(ctx context.Context, id string) (*datatypes.Lead, error) {
	var lead datatypes.Lead
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, keyPrefixLead+id, &lead)
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// LeadBySessionID resolves a session identifier to its owning lead.
//
// # Outputs
//
//   - *datatypes.Lead: The lead the session belongs to.
//   - error: ErrNotFound when the session resolves to nothing.
func (s *Store) LeadBySessionID(ctx context.Context, sessionID string) (*datatypes.Lead, error) {
	var lead datatypes.Lead
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		leadID, err := getString(txn, keyPrefixLeadSession+sessionID)
		if err != nil {
			return err
		}
		return getJSON(txn, keyPrefixLead+leadID, &lead)
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns all leads, newest first.
func (s *Store) ListLeads(ctx context.Context) ([]*datatypes.Lead, error) {
	var leads []*datatypes.Lead
	err := s.withReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		leads, err = scanJSON[datatypes.Lead](txn, keyPrefixLead)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
	return leads, nil
}

// DeleteLead removes a lead and its session index.
//
// # Outputs
//
//   - error: ErrNotFound when no lead has the given identifier.
func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return s.withTxn(ctx, func(txn *badger.Txn) error {
		var lead datatypes.Lead
		if err := getJSON(txn, keyPrefixLead+id, &lead); err != nil {
			return err
		}
		if err := txn.Delete([]byte(keyPrefixLead + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(keyPrefixLeadSession + lead.SessionID))
	})
}
