// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
	"github.com/primeedutech/counsellor/services/counsellor/store"
)

// =============================================================================
// Lead Handlers
// =============================================================================

// CreateLead handles the public onboarding endpoint.
//
// On success the response carries the freshly minted session identifier,
// which the client must retain to use the chat endpoint.
func CreateLead(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateLeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lead := req.ToLead()
		if err := st.CreateLead(c.Request.Context(), lead); err != nil {
			slog.Error("Failed to create lead", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}

		slog.Info("Lead created", "lead_id", lead.ID)
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"sessionId": lead.SessionID,
			"leadId":    lead.ID,
		})
	}
}

// ListLeads handles the admin lead listing.
func ListLeads(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		leads, err := st.ListLeads(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list leads", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}
		if leads == nil {
			leads = []*datatypes.Lead{}
		}
		c.JSON(http.StatusOK, leads)
	}
}

// DeleteLead handles admin lead deletion by ?id= query parameter.
func DeleteLead(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Lead ID is required"})
			return
		}

		err := st.DeleteLead(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		if err != nil {
			slog.Error("Failed to delete lead", "lead_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}

		slog.Info("Lead deleted", "lead_id", id)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
