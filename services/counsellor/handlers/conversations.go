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
// Conversation Handlers
// =============================================================================

// ListConversations handles the admin transcript listing.
func ListConversations(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convs, err := st.ListConversations(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list conversations", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}
		if convs == nil {
			convs = []*datatypes.Conversation{}
		}
		c.JSON(http.StatusOK, convs)
	}
}

// DeleteConversation handles admin transcript deletion by ?id= query
// parameter.
func DeleteConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Conversation ID is required"})
			return
		}

		err := st.DeleteConversation(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		if err != nil {
			slog.Error("Failed to delete conversation", "conversation_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			return
		}

		slog.Info("Conversation deleted", "conversation_id", id)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
