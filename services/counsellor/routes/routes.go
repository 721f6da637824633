// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/primeedutech/counsellor/services/counsellor/handlers"
	"github.com/primeedutech/counsellor/services/counsellor/middleware"
	"github.com/primeedutech/counsellor/services/counsellor/store"
)

// SetupRoutes registers all HTTP routes on the router.
//
// Public surface: onboarding, chat and health. Everything under
// /v1/admin requires the admin bearer token.
func SetupRoutes(
	router *gin.Engine,
	st *store.Store,
	chat handlers.ChatHandler,
	kb *handlers.KnowledgeHandler,
	adminToken string,
) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/leads", handlers.CreateLead(st))
		v1.POST("/chat", chat.HandleChat)

		admin := v1.Group("/admin", middleware.AdminAuth(adminToken))
		{
			admin.GET("/leads", handlers.ListLeads(st))
			admin.DELETE("/leads", handlers.DeleteLead(st))

			admin.GET("/conversations", handlers.ListConversations(st))
			admin.DELETE("/conversations", handlers.DeleteConversation(st))

			admin.GET("/knowledge", kb.List)
			admin.DELETE("/knowledge", kb.Delete)
			admin.POST("/knowledge/text", kb.AddText)
			admin.POST("/knowledge/pdf", kb.AddPDF)
			admin.POST("/knowledge/url", kb.AddURL)
		}
	}
}
