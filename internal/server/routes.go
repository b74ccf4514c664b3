// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all budgetd routes with the router.
//
// API endpoints:
//
//	GET    /api/                                      - Text banner
//	POST   /api/accounts                              - Create an account
//	GET    /api/accounts/:user                        - Get an account with its transactions
//	DELETE /api/accounts/:user                        - Delete an account
//	POST   /api/accounts/:user/transactions           - Record a transaction
//	DELETE /api/accounts/:user/transactions/:id       - Delete a transaction
//
// Operational endpoints:
//
//	GET /health  - Health check
//	GET /metrics - Prometheus metrics
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.HandleHealth)
	router.GET("/metrics", gin.WrapH(handlers.metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/", handlers.HandleBanner)
		api.POST("/accounts", handlers.HandleCreateAccount)

		accounts := api.Group("/accounts/:user")
		{
			accounts.GET("", handlers.HandleGetAccount)
			accounts.DELETE("", handlers.HandleDeleteAccount)
			accounts.POST("/transactions", handlers.HandleAddTransaction)
			accounts.DELETE("/transactions/:id", handlers.HandleDeleteTransaction)
		}
	}
}
