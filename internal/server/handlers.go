// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/budgetd/internal/ledger"
)

// ServiceVersion is the budgetd service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the ledger service.
type Handlers struct {
	ledger  *ledger.Ledger
	metrics *Metrics
}

// NewHandlers creates handlers for the given ledger.
func NewHandlers(l *ledger.Ledger, m *Metrics) *Handlers {
	if m == nil {
		m = NewMetrics()
	}
	return &Handlers{ledger: l, metrics: m}
}

// HandleBanner handles GET /api/.
func (h *Handlers) HandleBanner(c *gin.Context) {
	c.String(http.StatusOK, "Budget API: manage accounts and transactions under /api/accounts")
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

// HandleCreateAccount handles POST /api/accounts.
//
// Response:
//
//	201 Created: the new account
//	400 Bad Request: missing user/currency or non-numeric balance
//	409 Conflict: user already exists
func (h *Handlers) HandleCreateAccount(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCreateAccount")

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	acct, err := h.ledger.CreateAccount(req.User, req.Currency, req.Description, req.Balance)
	if err != nil {
		h.metrics.Mutations.WithLabelValues("create_account", "error").Inc()
		h.respondError(c, logger, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("create_account", "ok").Inc()
	logger.Info("account created", "user", acct.User)
	c.JSON(http.StatusCreated, acct)
}

// HandleGetAccount handles GET /api/accounts/:user.
func (h *Handlers) HandleGetAccount(c *gin.Context) {
	acct, err := h.ledger.Account(c.Param("user"))
	if err != nil {
		h.respondError(c, slog.Default(), err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// HandleDeleteAccount handles DELETE /api/accounts/:user.
func (h *Handlers) HandleDeleteAccount(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteAccount")

	user := c.Param("user")
	if err := h.ledger.DeleteAccount(user); err != nil {
		h.metrics.Mutations.WithLabelValues("delete_account", "error").Inc()
		h.respondError(c, logger, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("delete_account", "ok").Inc()
	logger.Info("account deleted", "user", user)
	c.Status(http.StatusNoContent)
}

// HandleAddTransaction handles POST /api/accounts/:user/transactions.
//
// Response:
//
//	201 Created: the recorded transaction
//	400 Bad Request: missing field or non-numeric amount
//	404 Not Found: unknown account
//	409 Conflict: same (date, object, amount) already recorded
func (h *Handlers) HandleAddTransaction(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddTransaction")

	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user := c.Param("user")
	tx, err := h.ledger.AddTransaction(user, req.Date, req.Object, req.Amount)
	if err != nil {
		h.metrics.Mutations.WithLabelValues("add_transaction", "error").Inc()
		h.respondError(c, logger, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("add_transaction", "ok").Inc()
	logger.Info("transaction recorded", "user", user, "transaction_id", tx.ID)
	c.JSON(http.StatusCreated, tx)
}

// HandleDeleteTransaction handles DELETE /api/accounts/:user/transactions/:id.
func (h *Handlers) HandleDeleteTransaction(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteTransaction")

	user := c.Param("user")
	id := c.Param("id")
	if err := h.ledger.DeleteTransaction(user, id); err != nil {
		h.metrics.Mutations.WithLabelValues("delete_transaction", "error").Inc()
		h.respondError(c, logger, err)
		return
	}
	h.metrics.Mutations.WithLabelValues("delete_transaction", "ok").Inc()
	logger.Info("transaction deleted", "user", user, "transaction_id", id)
	c.Status(http.StatusNoContent)
}

// respondError maps ledger errors to HTTP status codes. Anything not a
// known domain error is reported as a server error; persist failures in
// particular mean the mutation may already be applied in memory.
func (h *Handlers) respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrMissingParameter), errors.Is(err, ledger.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrAccountExists), errors.Is(err, ledger.ErrTransactionExists):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, ledger.ErrTransactionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrPersistFailed):
		h.metrics.PersistFailures.Inc()
		logger.Error("ledger save failed, in-memory state is ahead of the file", "error", err)
	}
	if status != http.StatusInternalServerError {
		logger.Warn("request rejected", "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
