// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package server exposes the ledger over HTTP under the /api prefix.
package server

import "github.com/AleutianAI/budgetd/internal/ledger"

// CreateAccountRequest is the body of POST /api/accounts.
//
// No binding:"required" tags here: presence checks belong to the
// ledger, which reports which parameter is missing.
type CreateAccountRequest struct {
	User        string        `json:"user"`
	Currency    string        `json:"currency"`
	Description string        `json:"description"`
	Balance     ledger.Amount `json:"balance"`
}

// AddTransactionRequest is the body of POST /api/accounts/:user/transactions.
type AddTransactionRequest struct {
	Date   string        `json:"date"`
	Object string        `json:"object"`
	Amount ledger.Amount `json:"amount"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
