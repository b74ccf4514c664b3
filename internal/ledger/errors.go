// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ledger

import "errors"

// Sentinel errors for the ledger domain. HTTP handlers map these to
// status codes with errors.Is; everything else is a server error.
var (
	// ErrMissingParameter indicates a required field was absent (or
	// falsy, in the case of amounts).
	ErrMissingParameter = errors.New("missing parameter")

	// ErrInvalidAmount indicates an amount that did not parse as a number.
	ErrInvalidAmount = errors.New("amount is not a valid number")

	// ErrAccountExists indicates the user id is already taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountNotFound indicates no account with that user id.
	ErrAccountNotFound = errors.New("user not found")

	// ErrTransactionExists indicates a transaction with the same
	// (date, object, amount) content is already recorded.
	ErrTransactionExists = errors.New("transaction already exists")

	// ErrTransactionNotFound indicates no transaction with that id on
	// the account.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPersistFailed indicates the mutation was applied in memory but
	// writing the ledger file failed. Callers must treat the state as
	// uncertain; there is no rollback.
	ErrPersistFailed = errors.New("failed to persist ledger")
)
