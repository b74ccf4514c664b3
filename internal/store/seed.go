// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"github.com/shopspring/decimal"

	"github.com/AleutianAI/budgetd/internal/ledger"
)

// Seed returns the built-in example ledger used when no usable data
// file exists: one "test" account with three transactions and a
// balance of 75. Ids are derived with the regular content hash so the
// seed entries dedupe like any other transaction.
func Seed() ledger.State {
	entries := []struct {
		date   string
		object string
		amount string
	}{
		{"2020-10-05", "Pocket money", "50"},
		{"2020-10-09", "Gift", "40"},
		{"2020-10-12", "Book", "-15"},
	}

	acct := &ledger.Account{
		User:         "test",
		Currency:     "$",
		Description:  "Test account",
		Transactions: []ledger.Transaction{},
	}
	for _, e := range entries {
		tx := ledger.Transaction{
			ID:     ledger.TransactionID(e.date, e.object, e.amount),
			Date:   e.date,
			Object: e.object,
			Amount: decimal.RequireFromString(e.amount),
		}
		acct.Transactions = append(acct.Transactions, tx)
		acct.Balance = acct.Balance.Add(tx.Amount)
	}
	return ledger.State{acct.User: acct}
}
