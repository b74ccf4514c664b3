// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ledger implements the budget ledger domain: accounts keyed by
// user id, each holding a currency label, a running balance, and an
// ordered transaction history. All mutation and validation rules live
// here; HTTP transport and file persistence are injected from outside.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Balances and amounts are serialized as JSON numbers, both in API
	// responses and in the persisted ledger file.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction is a single dated, labeled, signed monetary entry.
// Transactions are immutable once recorded.
type Transaction struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Object string          `json:"object"`
	Amount decimal.Decimal `json:"amount"`
}

// Account is a named ledger with a running balance. Balance is derived:
// after any completed mutation it equals the sum of the recorded
// transaction amounts (see DeleteTransaction for the one documented
// exception).
type Account struct {
	User         string          `json:"user"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

func (a *Account) clone() *Account {
	cp := *a
	cp.Transactions = make([]Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return &cp
}

// State is the full set of accounts, keyed by user id. It is the unit
// of persistence: the store serializes the whole map on every save.
type State map[string]*Account

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for user, acct := range s {
		out[user] = acct.clone()
	}
	return out
}

// TransactionID derives the deterministic transaction id: the hex
// SHA-256 digest of date, object, and the caller's string form of the
// amount, concatenated in that order. Identical (date, object, amount)
// triples collide on purpose; the id doubles as the de-duplication key,
// so the inputs and their order must not change.
func TransactionID(date, object, rawAmount string) string {
	sum := sha256.Sum256([]byte(date + object + rawAmount))
	return hex.EncodeToString(sum[:])
}

// Amount is a monetary value as received from a caller. It keeps the
// exact textual form alongside the parsed value, because the
// transaction id is derived from the pre-coercion text: `20` and
// `"20.0"` are different ids even though they are the same number.
type Amount struct {
	raw     string
	value   decimal.Decimal
	present bool
	quoted  bool
	invalid bool
}

// AmountFromString builds an Amount from a raw string, as if the caller
// had sent it as a JSON string. Used by tests and the seed state.
func AmountFromString(raw string) Amount {
	a := Amount{raw: raw, present: true, quoted: true}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		a.invalid = true
	} else {
		a.value = v
	}
	return a
}

// UnmarshalJSON accepts both JSON numbers and numeric strings. Parse
// failures are recorded, not returned: the domain reports them as
// ErrInvalidAmount so the caller sees a ledger error rather than a
// generic decode error.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{present: true}
	if string(data) == "null" {
		a.present = false
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.raw = s
		a.quoted = true
	} else {
		a.raw = string(data)
	}
	v, err := decimal.NewFromString(strings.TrimSpace(a.raw))
	if err != nil {
		a.invalid = true
		return nil
	}
	a.value = v
	return nil
}

// Present reports whether the caller supplied the field at all.
func (a Amount) Present() bool { return a.present }

// Raw returns the pre-coercion string form, the hash input for
// TransactionID.
func (a Amount) Raw() string { return a.raw }

// Valid reports whether the raw form parsed as a number.
func (a Amount) Valid() bool { return a.present && !a.invalid }

// Value returns the parsed value; zero if absent or invalid.
func (a Amount) Value() decimal.Decimal { return a.value }

// Missing reports whether the amount counts as an absent parameter.
// The rule is a truthiness check: unset fields, empty strings, and the
// number 0 are all "missing", while the string "0" is not. A genuine
// zero-valued transaction is therefore rejected; see DESIGN.md for why
// this quirk is kept.
func (a Amount) Missing() bool {
	if !a.present || a.raw == "" {
		return true
	}
	return !a.quoted && !a.invalid && a.value.IsZero()
}
