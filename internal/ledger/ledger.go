// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ledger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Persister writes the full ledger state to durable storage. Save is
// called synchronously inside the write lock, so implementations never
// see a half-applied mutation and never run concurrently with another
// save.
type Persister interface {
	Save(State) error
}

// Ledger owns the in-memory account map and serializes every mutation:
// validate, mutate, persist, all under one write lock. Reads are served
// from deep-copied snapshots under a read lock.
type Ledger struct {
	mu       sync.RWMutex
	accounts State
	store    Persister
}

// New builds a Ledger over an initial state, typically the store's
// Load result. A nil state starts empty; a nil store disables
// persistence (used by tests).
func New(initial State, store Persister) *Ledger {
	if initial == nil {
		initial = make(State)
	}
	return &Ledger{accounts: initial, store: store}
}

// persist must be called with the write lock held.
func (l *Ledger) persist() error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(l.accounts); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// CreateAccount inserts a new account. The description defaults to
// "<user>'s budget" and the balance to 0 when not supplied.
func (l *Ledger) CreateAccount(user, currency, description string, balance Amount) (*Account, error) {
	if user == "" {
		return nil, fmt.Errorf("%w: user", ErrMissingParameter)
	}
	if currency == "" {
		return nil, fmt.Errorf("%w: currency", ErrMissingParameter)
	}
	openingBalance := decimal.Zero
	if balance.Present() {
		if !balance.Valid() {
			return nil, fmt.Errorf("%w: balance %q", ErrInvalidAmount, balance.Raw())
		}
		openingBalance = balance.Value()
	}
	if description == "" {
		description = fmt.Sprintf("%s's budget", user)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[user]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, user)
	}
	acct := &Account{
		User:         user,
		Currency:     currency,
		Description:  description,
		Balance:      openingBalance,
		Transactions: []Transaction{},
	}
	l.accounts[user] = acct
	if err := l.persist(); err != nil {
		return nil, err
	}
	return acct.clone(), nil
}

// Account returns a snapshot of one account, transactions included.
func (l *Ledger) Account(user string) (*Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[user]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acct.clone(), nil
}

// DeleteAccount removes an account and its whole history.
func (l *Ledger) DeleteAccount(user string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[user]; !ok {
		return ErrAccountNotFound
	}
	delete(l.accounts, user)
	return l.persist()
}

// AddTransaction validates and appends a transaction, adjusting the
// account balance by its amount. The id is derived from the content, so
// re-sending the same (date, object, amount) triple is rejected as a
// duplicate rather than recorded twice.
func (l *Ledger) AddTransaction(user, date, object string, amount Amount) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if date == "" {
		return nil, fmt.Errorf("%w: date", ErrMissingParameter)
	}
	if object == "" {
		return nil, fmt.Errorf("%w: object", ErrMissingParameter)
	}
	if amount.Missing() {
		return nil, fmt.Errorf("%w: amount", ErrMissingParameter)
	}
	if !amount.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount.Raw())
	}

	id := TransactionID(date, object, amount.Raw())
	for _, tx := range acct.Transactions {
		if tx.ID == id {
			return nil, fmt.Errorf("%w: %s", ErrTransactionExists, id)
		}
	}

	tx := Transaction{ID: id, Date: date, Object: object, Amount: amount.Value()}
	acct.Transactions = append(acct.Transactions, tx)
	acct.Balance = acct.Balance.Add(tx.Amount)
	if err := l.persist(); err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteTransaction removes a transaction by id.
//
// The balance is deliberately left untouched: deletes have never
// adjusted it, and existing clients depend on that. After a delete the
// balance no longer equals the transaction sum; see DESIGN.md.
func (l *Ledger) DeleteTransaction(user, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[user]
	if !ok {
		return ErrAccountNotFound
	}
	for i, tx := range acct.Transactions {
		if tx.ID == id {
			acct.Transactions = append(acct.Transactions[:i], acct.Transactions[i+1:]...)
			return l.persist()
		}
	}
	return ErrTransactionNotFound
}

// Snapshot returns a deep copy of the full state, used for the final
// save on shutdown.
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts.Clone()
}
