// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists the ledger as a single pretty-printed JSON
// document mapping user id to account. The whole file is rewritten on
// every save; there is no schema versioning and no partial write.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AleutianAI/budgetd/internal/ledger"
)

// FileStore reads and writes the ledger file. It implements
// ledger.Persister. Callers are responsible for serializing Save calls;
// the Ledger does so by saving inside its write lock.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the ledger file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the ledger file. A missing file is the normal first-run
// case and a corrupt file must not take the service down, so both fall
// back to the built-in seed state; parse failures are logged.
func (s *FileStore) Load() ledger.State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("could not read ledger file, starting from seed", "path", s.path, "error", err)
		} else {
			slog.Info("no ledger file yet, starting from seed", "path", s.path)
		}
		return Seed()
	}
	var state ledger.State
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Error("ledger file is not valid JSON, starting from seed", "path", s.path, "error", err)
		return Seed()
	}
	if state == nil {
		state = make(ledger.State)
	}
	return state
}

// Save overwrites the ledger file with the full state. The write goes
// through a temp file and rename so a crash mid-write leaves the
// previous file intact.
func (s *FileStore) Save(state ledger.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0640); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
