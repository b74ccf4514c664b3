// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/budgetd/internal/ledger"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(l *ledger.Ledger) *gin.Engine {
	router := gin.New()
	RegisterRoutes(router, NewHandlers(l, NewMetrics()))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHandleBanner(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	w := doJSON(t, router, "GET", "/api/", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Budget API") {
		t.Errorf("unexpected banner: %q", w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	w := doJSON(t, router, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}
}

func TestHandleCreateAccount(t *testing.T) {
	t.Run("creates with defaults", func(t *testing.T) {
		router := setupTestRouter(ledger.New(nil, nil))
		w := doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["user"] != "alice" {
			t.Errorf("expected user alice, got %v", body["user"])
		}
		if body["description"] != "alice's budget" {
			t.Errorf("expected defaulted description, got %v", body["description"])
		}
		if body["balance"] != float64(0) {
			t.Errorf("expected balance 0, got %v", body["balance"])
		}
		txs, ok := body["transactions"].([]any)
		if !ok || len(txs) != 0 {
			t.Errorf("expected empty transactions array, got %v", body["transactions"])
		}
	})

	t.Run("validation and conflicts", func(t *testing.T) {
		router := setupTestRouter(ledger.New(nil, nil))
		if w := doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`); w.Code != http.StatusCreated {
			t.Fatalf("setup create failed: %d", w.Code)
		}

		tests := []struct {
			name       string
			body       string
			wantStatus int
		}{
			{"missing user", `{"currency":"$"}`, http.StatusBadRequest},
			{"missing currency", `{"user":"bob"}`, http.StatusBadRequest},
			{"non-numeric balance", `{"user":"bob","currency":"$","balance":"lots"}`, http.StatusBadRequest},
			{"duplicate user", `{"user":"alice","currency":"€"}`, http.StatusConflict},
			{"malformed json", `{bad json}`, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := doJSON(t, router, "POST", "/api/accounts", tt.body)
				if w.Code != tt.wantStatus {
					t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
				}
				if msg, ok := decodeBody(t, w)["error"].(string); !ok || msg == "" {
					t.Errorf("expected error body, got %s", w.Body.String())
				}
			})
		}
	})

	t.Run("string balance is coerced", func(t *testing.T) {
		router := setupTestRouter(ledger.New(nil, nil))
		w := doJSON(t, router, "POST", "/api/accounts", `{"user":"bob","currency":"$","balance":"42.5"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
		}
		if got := decodeBody(t, w)["balance"]; got != 42.5 {
			t.Errorf("expected balance 42.5, got %v", got)
		}
	})
}

func TestHandleGetAccount(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)
	doJSON(t, router, "POST", "/api/accounts/alice/transactions",
		`{"date":"2021-01-01","object":"Gift","amount":20}`)

	w := doJSON(t, router, "GET", "/api/accounts/alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	body := decodeBody(t, w)
	if body["balance"] != float64(20) {
		t.Errorf("expected balance 20, got %v", body["balance"])
	}
	txs, _ := body["transactions"].([]any)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %v", body["transactions"])
	}

	w = doJSON(t, router, "GET", "/api/accounts/ghost", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandleDeleteAccount(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)

	w := doJSON(t, router, "DELETE", "/api/accounts/alice", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if w := doJSON(t, router, "GET", "/api/accounts/alice", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, w.Code)
	}
	if w := doJSON(t, router, "DELETE", "/api/accounts/alice", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected status %d for unknown user, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHandleAddTransaction(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "records a credit",
			path:       "/api/accounts/alice/transactions",
			body:       `{"date":"2021-01-01","object":"Gift","amount":20}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "identical content conflicts",
			path:       "/api/accounts/alice/transactions",
			body:       `{"date":"2021-01-01","object":"Gift","amount":20}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown account",
			path:       "/api/accounts/ghost/transactions",
			body:       `{"date":"2021-01-01","object":"Gift","amount":20}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing date",
			path:       "/api/accounts/alice/transactions",
			body:       `{"object":"Gift","amount":20}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing object",
			path:       "/api/accounts/alice/transactions",
			body:       `{"date":"2021-01-01","amount":20}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero amount treated as missing",
			path:       "/api/accounts/alice/transactions",
			body:       `{"date":"2021-01-02","object":"Nothing","amount":0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non-numeric amount",
			path:       "/api/accounts/alice/transactions",
			body:       `{"date":"2021-01-02","object":"Gift","amount":"twenty"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "string amount is coerced",
			path:       "/api/accounts/alice/transactions",
			body:       `{"date":"2021-01-03","object":"Refund","amount":"-4.5"}`,
			wantStatus: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				body := decodeBody(t, w)
				if id, _ := body["id"].(string); len(id) != 64 {
					t.Errorf("expected 64-char id, got %v", body["id"])
				}
			}
		})
	}

	// 20 - 4.5 from the successful adds above.
	w := doJSON(t, router, "GET", "/api/accounts/alice", "")
	if got := decodeBody(t, w)["balance"]; got != 15.5 {
		t.Errorf("expected balance 15.5, got %v", got)
	}
}

func TestHandleDeleteTransaction(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)
	w := doJSON(t, router, "POST", "/api/accounts/alice/transactions",
		`{"date":"2021-01-01","object":"Gift","amount":20}`)
	id, _ := decodeBody(t, w)["id"].(string)
	if id == "" {
		t.Fatal("setup add failed")
	}

	if w := doJSON(t, router, "DELETE", "/api/accounts/alice/transactions/bogus", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected status %d for unknown id, got %d", http.StatusNotFound, w.Code)
	}
	if w := doJSON(t, router, "DELETE", "/api/accounts/ghost/transactions/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected status %d for unknown user, got %d", http.StatusNotFound, w.Code)
	}

	w = doJSON(t, router, "DELETE", "/api/accounts/alice/transactions/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}

	// The entry is gone; the balance intentionally keeps its value.
	w = doJSON(t, router, "GET", "/api/accounts/alice", "")
	body := decodeBody(t, w)
	if txs, _ := body["transactions"].([]any); len(txs) != 0 {
		t.Errorf("expected no transactions, got %v", body["transactions"])
	}
	if body["balance"] != float64(20) {
		t.Errorf("expected balance to stay 20, got %v", body["balance"])
	}
}

type failingStore struct{}

func (failingStore) Save(ledger.State) error { return errors.New("disk full") }

func TestPersistFailureIsServerError(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, failingStore{}))
	w := doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if msg, _ := decodeBody(t, w)["error"].(string); msg == "" {
		t.Errorf("expected error body, got %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(ledger.New(nil, nil))
	doJSON(t, router, "POST", "/api/accounts", `{"user":"alice","currency":"$"}`)

	w := doJSON(t, router, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "budgetd_ledger_mutations_total") {
		t.Error("expected mutation counter in metrics output")
	}
}
