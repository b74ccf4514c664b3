// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the service. Each
// Metrics owns its registry so tests can build handlers freely without
// duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	// Mutations counts ledger mutations by operation and outcome.
	Mutations *prometheus.CounterVec

	// PersistFailures counts saves of the ledger file that failed.
	PersistFailures prometheus.Counter
}

// NewMetrics creates the instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetd_ledger_mutations_total",
			Help: "Ledger mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgetd_persist_failures_total",
			Help: "Ledger file saves that returned an error.",
		}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
