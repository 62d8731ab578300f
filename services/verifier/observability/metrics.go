// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics and instrumentation for the
// verification engine.
//
// # Description
//
// This package implements Prometheus metrics for monitoring citation
// verification. Metrics include:
//   - Verification counters (by outcome)
//   - Cache hit/miss counters
//   - Search latency histograms
//   - Gate decision counters (by mode and status)
//   - Regeneration counters
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "citegate"

// Subsystem for verification metrics
const verifierSubsystem = "verifier"

// VerifierMetrics holds all Prometheus metrics for citation verification.
//
// # Description
//
// Provides counters and histograms for monitoring verification throughput,
// cache effectiveness and gate behavior. Initialize once at startup via
// InitMetrics().
//
// # Fields
//
//   - VerificationsTotal: Counter of per-citation verifications by outcome
//   - CacheLookupsTotal: Counter of cache lookups by result (hit, miss)
//   - SearchDurationSeconds: Histogram of search collaborator call latency
//   - SearchErrorsTotal: Counter of failed search calls
//   - GateDecisionsTotal: Counter of gate outcomes by mode and status
//   - RegenerationsTotal: Counter of strict-mode regeneration attempts
//   - DocumentCitations: Histogram of citations extracted per document
//
// # Thread Safety
//
// All operations are thread-safe.
type VerifierMetrics struct {
	// VerificationsTotal counts individual citation verifications.
	// Labels: outcome (verified, international, invalid_format, not_found,
	// ambiguous, network_unavailable)
	VerificationsTotal *prometheus.CounterVec

	// CacheLookupsTotal counts verification cache lookups.
	// Labels: result (hit, miss)
	CacheLookupsTotal *prometheus.CounterVec

	// SearchDurationSeconds measures search collaborator call latency.
	SearchDurationSeconds prometheus.Histogram

	// SearchErrorsTotal counts search collaborator failures.
	SearchErrorsTotal prometheus.Counter

	// GateDecisionsTotal counts gate outcomes.
	// Labels: mode (strict, lenient), status (accepted,
	// accepted_with_warnings, rejected)
	GateDecisionsTotal *prometheus.CounterVec

	// RegenerationsTotal counts strict-mode regeneration attempts made by
	// the document pipeline.
	RegenerationsTotal prometheus.Counter

	// DocumentCitations measures how many citations each document yielded.
	DocumentCitations prometheus.Histogram
}

// DefaultMetrics is the singleton instance of VerifierMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *VerifierMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once at
// application startup, after the Prometheus registry is available.
//
// # Outputs
//
//   - *VerifierMetrics: The initialized metrics instance.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *VerifierMetrics {
	DefaultMetrics = &VerifierMetrics{
		VerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "verifications_total",
				Help:      "Total citation verifications by outcome",
			},
			[]string{"outcome"},
		),

		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "cache_lookups_total",
				Help:      "Total verification cache lookups by result",
			},
			[]string{"result"},
		),

		SearchDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "search_duration_seconds",
				Help:      "Search collaborator call latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		SearchErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "search_errors_total",
				Help:      "Total failed search collaborator calls",
			},
		),

		GateDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "gate_decisions_total",
				Help:      "Total gate decisions by mode and status",
			},
			[]string{"mode", "status"},
		),

		RegenerationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "regenerations_total",
				Help:      "Total strict-mode document regeneration attempts",
			},
		),

		DocumentCitations: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: verifierSubsystem,
				Name:      "document_citations",
				Help:      "Citations extracted per document",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Outcome Names
// =============================================================================

// Outcome labels a single citation verification result for metrics.
type Outcome string

const (
	// OutcomeVerified indicates the citation was confirmed in the index.
	OutcomeVerified Outcome = "verified"

	// OutcomeInternational indicates a recognized non-domestic citation.
	OutcomeInternational Outcome = "international"

	// OutcomeInvalidFormat indicates the citation failed offline checks.
	OutcomeInvalidFormat Outcome = "invalid_format"

	// OutcomeNotFound indicates a clean not-found from the search index.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeAmbiguous indicates an inconclusive online check.
	OutcomeAmbiguous Outcome = "ambiguous"

	// OutcomeNetworkUnavailable indicates the search collaborator was
	// unreachable and the citation was accepted with a warning.
	OutcomeNetworkUnavailable Outcome = "network_unavailable"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordVerification records one completed citation verification.
//
// # Inputs
//
//   - outcome: The classification outcome for the citation.
func (m *VerifierMetrics) RecordVerification(outcome Outcome) {
	m.VerificationsTotal.WithLabelValues(string(outcome)).Inc()
}

// RecordCacheLookup records one cache lookup.
//
// # Inputs
//
//   - hit: Whether the lookup found a cached record.
func (m *VerifierMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordSearch records one search collaborator call.
//
// # Inputs
//
//   - seconds: Call duration in seconds.
//   - err: The call error, nil on success.
func (m *VerifierMetrics) RecordSearch(seconds float64, err error) {
	m.SearchDurationSeconds.Observe(seconds)
	if err != nil {
		m.SearchErrorsTotal.Inc()
	}
}

// RecordGateDecision records one gate outcome.
//
// # Inputs
//
//   - mode: "strict" or "lenient".
//   - status: The gate status string.
func (m *VerifierMetrics) RecordGateDecision(mode, status string) {
	m.GateDecisionsTotal.WithLabelValues(mode, status).Inc()
}

// RecordRegeneration records one strict-mode regeneration attempt.
func (m *VerifierMetrics) RecordRegeneration() {
	m.RegenerationsTotal.Inc()
}

// RecordDocumentCitations records the citation count for one document.
//
// # Inputs
//
//   - count: Number of citations the extractor found.
func (m *VerifierMetrics) RecordDocumentCitations(count int) {
	m.DocumentCitations.Observe(float64(count))
}
