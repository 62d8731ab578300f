// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gate decides whether a generated document may leave the pipeline.
//
// The gate runs citation verification over the full document and applies the
// requested policy: strict mode rejects on any blocking citation issue,
// lenient mode removes the offending citations and records warnings. The
// decision logic lives in Check, which never fails; Enforce layers the
// strict-mode error contract on top for callers that drive regeneration.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/services/verifier/correct"
	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/observability"
	"github.com/veritaslaw/citegate/services/verifier/online"
	"github.com/veritaslaw/citegate/services/verifier/patterns"
)

var tracer = otel.Tracer("citegate.verifier.gate")

// =============================================================================
// Status and Result
// =============================================================================

// Status is the gate's decision for one document.
type Status string

const (
	// StatusAccepted means every citation verified cleanly.
	StatusAccepted Status = "accepted"

	// StatusAcceptedWithWarnings means the document passes but carries
	// issues: removed citations in lenient mode, offline triage findings, or
	// citations accepted only because the search index was unreachable.
	StatusAcceptedWithWarnings Status = "accepted_with_warnings"

	// StatusRejected means strict mode found at least one blocking citation.
	StatusRejected Status = "rejected"
)

// Result is the gate's full decision.
//
// Text carries the document as it should leave the pipeline: unchanged when
// accepted, cleaned when lenient mode removed citations, empty when rejected.
// Outcome.Issues lists every warning in the order produced.
type Result struct {
	Status  Status
	Mode    string
	Text    string
	Outcome *datatypes.VerificationOutcome
}

// Accepted reports whether the document may be released.
func (r *Result) Accepted() bool {
	return r.Status != StatusRejected
}

// =============================================================================
// Strict Rejection
// =============================================================================

// StrictRejectionError reports why strict mode rejected a document, with the
// blocking citations bucketed by failure class so the caller can build a
// targeted regeneration instruction.
type StrictRejectionError struct {
	// FormatErrors are citations that failed offline format checks.
	FormatErrors []string

	// ExistenceErrors are well-formed citations absent from the index.
	ExistenceErrors []string

	// VerificationErrors are citations with inconclusive index evidence.
	VerificationErrors []string
}

func (e *StrictRejectionError) Error() string {
	total := len(e.FormatErrors) + len(e.ExistenceErrors) + len(e.VerificationErrors)
	var b strings.Builder
	fmt.Fprintf(&b, "document rejected: %d blocking citation issue(s)", total)
	writeBucket(&b, "invalid format", e.FormatErrors)
	writeBucket(&b, "not found in index", e.ExistenceErrors)
	writeBucket(&b, "inconclusive", e.VerificationErrors)
	return b.String()
}

func writeBucket(b *strings.Builder, label string, entries []string) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "; %s: %s", label, strings.Join(entries, ", "))
}

// IsStrictRejection reports whether err is a strict-mode gate rejection.
func IsStrictRejection(err error) bool {
	var rej *StrictRejectionError
	return errors.As(err, &rej)
}

// =============================================================================
// Gate
// =============================================================================

// DocumentVerifier is the verification collaborator the gate drives. The
// online verifier satisfies it.
type DocumentVerifier interface {
	VerifyAll(ctx context.Context, text string) *datatypes.VerificationOutcome
}

// Config configures a Gate.
type Config struct {
	// Verifier checks citation existence. Required.
	Verifier DocumentVerifier

	// Validator produces document-level triage findings (suspicious party
	// names, hallucination phrasings, parallel citation mismatches) that are
	// reported as warnings but never block on their own. Optional.
	Validator *patterns.Validator

	// Corrector removes blocking citations in lenient mode.
	// Default: correct.NewCorrector().
	Corrector *correct.Corrector

	// Metrics records gate decisions. Optional.
	Metrics *observability.VerifierMetrics

	// Audit receives one event per gated document, fire-and-forget.
	// Default: extensions.NopAuditLogger.
	Audit extensions.AuditLogger
}

// Gate applies the strict or lenient citation policy to documents.
//
// # Thread Safety
//
// Safe for concurrent use; all fields are read-only after construction.
type Gate struct {
	verifier  DocumentVerifier
	validator *patterns.Validator
	corrector *correct.Corrector
	metrics   *observability.VerifierMetrics
	audit     extensions.AuditLogger
}

// NewGate builds a Gate, applying defaults for unset options.
func NewGate(cfg Config) (*Gate, error) {
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("gate requires a verifier")
	}
	if cfg.Corrector == nil {
		cfg.Corrector = correct.NewCorrector()
	}
	if cfg.Audit == nil {
		cfg.Audit = &extensions.NopAuditLogger{}
	}
	return &Gate{
		verifier:  cfg.Verifier,
		validator: cfg.Validator,
		corrector: cfg.Corrector,
		metrics:   cfg.Metrics,
		audit:     cfg.Audit,
	}, nil
}

// Check gates one document and returns the decision. It never fails.
//
// # Description
//
// Performs the following operations:
//  1. Verifies every citation in the text.
//  2. Splits unverified citations into blocking failures and the
//     non-blocking network-unavailable warnings.
//  3. Collects document-level triage findings as warnings.
//  4. Applies the mode: strict rejects on any blocking citation; lenient
//     removes each blocking citation from the text and records what was
//     removed.
//
// Mode must be datatypes.ModeStrict or datatypes.ModeLenient; anything else
// is treated as lenient, matching the request default.
func (g *Gate) Check(ctx context.Context, text, mode string) *Result {
	ctx, span := tracer.Start(ctx, "gate.Check")
	defer span.End()
	span.SetAttributes(attribute.String("gate.mode", mode))

	outcome := g.verifier.VerifyAll(ctx, text)

	var blocking []datatypes.UnverifiedCitation
	for _, u := range outcome.Unverified {
		if online.IsNetworkUnavailable(u.Reason) {
			outcome.Issues = append(outcome.Issues, u.String())
			continue
		}
		blocking = append(blocking, u)
	}

	if g.validator != nil {
		outcome.Issues = append(outcome.Issues, patterns.Issues(g.validator.Validate(text))...)
	}

	res := &Result{Mode: mode, Text: text, Outcome: outcome}
	switch {
	case len(blocking) == 0 && len(outcome.Issues) == 0:
		res.Status = StatusAccepted
	case len(blocking) == 0:
		res.Status = StatusAcceptedWithWarnings
	case mode == datatypes.ModeStrict:
		res.Status = StatusRejected
		res.Text = ""
		for _, u := range blocking {
			outcome.Issues = append(outcome.Issues, u.String())
		}
	default:
		res.Status = StatusAcceptedWithWarnings
		res.Text = g.removeBlocking(text, blocking, outcome)
	}

	span.SetAttributes(
		attribute.String("gate.status", string(res.Status)),
		attribute.Int("gate.blocking", len(blocking)),
	)
	if g.metrics != nil {
		g.metrics.RecordGateDecision(mode, string(res.Status))
	}
	g.auditDecision(ctx, res, len(blocking))
	return res
}

// Enforce gates one document and converts a strict rejection into a
// StrictRejectionError so the pipeline can decide whether to regenerate.
// Lenient mode never returns an error.
func (g *Gate) Enforce(ctx context.Context, text, mode string) (*Result, error) {
	res := g.Check(ctx, text, mode)
	if res.Status != StatusRejected {
		return res, nil
	}

	rej := &StrictRejectionError{}
	for _, u := range res.Outcome.Unverified {
		switch {
		case online.IsNetworkUnavailable(u.Reason):
			// Non-blocking; already reported as a warning.
		case online.IsInvalidFormat(u.Reason):
			rej.FormatErrors = append(rej.FormatErrors, u.String())
		case online.IsAmbiguous(u.Reason):
			rej.VerificationErrors = append(rej.VerificationErrors, u.String())
		default:
			rej.ExistenceErrors = append(rej.ExistenceErrors, u.String())
		}
	}
	return res, rej
}

// removeBlocking removes each blocking citation from the text and records a
// removal line per citation that actually changed the document.
func (g *Gate) removeBlocking(text string, blocking []datatypes.UnverifiedCitation, outcome *datatypes.VerificationOutcome) string {
	raw := make([]string, len(blocking))
	byRaw := make(map[string]datatypes.UnverifiedCitation, len(blocking))
	for i, u := range blocking {
		raw[i] = u.Citation.RawText
		byRaw[u.Citation.RawText] = u
	}

	cleaned, removed := g.corrector.RemoveAll(text, raw)
	issues := make([]string, 0, len(blocking))
	for _, r := range removed {
		issues = append(issues, fmt.Sprintf("removed unverifiable citation %q (%s)",
			r, byRaw[r].Reason))
	}
	// A citation the corrector could not locate still fails verification;
	// report it even though the text is unchanged.
	for _, u := range blocking {
		found := false
		for _, r := range removed {
			if r == u.Citation.RawText {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, u.String())
		}
	}
	outcome.Issues = append(issues, outcome.Issues...)
	return cleaned
}

// auditDecision emits one fire-and-forget audit event; a failed write is
// logged and otherwise ignored.
func (g *Gate) auditDecision(ctx context.Context, res *Result, blocking int) {
	err := g.audit.Log(ctx, extensions.AuditEvent{
		EventType:    "document.gate",
		Timestamp:    time.Now().UTC(),
		RequestID:    online.RequestIDFromContext(ctx),
		Action:       "gate",
		ResourceType: "document",
		Outcome:      string(res.Status),
		Metadata: map[string]any{
			"mode":       res.Mode,
			"blocking":   blocking,
			"verified":   len(res.Outcome.Verified),
			"unverified": len(res.Outcome.Unverified),
		},
	})
	if err != nil {
		slog.Warn("Audit write failed", "event", "document.gate", "error", err)
	}
}
