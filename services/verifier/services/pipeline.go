// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package services provides the business logic behind the verifier HTTP
// surface, separating it from gin handlers. The DocumentService owns the
// generate-gate-regenerate flow and the standalone verification flow;
// handlers only translate between HTTP and these methods.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/services/llm"
	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/gate"
	"github.com/veritaslaw/citegate/services/verifier/observability"
	"github.com/veritaslaw/citegate/services/verifier/online"
)

var tracer = otel.Tracer("citegate.verifier.services.pipeline")

// Compile-time interface implementation check.
var _ DocumentGate = (*gate.Gate)(nil)

// =============================================================================
// Interfaces
// =============================================================================

// DocumentGate is the gating collaborator the pipeline drives. The gate
// package's Gate satisfies it.
type DocumentGate interface {
	// Check classifies a document under the given mode without erroring.
	Check(ctx context.Context, text, mode string) *gate.Result

	// Enforce classifies a document and converts a strict rejection into a
	// *gate.StrictRejectionError.
	Enforce(ctx context.Context, text, mode string) (*gate.Result, error)
}

// =============================================================================
// DocumentService
// =============================================================================

// regenerationInstruction is appended to the original prompt when strict mode
// rejects the first draft. One retry only; a second rejection propagates.
const regenerationInstruction = "\n\nIMPORTANT: Your previous draft cited " +
	"authorities that could not be verified: %s. Redraft the document citing " +
	"only real, well-known authorities. If you are not certain a citation " +
	"exists, state the proposition without one."

// DocumentService implements document generation with citation gating and
// standalone document verification.
//
// # Description
//
// Generate drafts a document through the configured LLM backend, gates the
// result, and in strict mode regenerates at most once with an explicit
// instruction naming the rejected citations. Verify gates caller-supplied
// text without any LLM involvement.
//
// The service is stateless; all state lives in the request and the
// verification cache. Prompts and documents pass through the configured
// DocumentFilter at the pipeline boundary.
//
// # Thread Safety
//
// Safe for concurrent use; all fields are read-only after construction.
type DocumentService struct {
	llmClient llm.LLMClient
	gate      DocumentGate
	opts      extensions.ServiceOptions
	metrics   *observability.VerifierMetrics
}

// NewDocumentService creates a DocumentService.
//
// # Inputs
//
//   - llmClient: drafting backend. Required for Generate; a service built
//     without one still serves Verify.
//   - g: the citation gate. Required.
//   - opts: extension points. Nil fields are replaced with no-ops.
//   - metrics: verifier metrics. Optional.
func NewDocumentService(
	llmClient llm.LLMClient,
	g DocumentGate,
	opts extensions.ServiceOptions,
	metrics *observability.VerifierMetrics,
) (*DocumentService, error) {
	if g == nil {
		return nil, fmt.Errorf("document service requires a gate")
	}
	if opts.AuditLogger == nil {
		opts.AuditLogger = &extensions.NopAuditLogger{}
	}
	if opts.DocumentFilter == nil {
		opts.DocumentFilter = &extensions.NopDocumentFilter{}
	}
	return &DocumentService{
		llmClient: llmClient,
		gate:      g,
		opts:      opts,
		metrics:   metrics,
	}, nil
}

// Generate drafts and gates one document.
//
// # Description
//
// Performs the following operations:
//  1. Validates the request and filters the prompt.
//  2. Drafts through the LLM backend.
//  3. Gates the draft under the requested mode.
//  4. On a strict rejection, regenerates exactly once with the rejected
//     citations named in the prompt; a second rejection propagates.
//  5. Filters the accepted document before returning it.
//
// # Outputs
//
//   - *datatypes.GenerateResponse: the gated document with issue list.
//   - error: request validation failures, filter blocks, LLM failures, or a
//     *gate.StrictRejectionError when both strict attempts were rejected.
func (s *DocumentService) Generate(ctx context.Context, req *datatypes.GenerateRequest) (*datatypes.GenerateResponse, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Generate")
	defer span.End()

	req.EnsureDefaults()
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ctx = online.WithRequestID(ctx, req.RequestID)
	span.SetAttributes(
		attribute.String("request.id", req.RequestID),
		attribute.String("request.mode", req.Mode),
	)

	if s.llmClient == nil {
		return nil, fmt.Errorf("no drafting backend configured")
	}

	prompt, err := s.filterPrompt(ctx, req.Prompt)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	draft, err := s.llmClient.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("drafting failed: %w", err)
	}

	result, err := s.gate.Enforce(ctx, draft, req.Mode)
	regenerated := false
	if err != nil {
		var rej *gate.StrictRejectionError
		if !errors.As(err, &rej) {
			return nil, err
		}

		slog.Info("Strict gate rejected draft, regenerating once",
			"request_id", req.RequestID,
			"format_errors", len(rej.FormatErrors),
			"existence_errors", len(rej.ExistenceErrors))
		if s.metrics != nil {
			s.metrics.RecordRegeneration()
		}
		s.auditRegeneration(ctx, req.RequestID, rej)

		draft, err = s.llmClient.Generate(ctx, retryPrompt(prompt, rej), llm.GenerationParams{})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("drafting failed on regeneration: %w", err)
		}
		result, err = s.gate.Enforce(ctx, draft, req.Mode)
		if err != nil {
			// The single retry is spent; the rejection goes to the caller.
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		regenerated = true
	}

	text, err := s.filterDocument(ctx, result.Text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("gate.status", string(result.Status)),
		attribute.Bool("document.regenerated", regenerated),
	)
	return &datatypes.GenerateResponse{
		RequestID:   req.RequestID,
		Text:        text,
		Issues:      result.Outcome.Issues,
		Regenerated: regenerated,
		Mode:        req.Mode,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Verify gates caller-supplied text without drafting.
//
// Verification never fails on citation grounds; a rejected document is
// reported in the response status with an empty text field.
func (s *DocumentService) Verify(ctx context.Context, req *datatypes.VerifyRequest) (*datatypes.VerifyResponse, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Verify")
	defer span.End()

	req.EnsureDefaults()
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ctx = online.WithRequestID(ctx, req.RequestID)
	span.SetAttributes(
		attribute.String("request.id", req.RequestID),
		attribute.String("request.mode", req.Mode),
	)

	result := s.gate.Check(ctx, req.Text, req.Mode)
	span.SetAttributes(attribute.String("gate.status", string(result.Status)))

	return &datatypes.VerifyResponse{
		RequestID: req.RequestID,
		Status:    string(result.Status),
		Text:      result.Text,
		Outcome:   *result.Outcome,
		CheckedAt: time.Now().UTC(),
	}, nil
}

// =============================================================================
// Helpers
// =============================================================================

// retryPrompt appends the regeneration instruction naming every rejected
// citation.
func retryPrompt(prompt string, rej *gate.StrictRejectionError) string {
	var cited []string
	cited = append(cited, rej.FormatErrors...)
	cited = append(cited, rej.ExistenceErrors...)
	cited = append(cited, rej.VerificationErrors...)
	return prompt + fmt.Sprintf(regenerationInstruction, strings.Join(cited, "; "))
}

func (s *DocumentService) filterPrompt(ctx context.Context, prompt string) (string, error) {
	res, err := s.opts.DocumentFilter.FilterPrompt(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("prompt filter failed: %w", err)
	}
	if res.WasBlocked {
		return "", fmt.Errorf("%s: %w", res.BlockReason, extensions.ErrDocumentBlocked)
	}
	return res.Filtered, nil
}

func (s *DocumentService) filterDocument(ctx context.Context, document string) (string, error) {
	if document == "" {
		return "", nil
	}
	res, err := s.opts.DocumentFilter.FilterDocument(ctx, document)
	if err != nil {
		return "", fmt.Errorf("document filter failed: %w", err)
	}
	if res.WasBlocked {
		return "", fmt.Errorf("%s: %w", res.BlockReason, extensions.ErrDocumentBlocked)
	}
	return res.Filtered, nil
}

// auditRegeneration emits one fire-and-forget audit event; a failed write is
// logged and otherwise ignored.
func (s *DocumentService) auditRegeneration(ctx context.Context, requestID string, rej *gate.StrictRejectionError) {
	err := s.opts.AuditLogger.Log(ctx, extensions.AuditEvent{
		EventType:    "document.regenerate",
		Timestamp:    time.Now().UTC(),
		RequestID:    requestID,
		Action:       "regenerate",
		ResourceType: "document",
		Outcome:      "retry",
		Metadata: map[string]any{
			"format_errors":       len(rej.FormatErrors),
			"existence_errors":    len(rej.ExistenceErrors),
			"verification_errors": len(rej.VerificationErrors),
		},
	})
	if err != nil {
		slog.Warn("Audit write failed", "event", "document.regenerate", "error", err)
	}
}
