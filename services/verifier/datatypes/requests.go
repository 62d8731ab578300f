// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures for the verifier service.
//
// This file contains request and response types for the verification and
// document generation endpoints. For the citation value types, see
// citation.go.
package datatypes

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Limits
// =============================================================================

const (
	// MaxDocumentBytes is the maximum size of a document accepted for
	// verification or returned by generation. Larger inputs are rejected at
	// the boundary to bound regex and search work.
	MaxDocumentBytes = 256 * 1024 // 256KB

	// MaxPromptBytes is the maximum size of a generation prompt.
	MaxPromptBytes = 32 * 1024 // 32KB
)

// Verification modes accepted by the gate.
const (
	// ModeStrict rejects a document outright on any blocking citation issue.
	ModeStrict = "strict"

	// ModeLenient removes unverifiable citations and records warnings.
	ModeLenient = "lenient"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// verifierValidate is the validator instance for verifier datatypes.
// Initialized in init() with custom validators.
var verifierValidate *validator.Validate

func init() {
	verifierValidate = validator.New()
	_ = verifierValidate.RegisterValidation("maxdocbytes", validateMaxDocBytes)
	_ = verifierValidate.RegisterValidation("maxpromptbytes", validateMaxPromptBytes)
}

// validateMaxDocBytes enforces MaxDocumentBytes on a string field. Byte
// length is checked, not rune count, to bound memory on multibyte input.
func validateMaxDocBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxDocumentBytes
}

// validateMaxPromptBytes enforces MaxPromptBytes on a string field.
func validateMaxPromptBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPromptBytes
}

// =============================================================================
// Verify Endpoint Types
// =============================================================================

// VerifyRequest is the body of POST /v1/verify.
//
// # Fields
//
//   - RequestID: unique identifier for audit correlation. Populated by
//     EnsureDefaults when omitted.
//   - Text: the document to verify. Required, at most MaxDocumentBytes.
//   - Mode: "strict" or "lenient". Defaults to lenient.
type VerifyRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,uuid4"`
	Text      string `json:"text" validate:"required,maxdocbytes"`
	Mode      string `json:"mode" validate:"omitempty,oneof=strict lenient"`
}

// EnsureDefaults populates the request ID and mode when the caller omitted
// them. Safe to call more than once.
func (r *VerifyRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.Mode == "" {
		r.Mode = ModeLenient
	}
}

// Validate checks the request against its declared constraints.
func (r *VerifyRequest) Validate() error {
	if err := verifierValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid verify request: %w", err)
	}
	return nil
}

// Strict reports whether the request asked for strict gating.
func (r *VerifyRequest) Strict() bool {
	return r.Mode == ModeStrict
}

// VerifyResponse is the body returned by POST /v1/verify.
//
// Status mirrors the gate result: "accepted", "accepted_with_warnings" or
// "rejected". Text carries the (possibly cleaned) document except when the
// status is "rejected", in which case it is empty and Issues explains why.
type VerifyResponse struct {
	RequestID string              `json:"request_id"`
	Status    string              `json:"status"`
	Text      string              `json:"text,omitempty"`
	Outcome   VerificationOutcome `json:"outcome"`
	CheckedAt time.Time           `json:"checked_at"`
}

// =============================================================================
// Generate Endpoint Types
// =============================================================================

// GenerateRequest is the body of POST /v1/documents/generate.
//
// # Fields
//
//   - RequestID: unique identifier for audit correlation. Populated by
//     EnsureDefaults when omitted.
//   - Prompt: the drafting instruction passed to the LLM backend. Required,
//     at most MaxPromptBytes.
//   - Mode: citation gating policy for the generated output. Strict mode is
//     intended for foundational, high-stakes documents; it rejects rather
//     than cleans, and the pipeline regenerates at most once.
type GenerateRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,uuid4"`
	Prompt    string `json:"prompt" validate:"required,maxpromptbytes"`
	Mode      string `json:"mode" validate:"omitempty,oneof=strict lenient"`
}

// EnsureDefaults populates the request ID and mode when omitted.
func (r *GenerateRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.Mode == "" {
		r.Mode = ModeLenient
	}
}

// Validate checks the request against its declared constraints.
func (r *GenerateRequest) Validate() error {
	if err := verifierValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid generate request: %w", err)
	}
	return nil
}

// Strict reports whether the request asked for strict gating.
func (r *GenerateRequest) Strict() bool {
	return r.Mode == ModeStrict
}

// GenerateResponse is the body returned by POST /v1/documents/generate.
type GenerateResponse struct {
	RequestID string `json:"request_id"`
	// Text is the gated document text.
	Text string `json:"text"`
	// Issues lists warnings produced while gating, including removed
	// citations in lenient mode.
	Issues []string `json:"issues,omitempty"`
	// Regenerated is true when the first attempt was rejected in strict mode
	// and the document was produced by the single retry.
	Regenerated bool      `json:"regenerated"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"created_at"`
}
