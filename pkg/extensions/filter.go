// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"errors"
)

// ErrDocumentBlocked is returned when a prompt or document is rejected by
// the filter. Implementations should wrap this error with the reason.
//
// Example:
//
//	if containsPrivileged(doc) {
//	    return nil, fmt.Errorf("document contains privileged material: %w", ErrDocumentBlocked)
//	}
var ErrDocumentBlocked = errors.New("document blocked by filter")

// FilterResult contains the outcome of a filter operation.
//
// Example:
//
//	result := FilterResult{
//	    Original:    "The client, Jane Citizen (TFN 123 456 782), seeks advice on...",
//	    Filtered:    "The client, [REDACTED] (TFN [REDACTED]), seeks advice on...",
//	    WasModified: true,
//	    Detections: []Detection{
//	        {Type: "tfn", Location: "characters 25-40", Action: "redacted"},
//	    },
//	}
type FilterResult struct {
	// Original is the input text before filtering.
	Original string

	// Filtered is the text after filtering transformations.
	// If WasModified is false, this equals Original.
	Filtered string

	// WasModified indicates if any transformations were applied.
	WasModified bool

	// WasBlocked indicates if the text was completely rejected.
	// If true, Filtered should not be used.
	WasBlocked bool

	// BlockReason explains why the text was blocked (if WasBlocked).
	BlockReason string

	// Detections lists what the filter found in the text.
	// Useful for audit logging and debugging.
	Detections []Detection
}

// Detection describes a single item found by the filter.
//
// Example:
//
//	detection := Detection{
//	    Type:     "tfn",
//	    Location: "characters 45-56",
//	    Action:   "redacted",
//	}
type Detection struct {
	// Type categorizes what was detected.
	// Common types: "tfn", "email", "phone", "client_name", "pii",
	// "privileged", "prompt_injection"
	Type string

	// Location describes where in the text the item was found.
	// Format is implementation-specific (e.g. "characters 10-20", "line 3")
	Location string

	// Action describes what was done with the detected item.
	// Values: "redacted", "masked", "replaced", "blocked", "flagged"
	Action string

	// Original is the detected content (only populated in debug mode).
	// WARNING: This may contain sensitive data; handle carefully.
	Original string

	// Replacement is what the content was replaced with (if Action is "replaced").
	Replacement string
}

// DocumentFilter transforms text entering and leaving the generation
// pipeline.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Filter Pipeline
//
// Text flows through filters at two points:
//
//  1. FilterPrompt: before the generation request reaches the model
//     - Redact client identifiers from prompts
//     - Block privileged material from leaving the deployment
//     - Detect prompt injection attempts
//
//  2. FilterDocument: after the citation gate accepts a document
//     - Mask sensitive generated content
//     - Add jurisdictional disclaimers
//
// # Open Source Behavior
//
// The default NopDocumentFilter passes all text through unchanged. This is
// appropriate for local single-user deployments where content filtering
// isn't required.
//
// # Hosted Implementation
//
// Hosted deployments implement PII redaction, client-name scrubbing and
// privilege screening here, typically backed by a policy configuration.
//
// # Blocking vs Transforming
//
// Filters can either:
//   - Transform: modify content and allow it through (e.g. redact a TFN)
//   - Block: reject the entire text (e.g. privileged material)
//
// To block, return a FilterResult with WasBlocked=true and BlockReason set.
// The caller should then return ErrDocumentBlocked to the user.
type DocumentFilter interface {
	// FilterPrompt processes a generation prompt before model inference.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - prompt: The raw user prompt
	//
	// Returns:
	//   - *FilterResult: The filtered prompt and metadata
	//   - error: Non-nil only for filter failures (not for blocks)
	//
	// If WasBlocked is true, the caller should:
	//  1. Log the block via AuditLogger
	//  2. Return ErrDocumentBlocked to the user
	//  3. NOT send the prompt to the model
	FilterPrompt(ctx context.Context, prompt string) (*FilterResult, error)

	// FilterDocument processes a gated document before returning it to the
	// caller.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - document: The accepted document text
	//
	// Returns:
	//   - *FilterResult: The filtered document and metadata
	//   - error: Non-nil only for filter failures (not for blocks)
	FilterDocument(ctx context.Context, document string) (*FilterResult, error)
}

// NopDocumentFilter is the default document filter for open source.
//
// It passes all text through unchanged without any transformation or
// blocking. This is appropriate for local single-user deployments where
// content filtering isn't required.
//
// Thread-safe: This implementation has no mutable state.
//
// Example:
//
//	filter := &NopDocumentFilter{}
//	result, err := filter.FilterPrompt(ctx, "Draft a letter of demand...")
//	// result.Filtered unchanged, result.WasModified == false, err == nil
type NopDocumentFilter struct{}

// FilterPrompt returns the prompt unchanged.
//
// No transformations or blocking are applied.
func (f *NopDocumentFilter) FilterPrompt(ctx context.Context, prompt string) (*FilterResult, error) {
	return &FilterResult{
		Original: prompt,
		Filtered: prompt,
	}, nil
}

// FilterDocument returns the document unchanged.
//
// No transformations or blocking are applied.
func (f *NopDocumentFilter) FilterDocument(ctx context.Context, document string) (*FilterResult, error) {
	return &FilterResult{
		Original: document,
		Filtered: document,
	}, nil
}

// Compile-time interface compliance check.
// This ensures NopDocumentFilter implements DocumentFilter.
var _ DocumentFilter = (*NopDocumentFilter)(nil)
