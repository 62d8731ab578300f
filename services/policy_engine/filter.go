// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/veritaslaw/citegate/pkg/extensions"
)

const redactedPlaceholder = "[REDACTED]"

// PrivilegeFilter applies the privilege screen as a DocumentFilter.
//
// # Description
//
// Prompts and documents are scanned against the embedded screening rules.
// A match in a classification marked "block" rejects the whole text; matches
// in "redact" classifications are replaced with a placeholder; "flag"
// matches are recorded as detections without changing the text.
//
// # Thread Safety
//
// The filter holds only the compiled engine, which is read-only after
// construction, so a single instance is safe for concurrent use.
type PrivilegeFilter struct {
	engine *PolicyEngine
}

// NewPrivilegeFilter creates a PrivilegeFilter over the engine.
func NewPrivilegeFilter(engine *PolicyEngine) *PrivilegeFilter {
	return &PrivilegeFilter{engine: engine}
}

// FilterPrompt screens a drafting prompt before it reaches the model.
func (f *PrivilegeFilter) FilterPrompt(ctx context.Context, prompt string) (*extensions.FilterResult, error) {
	return f.screen(prompt, true), nil
}

// FilterDocument screens a gated document before it returns to the caller.
// Generated text is screened with the same redaction rules, since the model
// can echo identifiers that appeared in the prompt. Blocking classifications
// are downgraded to flags here: a drafted letter may legitimately carry a
// without-prejudice marking.
func (f *PrivilegeFilter) FilterDocument(ctx context.Context, document string) (*extensions.FilterResult, error) {
	return f.screen(document, false), nil
}

func (f *PrivilegeFilter) screen(text string, blocking bool) *extensions.FilterResult {
	result := &extensions.FilterResult{
		Original: text,
		Filtered: text,
	}

	for _, finding := range f.engine.ScanText(text) {
		detection := extensions.Detection{
			Type:     finding.ClassificationName,
			Location: fmt.Sprintf("line %d", finding.LineNumber),
		}
		switch {
		case finding.Action == ActionBlock && blocking:
			detection.Action = "blocked"
			result.Detections = append(result.Detections, detection)
			result.WasBlocked = true
			if result.BlockReason == "" {
				result.BlockReason = fmt.Sprintf("prompt contains %s material (%s)",
					finding.ClassificationName, finding.PatternDescription)
			}
		case finding.Action == ActionRedact:
			detection.Action = "redacted"
			detection.Replacement = redactedPlaceholder
			result.Detections = append(result.Detections, detection)
			result.Filtered = strings.ReplaceAll(result.Filtered,
				finding.MatchedContent, redactedPlaceholder)
			result.WasModified = true
		default:
			detection.Action = "flagged"
			result.Detections = append(result.Detections, detection)
		}
	}

	if result.WasBlocked {
		// A blocked text must not leak through the Filtered field.
		result.Filtered = ""
		result.WasModified = false
	}
	return result
}

var _ extensions.DocumentFilter = (*PrivilegeFilter)(nil)
