// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures for the verifier service.
//
// This file contains the core citation value types shared by the extractor,
// pattern validator, online verifier and gate. Request and response types for
// the HTTP surface live in requests.go.
package datatypes

import (
	"fmt"
	"time"
)

// =============================================================================
// Classification
// =============================================================================

// Classification describes what the engine currently believes about a
// citation. A citation starts unclassified and is promoted exactly once;
// reclassification produces a new Citation value rather than mutating the
// old one, so concurrent checks never alias a half-updated record.
type Classification string

const (
	// ClassificationUnclassified is the zero state assigned by the extractor.
	ClassificationUnclassified Classification = "unclassified"

	// ClassificationDomesticVerified means the citation was confirmed to
	// exist in the domestic case-law index.
	ClassificationDomesticVerified Classification = "domestic_verified"

	// ClassificationInternational means the citation matches a recognized
	// non-domestic court or report series. These cannot be confirmed against
	// the domestic index but are never treated as hallucinations.
	ClassificationInternational Classification = "international"

	// ClassificationUnverified means the citation failed offline format
	// checks or could not be found online.
	ClassificationUnverified Classification = "unverified"
)

// =============================================================================
// Citation
// =============================================================================

// Citation is one candidate legal reference found in generated text.
//
// # Description
//
// Citations are immutable values. The extractor produces them with
// ClassificationUnclassified; the online verifier derives classified copies
// via WithClassification. RawText is the exact substring as it appeared in
// the source document and must be preserved so the corrector can remove it
// surgically. NormalizedText is the whitespace-collapsed, bracket-normalized
// canonical form used as the cache and lookup key.
//
// # Thread Safety
//
// Citation is a plain value type with no mutable state; copies are safe to
// share across goroutines.
type Citation struct {
	// RawText is the exact substring as extracted from the document.
	RawText string `json:"raw_text"`

	// NormalizedText is the canonical form used as the cache key.
	NormalizedText string `json:"normalized_text"`

	// Year is the four-digit year extracted from the citation, or 0 when no
	// year could be parsed (some US report forms omit it).
	Year int `json:"year"`

	// Code is the court or report-series abbreviation (e.g. "HCA", "CLR").
	Code string `json:"code"`

	// Classification is the engine's current belief about this citation.
	Classification Classification `json:"classification"`
}

// WithClassification returns a copy of the citation carrying the given
// classification. The receiver is not modified.
func (c Citation) WithClassification(cl Classification) Citation {
	c.Classification = cl
	return c
}

// String returns the normalized form, falling back to the raw form.
func (c Citation) String() string {
	if c.NormalizedText != "" {
		return c.NormalizedText
	}
	return c.RawText
}

// =============================================================================
// Verification Records
// =============================================================================

// VerificationRecord is one cache entry of the online verifier.
//
// # Description
//
// A record is created on the first lookup of a normalized citation and
// read-shared afterward. Records are never updated in place: a repeated
// lookup overwrites the whole record (last-write-wins under the cache lock),
// it does not merge fields. The cache owns these records exclusively; no
// other component writes them.
//
// # Fields
//
//   - NormalizedText: cache key, the canonical citation form.
//   - Exists: whether the citation is treated as existing. Network failures
//     set this to true with a warning reason so a search outage never blocks
//     document generation.
//   - URL: link to the matching document when one was found, else empty.
//   - Reason: human-readable explanation. Stable prefixes on this string are
//     what the gate uses to bucket failures; see the online package constants.
//   - CheckedAt: when the lookup completed, from the cache's injected clock.
type VerificationRecord struct {
	NormalizedText string    `json:"normalized_text"`
	Exists         bool      `json:"exists"`
	URL            string    `json:"url,omitempty"`
	Reason         string    `json:"reason"`
	CheckedAt      time.Time `json:"checked_at"`
}

// UnverifiedCitation pairs a citation with the reason it failed verification.
type UnverifiedCitation struct {
	Citation Citation `json:"citation"`
	Reason   string   `json:"reason"`
}

// String renders the pair for issue lists and rejection messages.
func (u UnverifiedCitation) String() string {
	return fmt.Sprintf("%s (%s)", u.Citation.String(), u.Reason)
}

// =============================================================================
// Verification Outcome
// =============================================================================

// VerificationOutcome is the aggregate result of verifying one document.
//
// # Description
//
// Created per gate invocation and discarded once the caller consumes it.
// Every Citation in Verified or Unverified was produced by the extractor
// from the same input text; outcomes never reference citations that are not
// present in the source document.
type VerificationOutcome struct {
	// Verified holds citations confirmed domestically or recognized as
	// international.
	Verified []Citation `json:"verified"`

	// Unverified holds citations that failed format checks or online lookup,
	// each with its reason.
	Unverified []UnverifiedCitation `json:"unverified"`

	// Issues is the flat human-readable issue list, including offline triage
	// findings and removal summaries.
	Issues []string `json:"issues"`
}

// HasUnverified reports whether any citation failed verification.
func (o *VerificationOutcome) HasUnverified() bool {
	return len(o.Unverified) > 0
}
