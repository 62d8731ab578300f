// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package patterns implements the offline heuristic citation checks.
//
// None of these checks can prove a citation is fake; that takes an online
// lookup. Their job is cheap triage over the full document text, with no
// network access, so obviously broken citations are rejected before any
// search call is spent on them.
package patterns

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/veritaslaw/citegate/services/verifier/extract"
	"github.com/veritaslaw/citegate/services/verifier/registry"
)

// =============================================================================
// Findings
// =============================================================================

// Severity grades a finding. Errors describe citations that cannot be real
// (anachronisms, future dates); warnings describe citations that are merely
// suspicious.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Check identifiers, used in audit records and tests.
const (
	CheckGenericNames  = "generic_names"
	CheckUnknownCode   = "unknown_code"
	CheckCourtEra      = "court_era"
	CheckFutureYear    = "future_year"
	CheckExcessive     = "excessive_number"
	CheckSeriesEra     = "series_era"
	CheckPageNumber    = "page_number"
	CheckParallelYears = "parallel_years"
	CheckHallucination = "hallucination_shape"
)

// Finding is one issue raised by an offline check.
type Finding struct {
	Severity   Severity `json:"severity"`
	Check      string   `json:"check"`
	Citation   string   `json:"citation"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

// String renders the finding in the severity-tagged form used in issue lists.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (suggested action: %s)", f.Severity, f.Message, f.Suggestion)
}

// Issues flattens findings into their string forms.
func Issues(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.String()
	}
	return out
}

// =============================================================================
// Validator
// =============================================================================

var (
	// Party pairs like "Smith v Jones". The connective may carry a period.
	partyPairRE = regexp.MustCompile(`\b([A-Z][A-Za-z'’-]{0,30})\s+v\.?\s+([A-Z][A-Za-z'’-]{0,30})\b`)

	trailingNumberRE = regexp.MustCompile(`(\d{1,5})\s*$`)
)

// placeholderNames are party names that only appear in templates and
// fabricated examples.
var placeholderNames = map[string]struct{}{
	"test": {}, "plaintiff": {}, "defendant": {}, "applicant": {},
	"respondent": {}, "appellant": {}, "party": {}, "example": {}, "sample": {},
}

// maxPageNumber is the plausibility ceiling for report page numbers.
const maxPageNumber = 9999

// citationGap is how far (in bytes) a party pair may sit before a citation
// and still count as part of it, allowing for inserts like "(No 2)".
const citationGap = 24

// Validator runs every offline check over a document. It holds only the
// registry and a clock, so a single instance is safe for concurrent use.
type Validator struct {
	reg *registry.Registry
	now func() time.Time
}

// NewValidator builds a validator using the wall clock for the future-year
// cutoff.
func NewValidator(reg *registry.Registry) *Validator {
	return NewValidatorWithClock(reg, time.Now)
}

// NewValidatorWithClock is NewValidator with an injectable clock for tests.
func NewValidatorWithClock(reg *registry.Registry, now func() time.Time) *Validator {
	return &Validator{reg: reg, now: now}
}

// Validate applies all offline checks to the text and returns every finding.
// It operates on the whole document rather than one citation so the
// context-sensitive checks (party-name prefixes, parallel pairs) can see
// their surroundings. Purely offline; never returns an error.
func (v *Validator) Validate(text string) []Finding {
	spans := extract.ExtractSpans(text)

	var findings []Finding
	findings = append(findings, v.genericNameFindings(text, spans)...)
	findings = append(findings, v.citationFindings(spans)...)
	findings = append(findings, v.parallelFindings(text, spans)...)
	findings = append(findings, v.hallucinationFindings(text)...)
	return findings
}

// =============================================================================
// Checks
// =============================================================================

// genericNameFindings flags "X v Y" party pairs that look fabricated, unless
// the pair is immediately followed by a citation (a complete citation with
// real-looking parties is left for the online check to judge).
func (v *Validator) genericNameFindings(text string, spans []extract.Span) []Finding {
	var findings []Finding
	for _, idx := range partyPairRE.FindAllStringSubmatchIndex(text, -1) {
		end := idx[1]
		if followedByCitation(end, spans) {
			continue
		}
		first := text[idx[2]:idx[3]]
		second := text[idx[4]:idx[5]]
		pair := fmt.Sprintf("%s v %s", first, second)

		switch {
		case v.reg.IsCommonSurname(first) && v.reg.IsCommonSurname(second):
			findings = append(findings, Finding{
				Severity:   SeverityWarning,
				Check:      CheckGenericNames,
				Citation:   pair,
				Message:    fmt.Sprintf("case name %q pairs two common surnames with no accompanying citation", pair),
				Suggestion: "confirm the case exists or supply its full citation",
			})
		case isPlaceholderName(first) || isPlaceholderName(second):
			findings = append(findings, Finding{
				Severity:   SeverityError,
				Check:      CheckGenericNames,
				Citation:   pair,
				Message:    fmt.Sprintf("case name %q uses a placeholder party name", pair),
				Suggestion: "remove the fabricated reference",
			})
		case len(first) <= 2 || len(second) <= 2:
			findings = append(findings, Finding{
				Severity:   SeverityWarning,
				Check:      CheckGenericNames,
				Citation:   pair,
				Message:    fmt.Sprintf("case name %q has a suspiciously short party name", pair),
				Suggestion: "confirm the case exists or supply its full citation",
			})
		}
	}
	return findings
}

// citationFindings applies the per-citation registry checks: unknown codes,
// era violations, future years, excessive citation numbers and implausible
// page numbers.
func (v *Validator) citationFindings(spans []extract.Span) []Finding {
	currentYear := v.now().Year()

	var findings []Finding
	for _, s := range spans {
		if _, ok := v.reg.International(s.Code); ok {
			continue
		}

		if s.Year > currentYear {
			findings = append(findings, Finding{
				Severity:   SeverityError,
				Check:      CheckFutureYear,
				Citation:   s.RawText,
				Message:    fmt.Sprintf("citation %q is dated %d, in the future", s.RawText, s.Year),
				Suggestion: "remove the fabricated citation",
			})
		}

		neutral := strings.HasPrefix(s.RawText, "[")

		if court, ok := v.reg.Court(s.Code); ok {
			if s.Year > 0 && s.Year < court.Established {
				findings = append(findings, Finding{
					Severity:   SeverityError,
					Check:      CheckCourtEra,
					Citation:   s.RawText,
					Message:    fmt.Sprintf("citation %q predates %s, which was established in %d", s.RawText, court.Name, court.Established),
					Suggestion: "remove the anachronistic citation",
				})
			}
			if n, ok := trailingNumber(s.RawText); ok && court.MaxPerYear > 0 && n > court.MaxPerYear {
				findings = append(findings, Finding{
					Severity:   SeverityWarning,
					Check:      CheckExcessive,
					Citation:   s.RawText,
					Message:    fmt.Sprintf("citation %q has number %d, above the plausible annual volume for %s (%d)", s.RawText, n, court.Code, court.MaxPerYear),
					Suggestion: "verify the citation number against the judgment",
				})
			}
			continue
		}

		if series, ok := v.reg.Series(s.Code); ok {
			if s.Year > 0 && s.Year < series.Established {
				findings = append(findings, Finding{
					Severity:   SeverityError,
					Check:      CheckSeriesEra,
					Citation:   s.RawText,
					Message:    fmt.Sprintf("citation %q predates the %s series, first published in %d", s.RawText, series.Code, series.Established),
					Suggestion: "remove the anachronistic citation",
				})
			}
			if n, ok := trailingNumber(s.RawText); ok && n > maxPageNumber {
				findings = append(findings, Finding{
					Severity:   SeverityWarning,
					Check:      CheckPageNumber,
					Citation:   s.RawText,
					Message:    fmt.Sprintf("citation %q has page number %d, beyond any plausible report volume", s.RawText, n),
					Suggestion: "verify the page number against the report",
				})
			}
			continue
		}

		if neutral {
			findings = append(findings, Finding{
				Severity:   SeverityWarning,
				Check:      CheckUnknownCode,
				Citation:   s.RawText,
				Message:    fmt.Sprintf("citation %q uses unrecognized court code %q", s.RawText, s.Code),
				Suggestion: "check the court abbreviation",
			})
		}
	}
	return findings
}

// parallelFindings flags apparent parallel neutral citations, joined by a
// semicolon or comma, whose years disagree.
func (v *Validator) parallelFindings(text string, spans []extract.Span) []Finding {
	var findings []Finding
	for i := 0; i+1 < len(spans); i++ {
		a, b := spans[i], spans[i+1]
		if a.End > b.Start {
			continue
		}
		sep := strings.TrimSpace(text[a.End:b.Start])
		if sep != ";" && sep != "," {
			continue
		}
		if !strings.HasPrefix(a.RawText, "[") || !strings.HasPrefix(b.RawText, "[") {
			continue
		}
		if a.Year == 0 || b.Year == 0 || a.Year == b.Year {
			continue
		}
		findings = append(findings, Finding{
			Severity:   SeverityWarning,
			Check:      CheckParallelYears,
			Citation:   a.RawText,
			Message:    fmt.Sprintf("parallel citations %q and %q carry different years", a.RawText, b.RawText),
			Suggestion: "check which year is correct",
		})
	}
	return findings
}

// hallucinationFindings flags matches of the registry's known fabricated
// shapes, one finding per distinct matched substring.
func (v *Validator) hallucinationFindings(text string) []Finding {
	var findings []Finding
	for _, p := range v.reg.HallucinationPatterns() {
		seen := make(map[string]bool)
		for _, m := range p.Pattern().FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if seen[m] {
				continue
			}
			seen[m] = true
			findings = append(findings, Finding{
				Severity:   SeverityWarning,
				Check:      CheckHallucination,
				Citation:   m,
				Message:    fmt.Sprintf("%q matches a known fabricated-citation shape (%s)", m, p.Description),
				Suggestion: "confirm the case exists before relying on it",
			})
		}
	}
	return findings
}

// =============================================================================
// Helpers
// =============================================================================

func followedByCitation(pairEnd int, spans []extract.Span) bool {
	for _, s := range spans {
		if s.Start >= pairEnd && s.Start-pairEnd <= citationGap {
			return true
		}
	}
	return false
}

func isPlaceholderName(name string) bool {
	_, ok := placeholderNames[strings.ToLower(name)]
	return ok
}

func trailingNumber(raw string) (int, bool) {
	m := trailingNumberRE.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
