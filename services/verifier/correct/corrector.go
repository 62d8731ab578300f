// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package correct removes a citation and its connecting phrase from prose
// without damaging the surrounding text.
package correct

import (
	"regexp"
	"strings"
)

// removalTemplates are ordered from most to least context. Each template is
// completed with the escaped citation; the first one that matches wins and
// exactly one occurrence is removed. Trying further templates after a match
// risks over-deleting, so the corrector stops.
//
// The character class in the connective templates keeps the match inside
// the current clause: party names before a citation cross neither
// punctuation nor another citation's brackets.
var removalTemplates = []string{
	// "established in Smith v Jones CITATION" (keeps the verb)
	`(?i)\s+(?:in|at)\s+[^.;:,\n()\[\]]{0,60}?\s*` + citationSlot,

	// "see CITATION", "citing Smith v Jones CITATION"
	`(?i)\s*\b(?:see\s+also|see|citing|following|applying)\s+[^.;:,\n()\[\]]{0,60}?\s*` + citationSlot,

	// parenthetical "(CITATION)"
	`\s*\(\s*` + citationSlot + `\s*\)`,

	// dash lead-in: em or en dash, or "--", before the citation
	`\s*(?:\x{2014}|\x{2013}|-{1,2})\s*` + citationSlot,

	// list lead-in "; CITATION" or ", CITATION"
	`\s*[;,]\s*` + citationSlot,

	// the bare citation
	`\s*` + citationSlot,
}

const citationSlot = "%CITATION%"

var (
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([.,;:!?])`)
	doubledPeriod    = regexp.MustCompile(`\.[ \t]*\.`)
	spaceRun         = regexp.MustCompile(`[ \t]{2,}`)
)

// Corrector performs surgical citation removal. It is stateless and safe
// for concurrent use.
type Corrector struct{}

// NewCorrector returns a Corrector.
func NewCorrector() *Corrector {
	return &Corrector{}
}

// Remove deletes one occurrence of the citation and its immediate
// connecting phrase from the text, then tidies the surrounding whitespace
// and punctuation.
//
// # Description
//
// The removal templates are tried in order against the exact citation
// (escaped for literal matching); the first template that matches is
// applied once and the rest are skipped. Cleanup collapses repeated spaces
// and tabs while preserving newlines, merges doubled periods and removes
// space before trailing punctuation.
//
// Remove never fails: if no template matches (the citation is malformed or
// already gone), the text is returned unchanged.
func (c *Corrector) Remove(text, citation string) string {
	citation = strings.TrimSpace(citation)
	if citation == "" {
		return text
	}

	quoted := regexp.QuoteMeta(citation)
	for _, tmpl := range removalTemplates {
		re, err := regexp.Compile(strings.ReplaceAll(tmpl, citationSlot, quoted))
		if err != nil {
			continue
		}
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return cleanup(text[:loc[0]] + text[loc[1]:])
	}
	return text
}

// RemoveAll applies Remove once per citation and reports which citations
// actually changed the text.
func (c *Corrector) RemoveAll(text string, citations []string) (string, []string) {
	var removed []string
	for _, cit := range citations {
		next := c.Remove(text, cit)
		if next != text {
			removed = append(removed, cit)
			text = next
		}
	}
	return text, removed
}

func cleanup(s string) string {
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = doubledPeriod.ReplaceAllString(s, ".")
	s = spaceRun.ReplaceAllString(s, " ")
	return s
}
