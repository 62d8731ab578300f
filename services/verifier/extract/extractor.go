// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extract finds citation-shaped substrings in free text.
//
// The extractor applies an ordered list of independent pattern families over
// the whole input (neutral, neutral with case-type suffix, neutral with
// inserted volume, traditional, US federal and Supreme Court forms, named
// report series). Families may overlap; results are unioned into a set, so
// duplicates across families collapse automatically and no precedence
// between families is needed.
//
// Extraction is pure: no side effects, no network access, and an input with
// no citations yields an empty result rather than an error.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// Pattern Families
// =============================================================================

// family is one independent citation pattern evaluated over the whole text.
// parse pulls the year and court/series code out of a submatch; a family
// whose form carries no year returns 0.
type family struct {
	name  string
	re    *regexp.Regexp
	parse func(groups []string) (year int, code string)
}

// The families are ordered for readability only; evaluation order does not
// affect the result because exact-substring matches are idempotent under set
// union.
var families = []family{
	{
		// [1992] HCA 23
		name: "neutral",
		re:   regexp.MustCompile(`\[(\d{4})\]\s+([A-Z][A-Za-z]{1,9})\s+\d{1,5}\b`),
		parse: func(g []string) (int, string) {
			return atoi(g[1]), g[2]
		},
	},
	{
		// [2020] EWCA Civ 100
		name: "neutral_suffix",
		re:   regexp.MustCompile(`\[(\d{4})\]\s+([A-Z][A-Za-z]{1,9})\s+(?:Civ|Crim|Admin|Ch|Pat|Comm|Fam|QB|KB|TCC)\s+\d{1,5}\b`),
		parse: func(g []string) (int, string) {
			return atoi(g[1]), g[2]
		},
	},
	{
		// [1975] 1 All ER 504, [2002] 2 WLR 578
		name: "neutral_volume",
		re:   regexp.MustCompile(`\[(\d{4})\]\s+\d{1,2}\s+((?:[A-Z][A-Za-z'’]{0,9}\s+)?[A-Z][A-Za-z'’]{1,9})\s+\d{1,5}\b`),
		parse: func(g []string) (int, string) {
			return atoi(g[1]), collapseSpaces(g[2])
		},
	},
	{
		// (1992) 175 CLR 1
		name: "traditional",
		re:   regexp.MustCompile(`\((\d{4})\)\s+\d{1,3}\s+((?:[A-Z][A-Za-z'’]{0,9}\s+)?[A-Z][A-Za-z'’]{1,9})\s+\d{1,5}\b`),
		parse: func(g []string) (int, string) {
			return atoi(g[1]), collapseSpaces(g[2])
		},
	},
	{
		// 410 U.S. 113 (1973), 98 F.3d 1121, 135 S. Ct. 2652
		name: "us_federal",
		re:   regexp.MustCompile(`\b\d{1,4}\s+(U\.?\s?S\.?|S\.?\s?Ct\.?|F\.?\s?(?:2d|3d|4th)|F\.?\s?Supp\.?(?:\s?2d)?)\s+\d{1,5}(?:\s+\((\d{4})\))?`),
		parse: func(g []string) (int, string) {
			return atoi(g[2]), g[1]
		},
	},
	{
		// (1998) 1 Lloyd's Rep 337 and other possessive series variants
		name: "named_series",
		re:   regexp.MustCompile(`[\[(](\d{4})[\])]\s+\d{1,2}\s+(All\s+ER|Lloyd'?s\s+Rep\.?|WLR|TLR)\s+\d{1,5}\b`),
		parse: func(g []string) (int, string) {
			return atoi(g[1]), collapseSpaces(g[2])
		},
	},
}

// =============================================================================
// Extraction
// =============================================================================

// Match is one extracted citation candidate before classification.
type Match struct {
	// RawText is the exact matched substring.
	RawText string

	// Year is the four-digit year, or 0 when the form carries none.
	Year int

	// Code is the court or series abbreviation as it appeared (dots and
	// possessives preserved; normalize with registry.NormalizeCode).
	Code string
}

// Extract returns the deduplicated set of citation-shaped substrings in the
// text, sorted for deterministic output. It never fails on well-formed
// string input; text without citations yields an empty slice.
func Extract(text string) []string {
	matches := ExtractMatches(text)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.RawText
	}
	return out
}

// ExtractMatches is Extract with the parsed year and code retained for each
// distinct raw substring. When two families match the same exact substring,
// the first family's parse wins; the parses agree on shared forms.
func ExtractMatches(text string) []Match {
	seen := make(map[string]Match)
	for _, f := range families {
		for _, groups := range f.re.FindAllStringSubmatch(text, -1) {
			raw := strings.TrimSpace(groups[0])
			if _, dup := seen[raw]; dup {
				continue
			}
			year, code := f.parse(groups)
			seen[raw] = Match{RawText: raw, Year: year, Code: code}
		}
	}

	out := make([]Match, 0, len(seen))
	for _, m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RawText < out[j].RawText })
	return out
}

// Span is a Match with its byte offsets in the source text. Unlike
// ExtractMatches, spans are not deduplicated by raw text: a citation that
// appears twice yields two spans, which is what positional consumers (the
// offline validator's context checks) need.
type Span struct {
	Match

	// Start and End are byte offsets into the source text, half-open.
	Start int
	End   int
}

// ExtractSpans returns every family match with its position, deduplicated by
// offset range and sorted by start offset.
func ExtractSpans(text string) []Span {
	seen := make(map[[2]int]bool)
	var out []Span
	for _, f := range families {
		for _, idx := range f.re.FindAllStringSubmatchIndex(text, -1) {
			key := [2]int{idx[0], idx[1]}
			if seen[key] {
				continue
			}
			seen[key] = true
			year, code := f.parse(submatches(text, idx))
			out = append(out, Span{
				Match: Match{
					RawText: strings.TrimSpace(text[idx[0]:idx[1]]),
					Year:    year,
					Code:    code,
				},
				Start: idx[0],
				End:   idx[1],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// =============================================================================
// Normalization
// =============================================================================

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	openBracket  = regexp.MustCompile(`([\[(])\s+`)
	closeBracket = regexp.MustCompile(`\s+([\])])`)
)

// Normalize produces the canonical citation form used as the cache and
// lookup key: surrounding whitespace trimmed, interior whitespace collapsed
// to single spaces, and spaces inside brackets removed. Normalize is
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(citation string) string {
	s := spaceRun.ReplaceAllString(strings.TrimSpace(citation), " ")
	s = openBracket.ReplaceAllString(s, "$1")
	s = closeBracket.ReplaceAllString(s, "$1")
	return s
}

// =============================================================================
// Helpers
// =============================================================================

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// submatches converts a FindAllStringSubmatchIndex row into the string slice
// shape the family parse functions expect. Absent groups become "".
func submatches(text string, idx []int) []string {
	groups := make([]string, len(idx)/2)
	for i := range groups {
		lo, hi := idx[2*i], idx[2*i+1]
		if lo < 0 || hi < 0 {
			continue
		}
		groups[i] = text[lo:hi]
	}
	return groups
}
