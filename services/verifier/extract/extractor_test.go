// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFamilies(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "neutral",
			text: "As decided in Plaintiff M70/2011 v Minister [2011] HCA 32, the power is limited.",
			want: []string{"[2011] HCA 32"},
		},
		{
			name: "neutral with case-type suffix",
			text: "See the English position in [2020] EWCA Civ 100.",
			want: []string{"[2020] EWCA Civ 100"},
		},
		{
			name: "neutral with inserted volume",
			text: "The rule in [1975] 1 All ER 504 was not followed.",
			want: []string{"[1975] 1 All ER 504"},
		},
		{
			name: "traditional",
			text: "Mabo v Queensland (No 2) (1992) 175 CLR 1 changed the common law.",
			want: []string{"(1992) 175 CLR 1"},
		},
		{
			name: "us supreme court",
			text: "Compare Roe v Wade 410 U.S. 113 (1973) on this point.",
			want: []string{"410 U.S. 113 (1973)"},
		},
		{
			name: "us federal reporter",
			text: "The circuit split began with 98 F.3d 1121.",
			want: []string{"98 F.3d 1121"},
		},
		{
			name: "named series possessive",
			text: "The charterparty cases include (1998) 1 Lloyd's Rep 337.",
			want: []string{"(1998) 1 Lloyd's Rep 337"},
		},
		{
			name: "no citations",
			text: "This paragraph discusses general principles only.",
			want: []string{},
		},
		{
			name: "multiple citations across families",
			text: "See [1992] HCA 23; (1992) 175 CLR 1 and also [2020] EWCA Civ 100.",
			want: []string{"(1992) 175 CLR 1", "[1992] HCA 23", "[2020] EWCA Civ 100"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text)
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestExtractDeduplicates(t *testing.T) {
	text := "See [1992] HCA 23. The decision in [1992] HCA 23 was unanimous."
	got := Extract(text)
	require.Len(t, got, 1)
	assert.Equal(t, "[1992] HCA 23", got[0])
}

// Re-extracting from a string built purely from already-extracted citations
// must yield the same set.
func TestExtractIdempotent(t *testing.T) {
	text := "The court in Mabo v Queensland (No 2) (1992) 175 CLR 1 and " +
		"[2011] HCA 32 applied [2020] EWCA Civ 100 and 410 U.S. 113 (1973)."

	first := Extract(text)
	require.NotEmpty(t, first)

	rebuilt := strings.Join(first, "\n")
	second := Extract(rebuilt)
	assert.ElementsMatch(t, first, second)
}

func TestExtractMatchesParsesYearAndCode(t *testing.T) {
	tests := []struct {
		text     string
		wantYear int
		wantCode string
	}{
		{"[2011] HCA 32", 2011, "HCA"},
		{"[2020] EWCA Civ 100", 2020, "EWCA"},
		{"(1992) 175 CLR 1", 1992, "CLR"},
		{"[1975] 1 All ER 504", 1975, "All ER"},
		{"410 U.S. 113 (1973)", 1973, "U.S."},
		{"98 F.3d 1121", 0, "F.3d"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			matches := ExtractMatches(tc.text)
			require.Len(t, matches, 1)
			assert.Equal(t, tc.wantYear, matches[0].Year)
			assert.Equal(t, tc.wantCode, matches[0].Code)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  [2011]   HCA  32 ", "[2011] HCA 32"},
		{"[ 2011 ] HCA 32", "[2011] HCA 32"},
		{"( 1992 )  175  CLR  1", "(1992) 175 CLR 1"},
		{"[2011]\tHCA\n32", "[2011] HCA 32"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

// Normalization must be stable: applying it twice changes nothing.
func TestNormalizeStability(t *testing.T) {
	inputs := []string{
		"[ 2011 ]  HCA   32",
		"(1992) 175 CLR 1",
		"plain text with no citation",
		"  [2020]   EWCA  Civ  100  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize is not idempotent for %q", in)
	}
}
