// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package correct

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveConnectivePhrase(t *testing.T) {
	c := NewCorrector()

	text := "This was established in Smith v Jones [2023] HCA 999, which held that the rule applies."
	got := c.Remove(text, "[2023] HCA 999")

	assert.Equal(t, "This was established, which held that the rule applies.", got)
	assert.NotContains(t, got, "in ,")
	assert.NotContains(t, got, "  ")
	assert.NotContains(t, got, " ,")
}

func TestRemoveVariants(t *testing.T) {
	c := NewCorrector()

	tests := []struct {
		name     string
		text     string
		citation string
		want     string
	}{
		{
			name:     "see lead-in",
			text:     "The duty is non-delegable; see Kondis v State Transport [1984] HCA 61. It follows that liability attaches.",
			citation: "[1984] HCA 61",
			want:     "The duty is non-delegable;. It follows that liability attaches.",
		},
		{
			name:     "parenthetical",
			text:     "Native title survived annexation ([1992] HCA 23) in all states.",
			citation: "[1992] HCA 23",
			want:     "Native title survived annexation in all states.",
		},
		{
			name:     "dash lead-in",
			text:     "One authority controls -- [2011] HCA 32.",
			citation: "[2011] HCA 32",
			want:     "One authority controls.",
		},
		{
			name:     "comma lead-in",
			text:     "The principle is settled, [2011] HCA 32.",
			citation: "[2011] HCA 32",
			want:     "The principle is settled.",
		},
		{
			name:     "bare citation",
			text:     "Authority: [2011] HCA 32 governs here.",
			citation: "[2011] HCA 32",
			want:     "Authority: governs here.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Remove(tc.text, tc.citation)
			assert.Equal(t, tc.want, got)
			assert.NotContains(t, got, tc.citation)
		})
	}
}

func TestRemoveOnlyFirstOccurrence(t *testing.T) {
	c := NewCorrector()

	text := "See [2011] HCA 32. Later, [2011] HCA 32 was distinguished."
	got := c.Remove(text, "[2011] HCA 32")

	assert.Equal(t, 1, strings.Count(got, "[2011] HCA 32"),
		"only one occurrence is removed per call")
}

func TestRemoveNoMatchReturnsUnchanged(t *testing.T) {
	c := NewCorrector()

	text := "This paragraph cites nothing."
	assert.Equal(t, text, c.Remove(text, "[2011] HCA 32"))
	assert.Equal(t, text, c.Remove(text, ""))
}

func TestRemovePreservesNewlines(t *testing.T) {
	c := NewCorrector()

	text := "First paragraph cites [2011] HCA 32.\n\nSecond paragraph stands alone."
	got := c.Remove(text, "[2011] HCA 32")

	assert.Contains(t, got, "\n\n")
	assert.NotContains(t, got, "[2011] HCA 32")
}

func TestRemoveDoesNotTouchOtherCitations(t *testing.T) {
	c := NewCorrector()

	text := "The court in Mabo v Queensland (No 2) (1992) 175 CLR 1 and the " +
		"fictitious Corp v Corp [2099] HCA 9999 both apply."
	got := c.Remove(text, "[2099] HCA 9999")

	assert.Contains(t, got, "(1992) 175 CLR 1")
	assert.NotContains(t, got, "[2099] HCA 9999")
}

func TestRemoveAll(t *testing.T) {
	c := NewCorrector()

	text := "See [2011] HCA 32 and also the decision in Smith v Jones [2023] HCA 999."
	got, removed := c.RemoveAll(text, []string{"[2011] HCA 32", "[2023] HCA 999", "[1901] FAKE 1"})

	assert.NotContains(t, got, "[2011] HCA 32")
	assert.NotContains(t, got, "[2023] HCA 999")
	assert.ElementsMatch(t, []string{"[2011] HCA 32", "[2023] HCA 999"}, removed)
}
