// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"testing"
)

func TestLoad(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load embedded reference data: %v", err)
	}

	courts, series, international := reg.Counts()
	if courts == 0 || series == 0 || international == 0 {
		t.Fatalf("Registry loaded empty tables: courts=%d series=%d international=%d",
			courts, series, international)
	}
}

func TestCourtLookup(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	hca, ok := reg.Court("HCA")
	if !ok {
		t.Fatal("Expected HCA to be a known court")
	}
	if hca.Established != 1903 {
		t.Errorf("HCA established = %d, want 1903", hca.Established)
	}
	if hca.MaxPerYear <= 0 {
		t.Errorf("HCA max_per_year = %d, want > 0", hca.MaxPerYear)
	}

	if _, ok := reg.Court("XYZQ"); ok {
		t.Error("Expected XYZQ to be unknown")
	}
}

func TestSeriesLookup(t *testing.T) {
	reg, _ := Load()

	clr, ok := reg.Series("CLR")
	if !ok {
		t.Fatal("Expected CLR to be a known report series")
	}
	if clr.Established != 1903 {
		t.Errorf("CLR established = %d, want 1903", clr.Established)
	}
}

func TestInternationalNormalization(t *testing.T) {
	reg, _ := Load()

	tests := []struct {
		code string
		want bool
	}{
		{"EWCA", true},
		{"UKSC", true},
		{"US", true},
		{"U.S.", true}, // dots stripped
		{"S Ct", true},
		{"S. Ct.", true},
		{"Lloyd's Rep", true}, // apostrophe stripped
		{"F3d", true},
		{"F.3d", true},
		{"HCA", false}, // domestic, not international
		{"ZZZ", false},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			if _, ok := reg.International(tc.code); ok != tc.want {
				t.Errorf("International(%q) = %v, want %v", tc.code, ok, tc.want)
			}
		})
	}
}

func TestHallucinationPatternsCompiled(t *testing.T) {
	reg, _ := Load()

	patterns := reg.HallucinationPatterns()
	if len(patterns) == 0 {
		t.Fatal("Expected at least one hallucination pattern")
	}
	for _, p := range patterns {
		if p.Pattern() == nil {
			t.Errorf("Pattern %s was not compiled", p.ID)
		}
	}

	// The corporate-parties shape must catch the canonical fabrication.
	var corp *HallucinationPattern
	for i := range patterns {
		if patterns[i].ID == "GENERIC_CORP_PARTIES" {
			corp = &patterns[i]
		}
	}
	if corp == nil {
		t.Fatal("GENERIC_CORP_PARTIES pattern missing")
	}
	if !corp.Pattern().MatchString("Corp v Corp") {
		t.Error("GENERIC_CORP_PARTIES should match 'Corp v Corp'")
	}
	if corp.Pattern().MatchString("Mabo v Queensland") {
		t.Error("GENERIC_CORP_PARTIES should not match real party names")
	}
}

func TestIsCommonSurname(t *testing.T) {
	reg, _ := Load()

	if !reg.IsCommonSurname("Smith") {
		t.Error("Smith should be a common surname")
	}
	if !reg.IsCommonSurname("jones") {
		t.Error("Surname matching should be case-insensitive")
	}
	if reg.IsCommonSurname("Mabo") {
		t.Error("Mabo should not be in the common-surname table")
	}
}
