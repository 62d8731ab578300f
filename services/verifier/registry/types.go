// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"fmt"
	"regexp"
)

// Court is one domestic court that issues neutral citations.
type Court struct {
	// Code is the abbreviation appearing in neutral citations (e.g. "HCA").
	Code string `yaml:"code"`

	// Name is the full court name.
	Name string `yaml:"name"`

	// Established is the first year for which citations of this code exist.
	// Citations dated earlier are anachronistic.
	Established int `yaml:"established"`

	// MaxPerYear is a generous ceiling on plausible citation numbers in a
	// single year. Numbers above it are flagged as excessive.
	MaxPerYear int `yaml:"max_per_year"`
}

// ReportSeries is one domestic printed report series used by traditional
// (YEAR) VOLUME SERIES PAGE citations.
type ReportSeries struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`

	// Established is the series' founding year.
	Established int `yaml:"established"`
}

// InternationalCode is a recognized non-domestic court or report code.
// Citations carrying one are accepted as valid-but-foreign without online
// verification.
type InternationalCode struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// HallucinationPattern is one structurally suspicious citation shape.
type HallucinationPattern struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Regex       string `yaml:"regex"`

	compiled *regexp.Regexp
}

// Pattern returns the compiled regular expression for this shape.
func (h *HallucinationPattern) Pattern() *regexp.Regexp {
	return h.compiled
}

// referenceFile mirrors the YAML document embedded in the binary.
type referenceFile struct {
	Courts                []Court                `yaml:"courts"`
	ReportSeries          []ReportSeries         `yaml:"report_series"`
	International         []InternationalCode    `yaml:"international"`
	HallucinationPatterns []HallucinationPattern `yaml:"hallucination_patterns"`
	CommonSurnames        []string               `yaml:"common_surnames"`
}

// compileRegexes compiles every hallucination pattern up front so a bad
// expression fails loading instead of the first scan.
func (f *referenceFile) compileRegexes() error {
	for i := range f.HallucinationPatterns {
		p := &f.HallucinationPatterns[i]
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return fmt.Errorf("failed to compile hallucination pattern %s: %w", p.ID, err)
		}
		p.compiled = re
	}
	return nil
}
