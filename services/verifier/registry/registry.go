// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package registry provides the static court and report-series reference
// data used by the citation verification engine.
//
// The registry is loaded once from an embedded YAML table at process start
// and never mutated afterward, so all lookup methods are safe for concurrent
// use without locking. Adding a jurisdiction is a change to
// reference_data.yaml, not to code.
package registry

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry answers lookup questions about courts, report series and
// recognized international codes.
//
// # Thread Safety
//
// Immutable after Load; safe for concurrent use.
type Registry struct {
	courts         map[string]Court
	series         map[string]ReportSeries
	international  map[string]InternationalCode
	hallucinations []HallucinationPattern
	commonSurnames map[string]struct{}
}

// Load parses the embedded reference table and builds the lookup indexes.
//
// It performs the following operations:
//  1. Unmarshals the embedded YAML data.
//  2. Compiles all hallucination-shape regexes.
//  3. Builds normalized-code indexes for courts, series and international
//     codes.
//
// Returns an error if the embedded YAML is malformed or contains an invalid
// regex.
func Load() (*Registry, error) {
	var file referenceFile
	if err := yaml.Unmarshal(ReferenceData, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded reference data: %w", err)
	}
	if err := file.compileRegexes(); err != nil {
		return nil, err
	}

	r := &Registry{
		courts:         make(map[string]Court, len(file.Courts)),
		series:         make(map[string]ReportSeries, len(file.ReportSeries)),
		international:  make(map[string]InternationalCode, len(file.International)),
		hallucinations: file.HallucinationPatterns,
		commonSurnames: make(map[string]struct{}, len(file.CommonSurnames)),
	}
	for _, c := range file.Courts {
		r.courts[NormalizeCode(c.Code)] = c
	}
	for _, s := range file.ReportSeries {
		r.series[NormalizeCode(s.Code)] = s
	}
	for _, i := range file.International {
		r.international[NormalizeCode(i.Code)] = i
	}
	for _, name := range file.CommonSurnames {
		r.commonSurnames[strings.ToLower(name)] = struct{}{}
	}
	return r, nil
}

// NormalizeCode canonicalizes a court or series abbreviation for lookup.
// Dots and apostrophes are stripped and interior whitespace collapsed to a
// single space, so "U.S.", "US" and "U. S." resolve to the same entry.
func NormalizeCode(code string) string {
	code = strings.NewReplacer(".", "", "'", "", "’", "").Replace(code)
	return strings.Join(strings.Fields(code), " ")
}

// Court looks up a domestic court by its neutral citation code.
func (r *Registry) Court(code string) (Court, bool) {
	c, ok := r.courts[NormalizeCode(code)]
	return c, ok
}

// Series looks up a domestic report series by its abbreviation.
func (r *Registry) Series(code string) (ReportSeries, bool) {
	s, ok := r.series[NormalizeCode(code)]
	return s, ok
}

// International looks up a recognized non-domestic code.
func (r *Registry) International(code string) (InternationalCode, bool) {
	i, ok := r.international[NormalizeCode(code)]
	return i, ok
}

// Known reports whether the code is recognized at all, domestic or not.
func (r *Registry) Known(code string) bool {
	key := NormalizeCode(code)
	if _, ok := r.courts[key]; ok {
		return true
	}
	if _, ok := r.series[key]; ok {
		return true
	}
	_, ok := r.international[key]
	return ok
}

// IsCommonSurname reports whether the name is in the common-surname table.
// Matching is case-insensitive.
func (r *Registry) IsCommonSurname(name string) bool {
	_, ok := r.commonSurnames[strings.ToLower(name)]
	return ok
}

// HallucinationPatterns returns the compiled suspicious-shape patterns.
// The returned slice must not be modified.
func (r *Registry) HallucinationPatterns() []HallucinationPattern {
	return r.hallucinations
}

// Counts returns the number of courts, report series and international
// codes loaded. Used by the health endpoint.
func (r *Registry) Counts() (courts, series, international int) {
	return len(r.courts), len(r.series), len(r.international)
}
