// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy_engine

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veritaslaw/citegate/services/policy_engine/enforcement"
)

// PolicyEngine is the entry point for the privilege screen. It holds the
// compiled screening rules and provides methods to scan text against them.
//
// The rules classify material a law firm must keep inside its own perimeter:
// privileged communications, client identifiers and credentials that should
// never be pasted into a drafting prompt.
type PolicyEngine struct {
	Classifiers []Classification
}

// NewPolicyEngine initializes a new instance of the PolicyEngine.
//
// It takes no arguments; the screening rules are embedded in the binary via
// the enforcement package so they cannot drift from the executable.
//
// It performs the following operations:
// 1. Unmarshals the embedded YAML data.
// 2. Compiles all regex patterns.
// 3. Sorts classifications by priority.
//
// Returns an error if the embedded YAML is malformed or contains invalid regex.
func NewPolicyEngine() (*PolicyEngine, error) {
	var screenFile PrivilegeScreenFile
	if err := yaml.Unmarshal(enforcement.PrivilegeScreenPatterns, &screenFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded policy file: %w", err)
	}

	// Compile the regex patterns for performance and sort by priority
	if err := screenFile.CompileRegexes(); err != nil {
		return nil, fmt.Errorf("failed to compile a regex %w", err)
	}

	// Sort the classifications from highest to lowest priority
	screenFile.SortByPriority()

	engine := &PolicyEngine{Classifiers: screenFile.ClassificationPatterns}
	return engine, nil
}

// ClassifyData performs a quick boolean check on a byte slice to determine its
// classification.
//
// It iterates through classifications by priority and returns the name of the
// *first* classification that matches the data. If no match is found, it
// returns "public".
//
// This is optimized for high-throughput categorization rather than detailed
// auditing.
func (e *PolicyEngine) ClassifyData(data []byte) string {
	for _, classifier := range e.Classifiers {
		for _, re := range classifier.CompiledPatterns {
			if re.Match(data) {
				return classifier.Name
			}
		}
	}
	return "public"
}

// ScanText performs a comprehensive audit of a string.
//
// It splits the content into lines and checks every line against every
// pattern in the engine, capturing line numbers and the specific text that
// triggered each match. Findings come back in classification priority order
// within each line, so a privileged-material hit precedes a PII hit on the
// same line.
func (e *PolicyEngine) ScanText(content string) []ScanFinding {
	var findings []ScanFinding
	lines := strings.Split(content, "\n")
	for lineNum, line := range lines {
		for _, classifier := range e.Classifiers {
			for _, pattern := range classifier.Patterns {
				match := pattern.compiledPattern.FindString(line)
				if match != "" {
					finding := ScanFinding{
						LineNumber:         lineNum + 1,
						MatchedContent:     strings.TrimSpace(match),
						ClassificationName: classifier.Name,
						Action:             classifier.Action,
						PatternId:          pattern.Id,
						PatternDescription: pattern.Description,
						Confidence:         pattern.Confidence,
					}
					findings = append(findings, finding)
				}
			}
		}
	}
	return findings
}
