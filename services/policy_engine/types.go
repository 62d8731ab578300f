// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy_engine

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

type ConfidenceLevel string

const (
	Low    ConfidenceLevel = "low"
	Medium ConfidenceLevel = "medium"
	High   ConfidenceLevel = "high"
)

// Actions a classification can demand when one of its patterns matches.
const (
	// ActionBlock rejects the whole text. Used for material that must never
	// reach an external model, such as privileged communications.
	ActionBlock = "block"

	// ActionRedact replaces the matched content before the text moves on.
	ActionRedact = "redact"

	// ActionFlag records the match for the audit trail without changing the
	// text.
	ActionFlag = "flag"
)

type PrivilegeScreenFile struct {
	ClassificationPatterns []Classification `yaml:"classifications"`
}

type Classification struct {
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description"`
	Priority         int              `yaml:"priority"`
	Action           string           `yaml:"action"`
	Patterns         []Pattern        `yaml:"patterns"`
	CompiledPatterns []*regexp.Regexp `yaml:"-"`
}

type Pattern struct {
	Id              string          `yaml:"id"`
	Description     string          `yaml:"description"`
	Regex           string          `yaml:"regex"`
	Confidence      ConfidenceLevel `yaml:"confidence"`
	compiledPattern *regexp.Regexp  `yaml:"-"`
}

func (c *ConfidenceLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	incomingConfidence := ConfidenceLevel(s)
	switch incomingConfidence {
	case High, Medium, Low:
		*c = incomingConfidence
		return nil
	default:
		return fmt.Errorf("invalid value for Confidence: %q", incomingConfidence)
	}
}

func (p *PrivilegeScreenFile) CompileRegexes() error {
	for i := range p.ClassificationPatterns {
		for j := range p.ClassificationPatterns[i].Patterns {
			pattern := &p.ClassificationPatterns[i].Patterns[j]
			re, err := regexp.Compile(pattern.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile the regex %s: %w", pattern.Regex, err)
			}
			p.ClassificationPatterns[i].CompiledPatterns = append(p.ClassificationPatterns[i].
				CompiledPatterns, re)
			pattern.compiledPattern = re
		}
	}
	return nil
}

func (p *PrivilegeScreenFile) SortByPriority() {
	sort.Slice(p.ClassificationPatterns, func(i, j int) bool {
		return p.ClassificationPatterns[i].Priority > p.ClassificationPatterns[j].Priority
	})
}

// ScanFinding is one pattern match in a screened text.
type ScanFinding struct {
	LineNumber         int             `json:"line_number"`
	MatchedContent     string          `json:"matched_content"`
	ClassificationName string          `json:"classification_name"`
	Action             string          `json:"action"`
	PatternId          string          `json:"pattern_id"`
	PatternDescription string          `json:"pattern_description"`
	Confidence         ConfidenceLevel `json:"confidence"`
}
