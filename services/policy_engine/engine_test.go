// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy_engine

import (
	"testing"
)

func TestPolicyEngine(t *testing.T) {
	// Initialize the engine once (it's fast!)
	engine, err := NewPolicyEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	// Define test cases (Table-Driven)
	tests := []struct {
		name            string
		input           string
		shouldFind      bool
		expectedClass   string
		expectedPattern string
	}{
		{
			name:          "Safe String",
			input:         "This is a perfectly safe instruction about a fencing dispute.",
			shouldFind:    false,
			expectedClass: "",
		},
		{
			name:            "Privileged Marking",
			input:           "Summarize the memo marked PRIVILEGED & CONFIDENTIAL for the board.",
			shouldFind:      true,
			expectedClass:   "privileged",
			expectedPattern: "PRIVILEGED_MARKER",
		},
		{
			name:            "AWS Access Key (Secret)",
			input:           "My aws key is AKIA1234567890123456 for the prod account.",
			shouldFind:      true,
			expectedClass:   "secret",
			expectedPattern: "AWS_ACCESS_KEY_ID",
		},
		{
			name:            "Email Address (PII)",
			input:           "Please contact jdoe@example.com for instructions.",
			shouldFind:      true,
			expectedClass:   "pii",
			expectedPattern: "EMAIL_ADDRESS",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// 1. Test ScanText (Detailed Audit)
			findings := engine.ScanText(tc.input)

			if tc.shouldFind {
				if len(findings) == 0 {
					t.Errorf("Expected to find '%s' but got 0 findings.", tc.expectedPattern)
					return
				}

				// Verify the first finding matches expectations
				first := findings[0]
				if first.ClassificationName != tc.expectedClass {
					t.Errorf("Expected classification '%s', got '%s'", tc.expectedClass, first.ClassificationName)
				}
				if first.PatternId != tc.expectedPattern {
					t.Errorf("Expected pattern ID '%s', got '%s'", tc.expectedPattern, first.PatternId)
				}

				// 2. Test ClassifyData (Fast Check)
				// This verifies that ClassifyData agrees with ScanText
				fastClass := engine.ClassifyData([]byte(tc.input))
				if fastClass != tc.expectedClass {
					t.Errorf("ClassifyData mismatch. Expected '%s', got '%s'", tc.expectedClass, fastClass)
				}

			} else {
				if len(findings) > 0 {
					t.Errorf("Expected 0 findings, got %d. First match: %s", len(findings), findings[0].PatternId)
				}

				// Verify ClassifyData returns "public" for safe strings
				fastClass := engine.ClassifyData([]byte(tc.input))
				if fastClass != "public" {
					t.Errorf("Expected 'public' for safe string, got '%s'", fastClass)
				}
			}
		})
	}
}

func TestEngineInitializationProperties(t *testing.T) {
	engine, err := NewPolicyEngine()
	if err != nil {
		t.Fatalf("Failed to init: %v", err)
	}

	if len(engine.Classifiers) == 0 {
		t.Fatal("Engine loaded zero classifications")
	}

	// Classifications must come back sorted from highest to lowest priority
	// so blocking classes win the fast classification.
	for i := 1; i < len(engine.Classifiers); i++ {
		if engine.Classifiers[i].Priority > engine.Classifiers[i-1].Priority {
			t.Errorf("Classifications not sorted by priority: %s (%d) after %s (%d)",
				engine.Classifiers[i].Name, engine.Classifiers[i].Priority,
				engine.Classifiers[i-1].Name, engine.Classifiers[i-1].Priority)
		}
	}

	// Every classification must declare a known action.
	for _, c := range engine.Classifiers {
		switch c.Action {
		case ActionBlock, ActionRedact, ActionFlag:
		default:
			t.Errorf("Classification %s has unknown action %q", c.Name, c.Action)
		}
	}
}
