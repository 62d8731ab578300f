// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/veritaslaw/citegate/services/policy_engine"
	"github.com/veritaslaw/citegate/services/policy_engine/enforcement"
)

// verifyPolicies is the handler for "citegate policy verify".
//
// It calculates a SHA256 checksum over the embedded privilege screen rules so
// operators can verify that the binary carries the expected rule set.
func verifyPolicies(cmd *cobra.Command, args []string) {
	data := enforcement.PrivilegeScreenPatterns
	hash := sha256.Sum256(data)

	if jsonOutput {
		out, _ := json.MarshalIndent(struct {
			Valid    bool   `json:"valid"`
			Hash     string `json:"hash"`
			ByteSize int    `json:"byte_size"`
		}{true, fmt.Sprintf("sha256:%x", hash), len(data)}, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Println("--- Embedded Privilege Screen Verification ---")
	fmt.Printf("Rules byte size: %d bytes\n", len(data))
	fmt.Printf("SHA256 Fingerprint: %x\n", hash)
	fmt.Println("----------------------------------------------")
}

// dumpPolicies prints the embedded privilege screen rules.
func dumpPolicies(cmd *cobra.Command, args []string) {
	fmt.Println(string(enforcement.PrivilegeScreenPatterns))
}

// testPolicyString tests a string against the privilege screen.
//
// # Exit Codes
//
//   - 0: No findings
//   - 1: Findings raised
func testPolicyString(cmd *cobra.Command, args []string) {
	engine, err := policy_engine.NewPolicyEngine()
	if err != nil {
		log.Fatalf("Failed to create the policy engine: %v", err)
	}

	findings := engine.ScanText(args[0])
	if jsonOutput {
		out, _ := json.MarshalIndent(findings, "", "  ")
		fmt.Println(string(out))
	} else if len(findings) == 0 {
		fmt.Println("No policy findings.")
	} else {
		fmt.Println("Policy findings:")
		for _, f := range findings {
			fmt.Printf("  [%s/%s] %s: %s\n",
				f.ClassificationName, f.Confidence, f.Action, f.PatternDescription)
		}
	}

	if len(findings) > 0 {
		os.Exit(1)
	}
}
