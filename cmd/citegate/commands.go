// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	serverURL  string
	policyMode string
	jsonOutput bool

	rootCmd = &cobra.Command{
		Use:   "citegate",
		Short: "A cli for the Veritas citation verification gate",
		Long: `Citegate checks legal documents for fabricated case-law citations.
				Offline checks run locally against the embedded court registry;
				verification and drafting go through a running verifier service.`,
	}

	// --- Local / Offline ---
	extractCmd = &cobra.Command{
		Use:   "extract [file]",
		Short: "List the case-law citations found in a document",
		Long: `Extracts every recognized citation form from the document and prints
				the raw text alongside its canonical lookup form. Reads stdin when
				no file is given.`,
		Run: runExtract, // Defined in cmd_check.go
	}
	checkCmd = &cobra.Command{
		Use:   "check [file]",
		Short: "Run the offline citation checks on a document",
		Long: `Runs the pattern checks (unknown courts, impossible years, generic
				party names, hallucination phrasings) without contacting the
				verifier service. Exits non-zero when any ERROR finding is raised.`,
		Run: runCheck, // Defined in cmd_check.go
	}

	// --- Policies ---
	policyCmd = &cobra.Command{
		Use:   "policy",
		Short: "Base command to interact with the privilege screen",
		Long: `Use policy + subcommands to interact with the privilege screen rules that
				are embedded in the citegate binary. You can define new rules as long as
				you rebuild the binary.`,
	}
	verifyPolicyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify the integrity of the embedded screening rules",
		Long:  `Calculates the SHA256 hash of the compiled-in screening rules. Use this to verify that the binary is running the expected version of your firm's rules.`,
		Run:   verifyPolicies, // Defined in cmd_policy.go
	}
	dumpPolicyCmd = &cobra.Command{
		Use:   "dump",
		Short: "Prints out the whole screening rules file to stdout",
		Run:   dumpPolicies, // Defined in cmd_policy.go
	}
	testPolicyCmd = &cobra.Command{
		Use:   "test [string]",
		Short: "Allows you to enter a test string to see if the screen catches it",
		Args:  cobra.ExactArgs(1),
		Run:   testPolicyString, // Defined in cmd_policy.go
	}

	// --- Service ---
	verifyCmd = &cobra.Command{
		Use:   "verify [file]",
		Short: "Verify a document's citations through the verifier service",
		Run:   runVerify, // Defined in cmd_remote.go
	}
	generateCmd = &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Draft a document through the verifier service's citation gate",
		Run:   runGenerate, // Defined in cmd_remote.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:12310",
		"Base URL of the verifier service")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print raw JSON responses instead of formatted output")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(verifyPolicyCmd)
	policyCmd.AddCommand(dumpPolicyCmd)
	policyCmd.AddCommand(testPolicyCmd)

	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&policyMode, "mode", "lenient",
		"Citation policy: 'strict' rejects unverified citations, 'lenient' removes them")

	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&policyMode, "mode", "lenient",
		"Citation policy: 'strict' rejects unverified citations, 'lenient' removes them")
}
