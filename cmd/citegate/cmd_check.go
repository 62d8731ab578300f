// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/veritaslaw/citegate/services/verifier/extract"
	"github.com/veritaslaw/citegate/services/verifier/patterns"
	"github.com/veritaslaw/citegate/services/verifier/registry"
)

// readDocument reads the document from the file argument, or from stdin when
// no argument was given.
func readDocument(args []string) string {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read document %s: %v", args[0], err)
		}
		return string(data)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("Failed to read document from stdin: %v", err)
	}
	return string(data)
}

func runExtract(cmd *cobra.Command, args []string) {
	text := readDocument(args)
	matches := extract.ExtractMatches(text)

	if jsonOutput {
		out, _ := json.MarshalIndent(matches, "", "  ")
		fmt.Println(string(out))
		return
	}
	if len(matches) == 0 {
		fmt.Println("No citations found.")
		return
	}
	for _, m := range matches {
		fmt.Printf("%-55s  year=%-4d  court=%s  key=%s\n",
			m.RawText, m.Year, m.Code, extract.Normalize(m.RawText))
	}
	fmt.Printf("\n%d distinct citation(s).\n", len(matches))
}

func runCheck(cmd *cobra.Command, args []string) {
	text := readDocument(args)

	reg, err := registry.Load()
	if err != nil {
		log.Fatalf("Failed to load citation reference data: %v", err)
	}
	findings := patterns.NewValidator(reg).Validate(text)

	if jsonOutput {
		out, _ := json.MarshalIndent(findings, "", "  ")
		fmt.Println(string(out))
	} else if len(findings) == 0 {
		fmt.Println("No issues found.")
	} else {
		for _, f := range findings {
			fmt.Println(f.String())
		}
	}

	for _, f := range findings {
		if f.Severity == patterns.SeverityError {
			os.Exit(1)
		}
	}
}
