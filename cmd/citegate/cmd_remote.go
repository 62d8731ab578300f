// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritaslaw/citegate/services/verifier/datatypes"
)

// postJSON sends the payload to the verifier service and returns the response
// body. Any status the endpoint uses to carry structured detail (422 for
// rejections, 400 for bad requests) is returned to the caller for printing.
func postJSON(path string, payload any) (int, []byte) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Post(serverURL+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Fatalf("Failed to call the verifier service at %s: %v", serverURL, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read the verifier service response: %v", err)
	}
	return resp.StatusCode, respBody
}

func runVerify(cmd *cobra.Command, args []string) {
	text := readDocument(args)

	status, body := postJSON("/v1/verify", datatypes.VerifyRequest{
		Text: text,
		Mode: policyMode,
	})
	if status != http.StatusOK {
		log.Fatalf("The verifier service returned an error (%s)", string(body))
	}
	if jsonOutput {
		fmt.Println(string(body))
		return
	}

	var resp datatypes.VerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Fatalf("Failed to parse the verifier service response: %v", err)
	}
	fmt.Printf("Status: %s (mode: %s)\n", resp.Status, policyMode)
	fmt.Printf("Verified: %d  Unverified: %d\n",
		len(resp.Outcome.Verified), len(resp.Outcome.Unverified))
	for _, issue := range resp.Outcome.Issues {
		fmt.Println("  -", issue)
	}
	if resp.Text != "" && resp.Text != text {
		fmt.Println("\n--- Corrected document ---")
		fmt.Println(resp.Text)
	}
}

func runGenerate(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		log.Fatalf("generate requires a prompt argument")
	}
	prompt := strings.Join(args, " ")

	status, body := postJSON("/v1/documents/generate", datatypes.GenerateRequest{
		Prompt: prompt,
		Mode:   policyMode,
	})
	if jsonOutput {
		fmt.Println(string(body))
		if status != http.StatusOK {
			log.Fatalf("Generation failed with status %d", status)
		}
		return
	}
	if status == http.StatusUnprocessableEntity {
		log.Fatalf("The document was rejected by the citation gate (%s)", string(body))
	}
	if status != http.StatusOK {
		log.Fatalf("The verifier service returned an error (%s)", string(body))
	}

	var resp datatypes.GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Fatalf("Failed to parse the verifier service response: %v", err)
	}
	if resp.Regenerated {
		fmt.Println("Note: the first draft cited unverifiable authorities and was redrafted.")
	}
	for _, issue := range resp.Issues {
		fmt.Println("  -", issue)
	}
	fmt.Println(resp.Text)
}
