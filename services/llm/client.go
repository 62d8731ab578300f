// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm provides drafting backends for document generation. Backends
// are interchangeable behind LLMClient; the pipeline never depends on a
// concrete provider.
package llm

import "context"

// GenerationParams carries per-request sampling settings. Nil pointer fields
// fall back to backend defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient is the interface every drafting backend implements.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
