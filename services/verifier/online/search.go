// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package online

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// =============================================================================
// Search Collaborator Interface
// =============================================================================

// SearchResult is one hit returned by the search collaborator.
type SearchResult struct {
	// Title is the matched case name or document title.
	Title string

	// Snippet is indexed text around the match.
	Snippet string

	// Link is a URL to the matched document, when the index carries one.
	Link string
}

// SearchClient is the external full-text search collaborator.
//
// # Description
//
// Given a query string and a maximum result count, implementations return
// hits believed relevant. Results are treated as untrusted and best-effort:
// no completeness or ranking stability is assumed, and the verifier draws
// its own conclusions from titles, snippets and links.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// SearchError describes a failed search collaborator call.
type SearchError struct {
	Message   string
	Retryable bool
}

// Error implements the error interface for SearchError.
func (e *SearchError) Error() string {
	return fmt.Sprintf("search error: %s", e.Message)
}

// IsSearchError checks if an error is a SearchError.
func IsSearchError(err error) bool {
	_, ok := err.(*SearchError)
	return ok
}

// =============================================================================
// Weaviate-backed Case-law Search
// =============================================================================

// CaseSearchConfig configures the weaviate-backed search collaborator.
type CaseSearchConfig struct {
	// URL is the weaviate server URL (e.g. "http://localhost:8080").
	URL string

	// ClassName is the indexed case-law class. Default: "CaseLaw".
	ClassName string
}

// defaultCaseClass is the weaviate class holding indexed judgments.
const defaultCaseClass = "CaseLaw"

// CaseSearchClient queries a weaviate case-law index with BM25 keyword
// search. BM25 is used instead of vector search because citation lookups
// need the exact year, code and number tokens to drive the match, not
// semantic similarity.
//
// # Thread Safety
//
// Safe for concurrent use; the underlying weaviate client is stateless per
// call.
type CaseSearchClient struct {
	client    *weaviate.Client
	className string
}

// NewCaseSearchClient builds a search client for the configured weaviate
// instance.
//
// # Inputs
//
//   - cfg: Connection configuration. URL is required.
//
// # Outputs
//
//   - *CaseSearchClient: Ready-to-use client.
//   - error: Non-nil when the URL is missing or unparseable.
func NewCaseSearchClient(cfg CaseSearchConfig) (*CaseSearchClient, error) {
	raw := strings.Trim(cfg.URL, "\"' ")
	if raw == "" {
		return nil, fmt.Errorf("case search URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid case search URL %q: %w", cfg.URL, err)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	className := cfg.ClassName
	if className == "" {
		className = defaultCaseClass
	}
	return &CaseSearchClient{client: client, className: className}, nil
}

// Search runs a BM25 query against the case-law class and returns the
// title/snippet/link triples of the top hits.
func (c *CaseSearchClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	bm25 := c.client.GraphQL().Bm25ArgBuilder().
		WithQuery(query).
		WithProperties("title", "fullText", "citations")

	fields := []graphql.Field{
		{Name: "title"},
		{Name: "headnote"},
		{Name: "citations"},
		{Name: "sourceUrl"},
	}

	result, err := c.client.GraphQL().Get().
		WithClassName(c.className).
		WithFields(fields...).
		WithBM25(bm25).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Retryable: true}
	}
	if len(result.Errors) > 0 {
		return nil, &SearchError{Message: result.Errors[0].Message}
	}

	return c.parseResults(result), nil
}

// parseResults walks the GraphQL response shape defensively; a malformed
// response yields an empty result set rather than an error.
func (c *CaseSearchClient) parseResults(result *models.GraphQLResponse) []SearchResult {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	objects, ok := get[c.className].([]interface{})
	if !ok {
		return nil
	}

	results := make([]SearchResult, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]any)
		if !ok {
			slog.Debug("Skipping malformed search hit")
			continue
		}
		snippet := getString(m, "headnote")
		if cites := getString(m, "citations"); cites != "" {
			snippet = strings.TrimSpace(snippet + " " + cites)
		}
		results = append(results, SearchResult{
			Title:   getString(m, "title"),
			Snippet: snippet,
			Link:    getString(m, "sourceUrl"),
		})
	}
	return results
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

var _ SearchClient = (*CaseSearchClient)(nil)
