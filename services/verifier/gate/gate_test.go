// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/online"
	"github.com/veritaslaw/citegate/services/verifier/patterns"
	"github.com/veritaslaw/citegate/services/verifier/registry"
)

// scriptedSearch returns the same hits for every query.
type scriptedSearch struct {
	results []online.SearchResult
	err     error
}

func (s *scriptedSearch) Search(_ context.Context, _ string, _ int) ([]online.SearchResult, error) {
	return s.results, s.err
}

var maboHit = online.SearchResult{
	Title:   "Mabo v Queensland (No 2)",
	Snippet: "(1992) 175 CLR 1; [1992] HCA 23",
	Link:    "https://caselaw.example/1992/hca/23",
}

func newTestGate(t *testing.T, search online.SearchClient) *Gate {
	t.Helper()
	reg, err := registry.Load()
	require.NoError(t, err)

	fixed := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	validator := patterns.NewValidatorWithClock(reg, fixed)

	verifier, err := online.NewVerifier(online.Config{
		Registry:  reg,
		Validator: validator,
		Search:    search,
	})
	require.NoError(t, err)

	g, err := NewGate(Config{Verifier: verifier, Validator: validator})
	require.NoError(t, err)
	return g
}

func TestNewGateRequiresVerifier(t *testing.T) {
	_, err := NewGate(Config{})
	assert.Error(t, err)
}

func TestCheckCleanDocumentAccepted(t *testing.T) {
	g := newTestGate(t, &scriptedSearch{results: []online.SearchResult{maboHit}})

	text := "The principle was settled in Mabo v Queensland (No 2) (1992) 175 CLR 1."
	res := g.Check(context.Background(), text, datatypes.ModeStrict)

	assert.Equal(t, StatusAccepted, res.Status)
	assert.True(t, res.Accepted())
	assert.Equal(t, text, res.Text)
	assert.Empty(t, res.Outcome.Issues)
	require.Len(t, res.Outcome.Verified, 1)
}

func TestCheckInternationalAccepted(t *testing.T) {
	g := newTestGate(t, &scriptedSearch{})

	text := "The English approach in [2020] EWCA Civ 100 applies."
	res := g.Check(context.Background(), text, datatypes.ModeStrict)

	assert.Equal(t, StatusAccepted, res.Status)
	assert.Equal(t, text, res.Text)
}

// An unverifiable citation blocks in strict mode and is cleaned in lenient
// mode.
func TestCheckExistenceFailureByMode(t *testing.T) {
	text := "The proposition was accepted, [2015] HCA 99."

	t.Run("strict rejects", func(t *testing.T) {
		g := newTestGate(t, &scriptedSearch{})
		res := g.Check(context.Background(), text, datatypes.ModeStrict)

		assert.Equal(t, StatusRejected, res.Status)
		assert.False(t, res.Accepted())
		assert.Empty(t, res.Text)
		assert.NotEmpty(t, res.Outcome.Issues)
	})

	t.Run("lenient removes", func(t *testing.T) {
		g := newTestGate(t, &scriptedSearch{})
		res := g.Check(context.Background(), text, datatypes.ModeLenient)

		assert.Equal(t, StatusAcceptedWithWarnings, res.Status)
		assert.NotContains(t, res.Text, "[2015] HCA 99")
		assert.Contains(t, res.Text, "The proposition was accepted")

		require.NotEmpty(t, res.Outcome.Issues)
		assert.Contains(t, res.Outcome.Issues[0], "removed unverifiable citation")
		assert.Contains(t, res.Outcome.Issues[0], "[2015] HCA 99")
	})
}

// A search outage downgrades to a warning and never blocks, even in strict
// mode.
func TestCheckNetworkUnavailableNonBlocking(t *testing.T) {
	g := newTestGate(t, &scriptedSearch{err: errors.New("connection refused")})

	text := "The proposition was accepted, [2015] HCA 99."
	res := g.Check(context.Background(), text, datatypes.ModeStrict)

	assert.Equal(t, StatusAcceptedWithWarnings, res.Status)
	assert.Equal(t, text, res.Text, "text must be unchanged on a network outage")

	found := false
	for _, issue := range res.Outcome.Issues {
		if strings.Contains(issue, "network unavailable") {
			found = true
		}
	}
	assert.True(t, found, "issues = %v", res.Outcome.Issues)
}

func TestEnforceStrictRejection(t *testing.T) {
	g := newTestGate(t, &scriptedSearch{results: []online.SearchResult{maboHit}})

	text := "The principle was settled in Mabo v Queensland (No 2) (1992) 175 CLR 1. " +
		"It was extended in Corp v Corp [2099] HCA 9999, which broadened the doctrine."
	res, err := g.Enforce(context.Background(), text, datatypes.ModeStrict)

	require.Error(t, err)
	assert.True(t, IsStrictRejection(err))
	assert.Equal(t, StatusRejected, res.Status)

	var rej *StrictRejectionError
	require.ErrorAs(t, err, &rej)
	require.Len(t, rej.FormatErrors, 1)
	assert.Contains(t, rej.FormatErrors[0], "HCA 9999")
	assert.Empty(t, rej.ExistenceErrors)
	assert.Empty(t, rej.VerificationErrors)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestEnforceLenientCleansFabricatedCitation(t *testing.T) {
	g := newTestGate(t, &scriptedSearch{results: []online.SearchResult{maboHit}})

	text := "The principle was settled in Mabo v Queensland (No 2) (1992) 175 CLR 1. " +
		"It was extended in Corp v Corp [2099] HCA 9999, which broadened the doctrine."
	res, err := g.Enforce(context.Background(), text, datatypes.ModeLenient)

	require.NoError(t, err)
	assert.Equal(t, StatusAcceptedWithWarnings, res.Status)

	assert.Contains(t, res.Text, "(1992) 175 CLR 1", "the genuine citation must survive")
	assert.NotContains(t, res.Text, "[2099] HCA 9999")
	assert.NotContains(t, res.Text, "in ,")

	assert.GreaterOrEqual(t, len(res.Outcome.Issues), 3,
		"expected removal plus triage findings, got %v", res.Outcome.Issues)
	for _, issue := range res.Outcome.Issues {
		assert.NotContains(t, issue, "175 CLR 1",
			"the genuine citation must not be flagged")
	}
}

func TestEnforceAcceptedReturnsNoError(t *testing.T) {
	g := newTestGate(t, &scriptedSearch{results: []online.SearchResult{maboHit}})

	text := "The principle was settled in Mabo v Queensland (No 2) (1992) 175 CLR 1."
	res, err := g.Enforce(context.Background(), text, datatypes.ModeStrict)

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, res.Status)
}
