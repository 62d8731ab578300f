// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/services/llm"
	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/gate"
)

// scriptedLLM returns its drafts in order and records every prompt.
type scriptedLLM struct {
	drafts  []string
	err     error
	prompts []string
}

func (m *scriptedLLM) Generate(_ context.Context, prompt string, _ llm.GenerationParams) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.prompts) - 1
	if i >= len(m.drafts) {
		i = len(m.drafts) - 1
	}
	return m.drafts[i], nil
}

// scriptedGate returns its results and errors in call order.
type scriptedGate struct {
	results []*gate.Result
	errs    []error
	calls   int
}

func (g *scriptedGate) Check(_ context.Context, text, mode string) *gate.Result {
	res := g.results[g.calls]
	g.calls++
	return res
}

func (g *scriptedGate) Enforce(_ context.Context, text, mode string) (*gate.Result, error) {
	res, err := g.results[g.calls], g.errs[g.calls]
	g.calls++
	return res, err
}

func acceptedResult(text string, issues ...string) *gate.Result {
	return &gate.Result{
		Status: gate.StatusAccepted,
		Text:   text,
		Outcome: &datatypes.VerificationOutcome{
			Issues: issues,
		},
	}
}

func newService(t *testing.T, llmClient llm.LLMClient, g DocumentGate) *DocumentService {
	t.Helper()
	svc, err := NewDocumentService(llmClient, g, extensions.DefaultOptions(), nil)
	require.NoError(t, err)
	return svc
}

func TestNewDocumentServiceRequiresGate(t *testing.T) {
	_, err := NewDocumentService(&scriptedLLM{}, nil, extensions.DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestGenerateAccepted(t *testing.T) {
	mockLLM := &scriptedLLM{drafts: []string{"The draft text."}}
	mockGate := &scriptedGate{
		results: []*gate.Result{acceptedResult("The draft text.")},
		errs:    []error{nil},
	}
	svc := newService(t, mockLLM, mockGate)

	resp, err := svc.Generate(context.Background(), &datatypes.GenerateRequest{
		Prompt: "Draft a letter of demand.",
	})

	require.NoError(t, err)
	assert.Equal(t, "The draft text.", resp.Text)
	assert.False(t, resp.Regenerated)
	assert.Equal(t, datatypes.ModeLenient, resp.Mode, "mode defaults to lenient")
	assert.NotEmpty(t, resp.RequestID)
	assert.Len(t, mockLLM.prompts, 1)
}

// A strict rejection triggers exactly one regeneration with the rejected
// citations named in the retry prompt.
func TestGenerateRegeneratesOnceOnStrictRejection(t *testing.T) {
	rejection := &gate.StrictRejectionError{
		ExistenceErrors: []string{"[2015] HCA 99 (no matching case found in the case-law index)"},
	}
	mockLLM := &scriptedLLM{drafts: []string{"Bad draft.", "Clean draft."}}
	mockGate := &scriptedGate{
		results: []*gate.Result{nil, acceptedResult("Clean draft.")},
		errs:    []error{rejection, nil},
	}
	svc := newService(t, mockLLM, mockGate)

	resp, err := svc.Generate(context.Background(), &datatypes.GenerateRequest{
		Prompt: "Draft submissions.",
		Mode:   datatypes.ModeStrict,
	})

	require.NoError(t, err)
	assert.True(t, resp.Regenerated)
	assert.Equal(t, "Clean draft.", resp.Text)

	require.Len(t, mockLLM.prompts, 2)
	assert.Equal(t, "Draft submissions.", mockLLM.prompts[0])
	assert.Contains(t, mockLLM.prompts[1], "Draft submissions.")
	assert.Contains(t, mockLLM.prompts[1], "[2015] HCA 99",
		"retry prompt must name the rejected citation")
	assert.Contains(t, mockLLM.prompts[1], "could not be verified")
}

// The second rejection is final; the error reaches the caller.
func TestGenerateSecondRejectionPropagates(t *testing.T) {
	rejection := &gate.StrictRejectionError{
		FormatErrors: []string{"[2099] HCA 9999 (invalid format: citation year 2099 is in the future)"},
	}
	mockLLM := &scriptedLLM{drafts: []string{"Bad draft.", "Still bad."}}
	mockGate := &scriptedGate{
		results: []*gate.Result{nil, nil},
		errs:    []error{rejection, rejection},
	}
	svc := newService(t, mockLLM, mockGate)

	_, err := svc.Generate(context.Background(), &datatypes.GenerateRequest{
		Prompt: "Draft submissions.",
		Mode:   datatypes.ModeStrict,
	})

	require.Error(t, err)
	assert.True(t, gate.IsStrictRejection(err))
	assert.Len(t, mockLLM.prompts, 2, "exactly one regeneration")
}

func TestGenerateLLMFailure(t *testing.T) {
	mockLLM := &scriptedLLM{err: errors.New("backend down")}
	mockGate := &scriptedGate{}
	svc := newService(t, mockLLM, mockGate)

	_, err := svc.Generate(context.Background(), &datatypes.GenerateRequest{
		Prompt: "Draft a deed.",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "drafting failed")
	assert.Equal(t, 0, mockGate.calls)
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	svc := newService(t, &scriptedLLM{drafts: []string{"x"}}, &scriptedGate{})

	_, err := svc.Generate(context.Background(), &datatypes.GenerateRequest{})
	assert.Error(t, err)
}

// blockingFilter rejects every prompt.
type blockingFilter struct {
	extensions.NopDocumentFilter
}

func (f *blockingFilter) FilterPrompt(_ context.Context, prompt string) (*extensions.FilterResult, error) {
	return &extensions.FilterResult{
		Original:    prompt,
		WasBlocked:  true,
		BlockReason: "prompt contains privileged material",
	}, nil
}

func TestGenerateBlockedPrompt(t *testing.T) {
	mockLLM := &scriptedLLM{drafts: []string{"x"}}
	opts := extensions.DefaultOptions().WithFilter(&blockingFilter{})
	svc, err := NewDocumentService(mockLLM, &scriptedGate{}, opts, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), &datatypes.GenerateRequest{
		Prompt: "Summarize the client file.",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, extensions.ErrDocumentBlocked)
	assert.Empty(t, mockLLM.prompts, "blocked prompts must not reach the model")
}

func TestVerifyReturnsGateDecision(t *testing.T) {
	mockGate := &scriptedGate{
		results: []*gate.Result{{
			Status: gate.StatusAcceptedWithWarnings,
			Text:   "cleaned text",
			Outcome: &datatypes.VerificationOutcome{
				Issues: []string{`removed unverifiable citation "[2015] HCA 99"`},
			},
		}},
	}
	svc := newService(t, nil, mockGate)

	resp, err := svc.Verify(context.Background(), &datatypes.VerifyRequest{
		Text: "some document text",
	})

	require.NoError(t, err)
	assert.Equal(t, string(gate.StatusAcceptedWithWarnings), resp.Status)
	assert.Equal(t, "cleaned text", resp.Text)
	assert.Len(t, resp.Outcome.Issues, 1)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.CheckedAt.IsZero())
}

func TestVerifyRejectsEmptyText(t *testing.T) {
	svc := newService(t, nil, &scriptedGate{})

	_, err := svc.Verify(context.Background(), &datatypes.VerifyRequest{})
	assert.Error(t, err)
}
