// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/services/llm"
	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/gate"
	"github.com/veritaslaw/citegate/services/verifier/online"
	"github.com/veritaslaw/citegate/services/verifier/registry"
	"github.com/veritaslaw/citegate/services/verifier/services"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

// acceptAllGate returns an accepted result for any document.
type acceptAllGate struct{}

func (g *acceptAllGate) Check(_ context.Context, text string, mode string) *gate.Result {
	return &gate.Result{
		Status:  gate.StatusAccepted,
		Mode:    mode,
		Text:    text,
		Outcome: &datatypes.VerificationOutcome{},
	}
}

func (g *acceptAllGate) Enforce(ctx context.Context, text string, mode string) (*gate.Result, error) {
	return g.Check(ctx, text, mode), nil
}

// rejectAllGate simulates a strict rejection for any document.
type rejectAllGate struct{}

func (g *rejectAllGate) Check(_ context.Context, _ string, mode string) *gate.Result {
	return &gate.Result{
		Status:  gate.StatusRejected,
		Mode:    mode,
		Outcome: &datatypes.VerificationOutcome{},
	}
}

func (g *rejectAllGate) Enforce(_ context.Context, _ string, _ string) (*gate.Result, error) {
	return nil, &gate.StrictRejectionError{
		ExistenceErrors: []string{`[2015] HCA 99 (no matching case found in the case-law index)`},
	}
}

// echoLLM is a drafting backend that always produces the same draft.
type echoLLM struct{}

func (e *echoLLM) Generate(_ context.Context, _ string, _ llm.GenerationParams) (string, error) {
	return "The draft text.", nil
}

func newTestRouter(t *testing.T, llmClient llm.LLMClient, g services.DocumentGate) *gin.Engine {
	t.Helper()
	reg, err := registry.Load()
	require.NoError(t, err)
	svc, err := services.NewDocumentService(llmClient, g, extensions.DefaultOptions(), nil)
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, svc, reg, online.NewMemoryCache())
	return router
}

// ============================================================================
// Route Registration
// ============================================================================

func TestSetupRoutes_RegistersCoreRoutes(t *testing.T) {
	router := newTestRouter(t, nil, &acceptAllGate{})

	coreRoutes := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"POST", "/v1/verify"},
		{"POST", "/v1/documents/generate"},
	}

	routes := router.Routes()
	for _, expected := range coreRoutes {
		found := false
		for _, r := range routes {
			if r.Method == expected.method && r.Path == expected.path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected route %s %s not found", expected.method, expected.path)
		}
	}
}

// ============================================================================
// Route Handler Tests
// ============================================================================

func TestSetupRoutes_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, &acceptAllGate{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"courts"`)
	assert.Contains(t, w.Body.String(), `"cached_verifications"`)
}

func TestVerifyEndpoint_Accepted(t *testing.T) {
	router := newTestRouter(t, nil, &acceptAllGate{})

	body := `{"text": "The duty of care was settled long ago."}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"accepted"`)
}

func TestVerifyEndpoint_MalformedJSON(t *testing.T) {
	router := newTestRouter(t, nil, &acceptAllGate{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/verify", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEndpoint_EmptyText(t *testing.T) {
	router := newTestRouter(t, nil, &acceptAllGate{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/verify", strings.NewReader(`{"text": ""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateEndpoint_Accepted(t *testing.T) {
	router := newTestRouter(t, &echoLLM{}, &acceptAllGate{})

	body := `{"prompt": "Draft a letter of demand."}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/documents/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"text":"The draft text."`)
}

func TestGenerateEndpoint_StrictRejection(t *testing.T) {
	router := newTestRouter(t, &echoLLM{}, &rejectAllGate{})

	body := `{"prompt": "Draft submissions.", "mode": "strict"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/documents/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"existence_errors"`)
	assert.Contains(t, w.Body.String(), "[2015] HCA 99")
}

func TestGenerateEndpoint_NoBackendConfigured(t *testing.T) {
	// The test service has no drafting backend, so generation fails upstream
	// of the gate and maps to 502.
	router := newTestRouter(t, nil, &acceptAllGate{})

	body := `{"prompt": "Draft a letter of demand."}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/documents/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
