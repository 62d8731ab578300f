// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers provides HTTP request handlers for the verifier service.
//
// Handlers translate between gin and the DocumentService; no gating or
// verification logic lives here.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/gate"
	"github.com/veritaslaw/citegate/services/verifier/services"
)

var tracer = otel.Tracer("citegate.verifier.handlers")

// GenerateDocument creates the gin handler for POST /v1/documents/generate.
//
// # Description
//
// Drafts a document under the requested citation policy. A strict-mode
// rejection that survives the single regeneration is returned as 422 with
// the blocking citations bucketed by failure class; the caller decides
// whether to retry with a different prompt.
func GenerateDocument(svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "GenerateDocument.handler")
		defer span.End()

		var req datatypes.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		span.SetAttributes(attribute.String("request.mode", req.Mode))

		resp, err := svc.Generate(ctx, &req)
		if err != nil {
			writeGenerateError(c, &req, err)
			return
		}

		span.SetAttributes(attribute.Bool("document.regenerated", resp.Regenerated))
		c.JSON(http.StatusOK, resp)
	}
}

// writeGenerateError maps pipeline errors onto HTTP statuses.
func writeGenerateError(c *gin.Context, req *datatypes.GenerateRequest, err error) {
	var rej *gate.StrictRejectionError
	switch {
	case errors.As(err, &rej):
		slog.Info("Document rejected after regeneration",
			"request_id", req.RequestID,
			"format_errors", len(rej.FormatErrors),
			"existence_errors", len(rej.ExistenceErrors),
			"verification_errors", len(rej.VerificationErrors))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":               "document rejected: citations could not be verified",
			"request_id":          req.RequestID,
			"format_errors":       rej.FormatErrors,
			"existence_errors":    rej.ExistenceErrors,
			"verification_errors": rej.VerificationErrors,
		})
	case errors.Is(err, extensions.ErrDocumentBlocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      err.Error(),
			"request_id": req.RequestID,
		})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Document generation failed", "request_id", req.RequestID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "document generation failed",
			"request_id": req.RequestID,
		})
	}
}
