// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/veritaslaw/citegate/services/verifier/datatypes"
	"github.com/veritaslaw/citegate/services/verifier/services"
)

// VerifyDocument creates the gin handler for POST /v1/verify.
//
// # Description
//
// Gates caller-supplied text. Verification always returns 200 with the gate
// status in the body; a rejected document is a valid verification outcome,
// not an HTTP error.
func VerifyDocument(svc *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "VerifyDocument.handler")
		defer span.End()

		var req datatypes.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		span.SetAttributes(attribute.String("request.mode", req.Mode))

		resp, err := svc.Verify(ctx, &req)
		if err != nil {
			if isValidationError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("Document verification failed", "error", err)
			span.RecordError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify document"})
			return
		}

		span.SetAttributes(attribute.String("gate.status", resp.Status))
		c.JSON(http.StatusOK, resp)
	}
}

// isValidationError reports whether the error came from request validation
// rather than a downstream failure.
func isValidationError(err error) bool {
	return strings.Contains(err.Error(), "invalid verify request") ||
		strings.Contains(err.Error(), "invalid generate request")
}
