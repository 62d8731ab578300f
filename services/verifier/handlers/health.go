// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritaslaw/citegate/services/verifier/online"
	"github.com/veritaslaw/citegate/services/verifier/registry"
)

// HealthCheck creates the gin handler for GET /health. It reports the loaded
// reference-data counts and the verification cache size so operators can see
// at a glance that the registry embedded correctly.
func HealthCheck(reg *registry.Registry, cache online.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		courts, series, international := reg.Counts()
		body := gin.H{
			"status":              "ok",
			"courts":              courts,
			"report_series":       series,
			"international_codes": international,
		}
		if cache != nil {
			body["cached_verifications"] = cache.Len()
		}
		c.JSON(http.StatusOK, body)
	}
}
