// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veritaslaw/citegate/services/verifier/handlers"
	"github.com/veritaslaw/citegate/services/verifier/online"
	"github.com/veritaslaw/citegate/services/verifier/registry"
	"github.com/veritaslaw/citegate/services/verifier/services"
)

// SetupRoutes registers the verifier HTTP surface on the router.
func SetupRoutes(
	router *gin.Engine,
	svc *services.DocumentService,
	reg *registry.Registry,
	cache online.Cache,
) {
	router.GET("/health", handlers.HealthCheck(reg, cache))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/verify", handlers.VerifyDocument(svc))
		v1.POST("/documents/generate", handlers.GenerateDocument(svc))
	}
}
