// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/veritaslaw/citegate/pkg/extensions"
	"github.com/veritaslaw/citegate/pkg/logging"
	"github.com/veritaslaw/citegate/services/llm"
	"github.com/veritaslaw/citegate/services/policy_engine"
	"github.com/veritaslaw/citegate/services/verifier/gate"
	"github.com/veritaslaw/citegate/services/verifier/observability"
	"github.com/veritaslaw/citegate/services/verifier/online"
	"github.com/veritaslaw/citegate/services/verifier/patterns"
	"github.com/veritaslaw/citegate/services/verifier/registry"
	"github.com/veritaslaw/citegate/services/verifier/routes"
	"github.com/veritaslaw/citegate/services/verifier/services"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "citegate-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("verifier-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// buildCache prefers the persistent badger store so verification results
// survive restarts; an unset directory falls back to the in-process cache.
func buildCache() online.Cache {
	cacheDir := os.Getenv("VERIFIER_CACHE_DIR")
	if cacheDir == "" {
		slog.Info("VERIFIER_CACHE_DIR not set, using in-memory verification cache")
		return online.NewMemoryCache()
	}
	store, err := online.OpenBadgerStore(cacheDir)
	if err != nil {
		slog.Error("Failed to open badger verification cache, falling back to memory",
			"dir", cacheDir, "error", err)
		return online.NewMemoryCache()
	}
	slog.Info("Opened persistent verification cache", "dir", cacheDir)
	return store
}

// buildLLMClient configures the drafting backend. A failed init is not
// fatal: the service still serves /v1/verify without one.
func buildLLMClient() llm.LLMClient {
	var client llm.LLMClient
	var err error
	switch backend := os.Getenv("LLM_BACKEND_TYPE"); backend {
	case "openai":
		client, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI drafting backend")
	case "anthropic":
		client, err = llm.NewAnthropicClient()
		slog.Info("Using Anthropic drafting backend")
	case "ollama", "":
		client, err = llm.NewOllamaClient()
		slog.Info("Using Ollama drafting backend")
	default:
		slog.Warn("Unknown LLM_BACKEND_TYPE, trying Ollama", "backend", backend)
		client, err = llm.NewOllamaClient()
	}
	if err != nil {
		slog.Warn("No drafting backend available, generation endpoint disabled", "error", err)
		return nil
	}
	return client
}

func main() {
	port := os.Getenv("VERIFIER_PORT")
	if port == "" {
		port = "12310"
	}

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "verifier",
		JSON:    true,
	})
	defer func() { _ = logger.Close() }()
	slog.SetDefault(logger.Slog())

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	reg, err := registry.Load()
	if err != nil {
		log.Fatalf("FATAL: could not load citation reference data: %v", err)
	}
	metrics := observability.InitMetrics()
	validator := patterns.NewValidator(reg)

	weaviateURL := os.Getenv("WEAVIATE_SERVICE_URL")
	if weaviateURL == "" {
		weaviateURL = "http://citegate-weaviate:8080"
		slog.Warn("WEAVIATE_SERVICE_URL not set, using default", "url", weaviateURL)
	}
	search, err := online.NewCaseSearchClient(online.CaseSearchConfig{URL: weaviateURL})
	if err != nil {
		log.Fatalf("FATAL: could not create case-law search client: %v", err)
	}

	cache := buildCache()
	defer func() {
		if err := cache.Close(); err != nil {
			slog.Error("Failed to close verification cache", "error", err)
		}
	}()

	opts := extensions.DefaultOptions()
	if os.Getenv("PRIVILEGE_SCREEN") != "off" {
		engine, err := policy_engine.NewPolicyEngine()
		if err != nil {
			log.Fatalf("FATAL: could not load the privilege screen rules: %v", err)
		}
		opts = opts.WithFilter(policy_engine.NewPrivilegeFilter(engine))
		slog.Info("Privilege screen enabled")
	}

	verifier, err := online.NewVerifier(online.Config{
		Registry:  reg,
		Validator: validator,
		Cache:     cache,
		Search:    search,
		Metrics:   metrics,
		Audit:     opts.AuditLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: could not create citation verifier: %v", err)
	}

	citationGate, err := gate.NewGate(gate.Config{
		Verifier:  verifier,
		Validator: validator,
		Metrics:   metrics,
		Audit:     opts.AuditLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: could not create citation gate: %v", err)
	}

	svc, err := services.NewDocumentService(buildLLMClient(), citationGate, opts, metrics)
	if err != nil {
		log.Fatalf("FATAL: could not create document service: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("verifier-service"))
	routes.SetupRoutes(router, svc, reg, cache)

	log.Println("Starting the verifier server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
