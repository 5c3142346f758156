// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
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
	"google.golang.org/grpc/credentials/insecure"

	"github.com/meridian-oss/aisearch/services/answer_cache"
	"github.com/meridian-oss/aisearch/services/generation"
	"github.com/meridian-oss/aisearch/services/query_filter"
	"github.com/meridian-oss/aisearch/services/search/handlers"
	"github.com/meridian-oss/aisearch/services/search/observability"
	"github.com/meridian-oss/aisearch/services/search/routes"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	// Get the collector URL from the env var set in the compose file
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aisearch-otel-collector:4317"
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
		resource.WithAttributes(semconv.ServiceNameKey.String("search-service")))
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

func main() {
	port := os.Getenv("AISEARCH_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	filter, err := query_filter.NewFilterEngine()
	if err != nil {
		log.Fatalf("FATAL: Could not initialize the Filter Engine %v", err)
	}

	cache, err := answer_cache.NewMemoryCache()
	if err != nil {
		log.Fatalf("FATAL: Could not initialize the Answer Cache %v", err)
	}

	chunkDelay := generation.DefaultChunkDelay
	if raw := os.Getenv("AISEARCH_CHUNK_DELAY"); raw != "" {
		parsed, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			slog.Warn("AISEARCH_CHUNK_DELAY is invalid, using default",
				"value", raw, "default", chunkDelay.String())
		} else {
			chunkDelay = parsed
		}
	}
	generator := generation.NewMockGenerator(chunkDelay)
	slog.Info("Using mock response generator", "chunk_delay", chunkDelay.String())

	uiDir := os.Getenv("AISEARCH_UI_DIR")
	if uiDir == "" {
		uiDir = "./ui"
	}

	searchHandler := handlers.NewSearchHandler(filter, cache, generator)

	router := gin.Default()
	router.Use(otelgin.Middleware("search-service"))

	routes.SetupRoutes(router, searchHandler, uiDir)

	log.Println("Starting the search server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
