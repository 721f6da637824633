// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package counsellor provides the core counsellor service for Prime Edutech.
//
// This package contains the main Service type that coordinates all
// components: HTTP routing, the BadgerDB store, the OpenAI client, the
// Weaviate knowledge index, and observability infrastructure.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := counsellor.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package counsellor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/primeedutech/counsellor/services/counsellor/config"
	"github.com/primeedutech/counsellor/services/counsellor/guardrail"
	"github.com/primeedutech/counsellor/services/counsellor/handlers"
	"github.com/primeedutech/counsellor/services/counsellor/ingest"
	"github.com/primeedutech/counsellor/services/counsellor/knowledge"
	"github.com/primeedutech/counsellor/services/counsellor/observability"
	"github.com/primeedutech/counsellor/services/counsellor/routes"
	"github.com/primeedutech/counsellor/services/counsellor/store"
	"github.com/primeedutech/counsellor/services/llm"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the counsellor service.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	//
	// # Limitations
	//
	//   - Should not be used to modify routes after construction
	Router() *gin.Engine
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Description
//
// service coordinates:
//   - HTTP routing via Gin
//   - Lead, conversation and knowledge records in BadgerDB
//   - The OpenAI chat and embedding clients
//   - Optional Weaviate knowledge retrieval
//   - OpenTelemetry tracing and Prometheus metrics
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New() returns.
type service struct {
	config         *config.Config
	router         *gin.Engine
	store          *store.Store
	llmClient      llm.LLMClient
	weaviateClient *weaviate.Client
	searcher       knowledge.Searcher
	indexer        knowledge.Indexer
	tracerCleanup  func(context.Context)
}

var _ Service = (*service)(nil)

// =============================================================================
// Constructor
// =============================================================================

// New creates a counsellor Service with the given configuration.
//
// # Description
//
// New initializes all service components:
//  1. Initializes OpenTelemetry tracing (when an OTLP endpoint is set)
//  2. Initializes Prometheus metrics
//  3. Opens the BadgerDB store
//  4. Creates the Weaviate index if a URL is configured, otherwise runs
//     in lightweight mode without retrieval
//  5. Creates the OpenAI chat client
//  6. Sets up HTTP routes
//
// # Inputs
//
//   - cfg: Loaded service configuration. Must not be nil.
//
// # Outputs
//
//   - Service: Ready-to-run counsellor service
//   - error: Non-nil if initialization fails
//
// # Assumptions
//
//   - The OpenAI API and, if configured, Weaviate and the OTel collector
//     are reachable
func New(cfg *config.Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	s := &service{config: cfg}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	observability.InitMetrics()

	s.store, err = store.Open(store.DefaultConfig(cfg.DataDir))
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := s.initKnowledge(); err != nil {
		slog.Warn("Weaviate initialization failed, running in lightweight mode",
			"error", err)
		s.searcher = &knowledge.NoopIndex{}
		s.indexer = &knowledge.NoopIndex{}
	}

	s.llmClient, err = llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.ChatModel,
	})
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
//
// # Outputs
//
//   - error: Non-nil if the server fails to start or encounters a fatal error
//
// # Limitations
//
//   - Blocks until the server stops
//   - Cleanup is automatic on return
func (s *service) Run() error {
	defer s.cleanup()

	slog.Info("Starting counsellor server", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// initTracer initializes OpenTelemetry distributed tracing.
//
// # Description
//
// Sets up an OTLP trace exporter to the configured collector. When no
// endpoint is configured, tracing stays on the global no-op provider.
//
// # Outputs
//
//   - func(context.Context): Cleanup function to call on shutdown
//   - error: Non-nil if tracer setup fails
//
// # Limitations
//
//   - Uses an insecure gRPC connection (appropriate for internal networks)
func (s *service) initTracer() (func(context.Context), error) {
	if s.config.OTLPEndpoint == "" {
		slog.Info("OTLP endpoint not configured, tracing disabled")
		return nil, nil
	}

	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("counsellor-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initKnowledge initializes the Weaviate client and knowledge index.
//
// # Description
//
// Creates a Weaviate-backed index when WeaviateURL is configured and
// ensures the KnowledgeChunk class exists. An unset URL is not an error;
// the caller falls back to lightweight mode.
func (s *service) initKnowledge() error {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		return fmt.Errorf("weaviate URL not configured")
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid Weaviate URL: %s", weaviateURL)
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}

	s.weaviateClient, err = weaviate.NewClient(clientConf)
	if err != nil {
		return fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	if err := knowledge.EnsureSchema(context.Background(), s.weaviateClient); err != nil {
		return fmt.Errorf("failed to ensure knowledge schema: %w", err)
	}

	embedder, err := knowledge.NewOpenAIEmbedder(knowledge.OpenAIEmbedderConfig{
		APIKey:     s.config.OpenAIAPIKey,
		Model:      s.config.EmbeddingModel,
		Dimensions: s.config.EmbeddingDimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	index := knowledge.NewWeaviateIndex(s.weaviateClient, embedder)
	s.searcher = index
	s.indexer = index

	slog.Info("Weaviate knowledge index initialized", "url", weaviateURL)
	return nil
}

// initRouter sets up the Gin HTTP router with all routes.
//
// # Assumptions
//
//   - Store, LLM client and index are initialized
func (s *service) initRouter() {
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("counsellor-service"))

	chat := handlers.NewChatHandler(
		s.store,
		s.store,
		s.searcher,
		s.llmClient,
		guardrail.DefaultPolicy(),
	)
	kb := handlers.NewKnowledgeHandler(s.store, s.indexer, ingest.NewURLFetcher(nil))

	routes.SetupRoutes(s.router, s.store, chat, kb, s.config.AdminToken)
}

// cleanup releases all resources held by the service.
//
// # Description
//
// Called when Run() exits or on initialization failure. Closes the store
// and shuts down the tracer.
func (s *service) cleanup() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("store close error", "error", err)
		}
	}

	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}
