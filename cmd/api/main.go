// Package main is the entry point for the gateway server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/snowskye/lead-gateway/internal/background"
	"github.com/snowskye/lead-gateway/internal/cache"
	"github.com/snowskye/lead-gateway/internal/capture"
	"github.com/snowskye/lead-gateway/internal/config"
	"github.com/snowskye/lead-gateway/internal/handler"
	"github.com/snowskye/lead-gateway/internal/llm"
	"github.com/snowskye/lead-gateway/internal/middleware"
	natsclient "github.com/snowskye/lead-gateway/internal/nats"
	"github.com/snowskye/lead-gateway/internal/notify"
	"github.com/snowskye/lead-gateway/internal/ratelimit"
	"github.com/snowskye/lead-gateway/internal/service"
	"github.com/snowskye/lead-gateway/internal/store"
	"github.com/snowskye/lead-gateway/internal/tenant"
	"github.com/snowskye/lead-gateway/internal/writer"
	"github.com/snowskye/lead-gateway/pkg/logger"
	"github.com/snowskye/lead-gateway/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting gateway server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "lead-gateway", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	// Ensure the records stream exists
	recordStore := store.NewNATS(natsClient)
	if err := recordStore.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure records stream", zap.Error(err))
		os.Exit(1)
	}

	// Tenant registry over the KV bucket
	tenantStore, err := tenant.NewNATSStore(ctx, natsClient)
	if err != nil {
		log.Error("failed to open tenant store", zap.Error(err))
		os.Exit(1)
	}
	registry := tenant.NewRegistry(tenantStore, tenant.DefaultCacheTTL)

	// Generation client
	var generator llm.Client
	provider := llm.Provider(cfg.GenerationProvider)
	apiKey := cfg.OpenAIAPIKey
	if provider == llm.ProviderAnthropic {
		apiKey = cfg.AnthropicAPIKey
	}
	if apiKey != "" {
		generator, err = llm.NewClient(provider, apiKey)
		if err != nil {
			log.Warn("failed to create generation client, generation disabled", zap.Error(err))
			generator = nil
		}
	}
	if generator == nil {
		log.Warn("no generation API key configured, serving fallback replies")
	}

	// Background side-effect pool and its consumers
	pool := background.NewPool(cfg.BackgroundWorkers, cfg.BackgroundQueue, log)
	defer pool.Close()

	recorder := writer.New(recordStore, pool)
	dispatcher := notify.NewNATS(natsClient, pool)

	// Gateway pipeline
	gateway := service.New(service.Deps{
		Tenants:   registry,
		Limiter:   ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow),
		Cache:     cache.New(cfg.CacheTTL, cfg.CacheMaxEntries),
		Capture:   capture.NewMachine(),
		History:   recordStore,
		Generator: generator,
		Recorder:  recorder,
		Notifier:  dispatcher,
		Logger:    log,
	}, service.Options{
		HistoryWindow:     cfg.HistoryWindow,
		GenerationTimeout: cfg.GenerationTimeout,
		GenerationModel:   cfg.GenerationModel,
	})

	// Handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	chatHandler := handler.NewChatHandler(gateway, log)
	leadHandler := handler.NewLeadHandler(gateway, log)
	tenantHandler := handler.NewTenantHandler(registry, recordStore, cfg.JWTSecret, cfg.JWTExpiration, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Public endpoints consumed by the embedded widget. API-key auth
	// happens in the pipeline; the IP limiter only guards against floods.
	r.Group(func(r chi.Router) {
		r.Use(middleware.IPRateLimit(cfg.IPRateLimitRequests, time.Minute))
		r.Post("/chat", chatHandler.Chat)
		r.Post("/lead", leadHandler.Submit)
	})

	// Dashboard API
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tenants", tenantHandler.Register)
		r.Post("/login", tenantHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Put("/tenants/me", tenantHandler.Update)
			r.Get("/leads", tenantHandler.ListLeads)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
