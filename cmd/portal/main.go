package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/store-portal-bfa-go/internal/config"
	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/handler"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/cache"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/client"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/kv"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_url", cfg.BackendURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("workspace_ttl", cfg.WorkspaceTTL),
		zap.Int("read_max_retries", cfg.ReadMaxRetries),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("send_employee_id", cfg.SendEmployeeID),
	)
	if cfg.UsesDefaultSessionSecret() {
		logger.Warn("SESSION_SECRET not set: signing sessions with the built-in development secret, set it before deploying")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "store-portal-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Durable store ---
	var store port.KVStore
	if cfg.RedisAddr != "" {
		redisStore := kv.NewRedis(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB, "portal:")
		defer redisStore.Close()
		store = redisStore
		logger.Info("durable store: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		store = kv.NewMemory()
		logger.Warn("durable store: in-memory, sessions will not survive a restart")
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.ReadMaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.UploadMaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("store-backend", client.IsBreakerSuccess, logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backend := client.NewBackendClient(httpClient, cfg.BackendURL, cb, resilienceCfg, metrics, logger)

	// --- Session ---
	sessions := session.NewManager(store, session.Options{
		Secret:        []byte(cfg.SessionSecret),
		TTL:           cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	}, metrics, logger)

	workspaces := service.NewWorkspaces(cfg.WorkspaceTTL)
	defer workspaces.Close()

	// --- Services ---
	catalogCache := cache.New[[]domain.ProductService](cfg.CacheTTL)
	defer catalogCache.Close()
	catalog := service.NewCatalogService(backend, catalogCache, metrics, logger)

	svcs := &handler.Services{
		Auth:      service.NewAuthService(backend, cfg.LandingPath, metrics, logger),
		Catalog:   catalog,
		Intake:    service.NewIntakeService(backend, backend, catalog, cfg.SendEmployeeID, metrics, logger),
		Directory: service.NewDirectoryService(backend, metrics, logger),
		Customer:  service.NewCustomerService(backend, backend, catalog, metrics, logger),
		Dashboard: service.NewDashboardService(backend, metrics, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, handler.RouterConfig{
		Sessions:   sessions,
		Workspaces: workspaces,
		Edge: handler.EdgeConfig{
			ProtectedPrefix: cfg.ProtectedPrefix,
			LoginPath:       cfg.LoginPath,
			LandingPath:     cfg.LandingPath,
		},
		PublicLandingPath: cfg.PublicLandingPath,
		SecureCookies:     cfg.SecureCookies,
	}, metrics, logger)

	// --- Server ---
	// No write timeout: backend calls are fire-and-wait without a client-side deadline.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
