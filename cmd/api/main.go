package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	httpHandler "chainlist-rpcs/internal/adapter/handler/http"
	"chainlist-rpcs/internal/adapter/metrics"
	"chainlist-rpcs/internal/adapter/rpc"
	"chainlist-rpcs/internal/adapter/storage/chainlist"
	"chainlist-rpcs/internal/adapter/storage/memory"
	"chainlist-rpcs/internal/application"
	"chainlist-rpcs/internal/config"
	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"
	"chainlist-rpcs/internal/logger"
)

func main() {
	// --- Configuration ---
	cfgPath := "configs"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// --- Logger ---
	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.Any("config", cfg.Logger))

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Dependency Injection (Manual) ---
	appLogger.Info("Initializing dependencies...")

	chainRepo := chainlist.NewRepository(cfg.Chainlist, appLogger)
	cacheRepo := memory.NewCacheRepository(*cfg, appLogger)
	recorder := metrics.NewRecorder()

	aggregator := application.NewAggregator(
		map[entity.Transport]domainService.TransportProber{
			entity.TransportHTTP:      rpc.NewHTTPProber(appLogger),
			entity.TransportWebSocket: rpc.NewWSProber(appLogger),
		},
		rpc.NewNormalizer(),
		appLogger,
		application.WithMaxConcurrency(cfg.Checker.MaxConcurrency),
		application.WithRecorder(recorder),
	)

	chainService := application.NewChainService(rootCtx, chainRepo, cacheRepo, aggregator, appLogger, *cfg)
	chainHandler := httpHandler.NewChainHandler(chainService, appLogger)

	// --- HTTP Router & Server ---
	r := httpHandler.NewRouter(chainHandler, recorder.Handler())
	server := &fasthttp.Server{
		Handler: httpHandler.Chain(r.Handler,
			httpHandler.RequestID,
			httpHandler.Logging(appLogger),
		),
		Name: cfg.App.Name,
	}

	serverAddr := ":" + cfg.Server.Port
	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", serverAddr))
		serverErr <- server.ListenAndServe(serverAddr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	case <-rootCtx.Done():
		appLogger.Info("Shutdown signal received, stopping HTTP server")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
		return
	}
	appLogger.Info("HTTP server stopped")
}
