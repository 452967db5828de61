package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"diario/internal/backend"
	"diario/internal/cache"
	"diario/internal/cli"
	"diario/internal/core"
	apphttp "diario/internal/http"
	"diario/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(context.Background(), backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	chartCache := cache.NewLRUCache[core.ChartSeries](cfg.ChartCacheSize, cfg.ChartCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(chartCache)
	cacheManager.StartCleanup(10 * time.Minute)

	journal := services.NewJournalService(result.Store)
	charts := services.NewChartService(result.Store, chartCache)

	srv := apphttp.NewServer(":"+cfg.Port, journal, charts, cfg.RateLimitPerMinute, cacheManager)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting diario server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
