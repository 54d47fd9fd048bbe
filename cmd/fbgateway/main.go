package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"firebasebindings/internal/app"
	"firebasebindings/internal/binding"
	"firebasebindings/internal/cache"
	"firebasebindings/internal/config"
	"firebasebindings/internal/handlers"
	"firebasebindings/internal/logging"
	"firebasebindings/internal/metrics"
	"firebasebindings/pkg/concurrency"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to configuration file")
		envPrefix  = flag.String("env-prefix", config.DefaultEnvPrefix, "Environment variable prefix")
	)
	flag.Parse()

	// Load main configuration
	configLoader := config.NewLoader(*configFile, *envPrefix)
	mainConfig, err := configLoader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration loading failed: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(mainConfig.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Info("shutting down")

	logger.Info("starting fbgateway", "version", "0.1.0")

	collector := metrics.NewMetrics(mainConfig.Metrics)

	ctx := context.Background()

	// Redis with memory fallback
	cacheInstance := cache.NewCache(ctx, mainConfig.Cache, logger)
	defer cacheInstance.Close()

	registry := app.NewRegistry(logger, collector)
	fbApp, err := registry.Initialize(ctx, app.OptionsFromLoader(configLoader.ConfigLoader()), "")
	if err != nil {
		logger.Error("failed to initialize firebase app", "error", err)
		os.Exit(1)
	}

	services := buildServices(ctx, fbApp, mainConfig.Analytics, cacheInstance, logger)
	server := handlers.NewServer(mainConfig, handlers.NewHandlers(services, logger, collector), collector.Handler(), logger, collector)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
	case sig := <-interrupt:
		logger.Info("received interrupt signal", "signal", sig)
	}

	logger.Info("starting graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), mainConfig.Server.ShutdownTimeout)
	defer shutdownCancel()

	shutdownComplete := make(chan error, 1)
	go func() {
		shutdownComplete <- server.Stop(shutdownCtx)
	}()

	select {
	case err := <-shutdownComplete:
		if err != nil {
			logger.Error("shutdown failed", "error", err)
		} else {
			logger.Info("shutdown complete")
		}
	case <-shutdownCtx.Done():
		logger.Error("shutdown timeout exceeded, forcing exit")
	}
}

// buildServices wires the modules the app options allow. A module that
// cannot start is left out and its routes report unavailable.
func buildServices(ctx context.Context, fbApp *app.App, analyticsConfig binding.AnalyticsConfig, cacheInstance binding.Cache, logger binding.Logger) handlers.Services {
	services := handlers.Services{Cache: cacheInstance}

	if authClient, err := fbApp.Auth(ctx, cacheInstance, concurrency.NewKeyedMutex()); err != nil {
		logger.Warn("auth module disabled", "error", err)
	} else {
		services.Auth = authClient
	}

	if fbApp.Options().DatabaseURL != "" {
		if db, err := fbApp.Database(ctx, ""); err != nil {
			logger.Warn("database module disabled", "error", err)
		} else {
			services.Database = db
		}
	}

	if fbApp.Options().MeasurementID != "" {
		if events, err := fbApp.Analytics(analyticsConfig); err != nil {
			logger.Warn("analytics module disabled", "error", err)
		} else {
			services.Analytics = events
		}
	}

	return services
}
