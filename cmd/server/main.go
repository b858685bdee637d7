package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/corpdir/api/internal/config"
	"github.com/corpdir/api/internal/middleware"
	"github.com/corpdir/api/internal/pkg/logger"
)

const appVersion = "0.1.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize Sentry if configured
	sentryConfig := middleware.DefaultSentryConfig()
	sentryConfig.DSN = cfg.Sentry.DSN
	sentryConfig.Environment = cfg.Sentry.Environment
	sentryConfig.TracesSampleRate = cfg.Sentry.TracesSampleRate
	sentryConfig.Release = "corpdir@" + appVersion

	sentryEnabled, err := middleware.InitSentry(sentryConfig)
	if err != nil {
		log.Error("failed to initialize Sentry", zap.Error(err))
	}
	if sentryEnabled {
		log.Info("Sentry initialized",
			zap.String("environment", sentryConfig.Environment),
			zap.String("release", sentryConfig.Release),
		)
		defer middleware.FlushSentry(sentryConfig.FlushTimeout)
	}

	// Initialize dependencies
	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := initDependencies(ctx, cfg, log)
	cancelInit()
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	app := deps.newApp(sentryEnabled)

	// Start server
	go func() {
		addr := cfg.Server.Addr()
		log.Info("starting server", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}
