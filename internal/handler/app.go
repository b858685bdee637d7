package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/corpdir/api/internal/middleware"
)

// AppConfig collects what NewApp wires together
type AppConfig struct {
	Name   string
	Logger *zap.Logger

	Errors      ErrorHandlerConfig
	Controllers Handlers
	Auth        *middleware.AuthMiddleware
	Health      *HealthHandler

	// Optional middleware
	RateLimit *middleware.RateLimitMiddleware
	Metrics   fiber.Handler
	CORS      *middleware.CORSConfig

	// Quiet disables the startup banner
	Quiet bool
}

// NewApp builds the Fiber application serving the directory API
func NewApp(cfg AppConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Errors.Logger == nil {
		cfg.Errors.Logger = logger
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: cfg.Quiet,
		ErrorHandler:          ErrorHandler(cfg.Errors),
	})

	app.Use(middleware.RequestID())

	metricsConfig := middleware.DefaultMetricsConfig()
	app.Use(middleware.NewMetricsMiddleware(metricsConfig).Handler())

	app.Use(middleware.NewLoggerMiddleware(middleware.DefaultLoggerConfig(logger)).Handler())

	recoverConfig := middleware.DefaultRecoverConfig(logger)
	recoverConfig.SentryEnabled = cfg.Errors.Sentry
	app.Use(middleware.NewRecoverMiddleware(recoverConfig).Handler())

	corsConfig := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsConfig = *cfg.CORS
	}
	app.Use(middleware.NewCORSMiddleware(corsConfig).Handler())

	if cfg.RateLimit != nil {
		app.Use(cfg.RateLimit.Handler())
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(app)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	RegisterRoutes(app, cfg.Controllers, cfg.Auth)

	return app
}
