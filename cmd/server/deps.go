package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/corpdir/api/internal/config"
	"github.com/corpdir/api/internal/handler"
	"github.com/corpdir/api/internal/middleware"
	"github.com/corpdir/api/internal/pipeline"
	"github.com/corpdir/api/internal/pkg/database"
	"github.com/corpdir/api/internal/pkg/metrics"
	pgrepo "github.com/corpdir/api/internal/repository/postgres"
	"github.com/corpdir/api/internal/service"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Database connections
	Postgres *database.PostgresDB
	Redis    *database.RedisDB

	// Repositories
	CompanyRepo *pgrepo.CompanyRepository
	UserRepo    *pgrepo.UserRepository

	// Services
	AuthService    *service.AuthService
	CompanyService *service.CompanyService
	UserService    *service.UserService

	// HTTP
	Controllers handler.Handlers
	Health      *handler.HealthHandler
	Auth        *middleware.AuthMiddleware
	RateLimit   *middleware.RateLimitMiddleware
}

// initDependencies initializes all dependencies
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres, logger.Named("postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	deps.Postgres = pgDB

	checks := map[string]handler.Pinger{"postgres": pgDB}

	if cfg.Redis.Enabled() {
		redisDB, err := database.NewRedis(ctx, cfg.Redis, logger.Named("redis"))
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		deps.Redis = redisDB
		checks["redis"] = redisDB
	}

	// Repositories
	deps.CompanyRepo = pgrepo.NewCompanyRepository(pgDB, logger)
	deps.UserRepo = pgrepo.NewUserRepository(pgDB)

	// Services
	tracer := pipeline.NewTracer(logger, pipeline.TracerConfig{
		Verbosity:      cfg.Trace.Verbosity,
		RedactFields:   cfg.Trace.RedactFields,
		ArrayThreshold: cfg.Trace.ArrayThreshold,
	})
	builder := pipeline.NewBuilder(tracer, metrics.OperationRecorder("api"))
	signer := service.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	deps.AuthService = service.NewAuthService(deps.UserRepo, signer, builder)
	deps.CompanyService = service.NewCompanyService(deps.CompanyRepo, builder)
	deps.UserService = service.NewUserService(deps.UserRepo, deps.CompanyRepo, builder)

	// Controllers
	deps.Controllers, err = handler.Bind(
		handler.NewAuthController(deps.AuthService).Registrations(),
		handler.NewCompanyController(deps.CompanyService).Registrations(),
		handler.NewUserController(deps.UserService).Registrations(),
	)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to bind controllers: %w", err)
	}

	deps.Health = handler.NewHealthHandler(checks, appVersion)
	deps.Auth = middleware.NewAuthMiddleware(deps.AuthService)

	if cfg.RateLimit.Enabled && deps.Redis != nil {
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.Max = cfg.RateLimit.RequestsPerMinute
		rateCfg.Logger = logger
		deps.RateLimit = middleware.NewRateLimitMiddleware(deps.Redis.Client, rateCfg)
	} else if cfg.RateLimit.Enabled {
		logger.Warn("rate limiting requires Redis, disabled")
	}

	return deps, nil
}

// newApp builds the HTTP application from the dependencies
func (d *Dependencies) newApp(sentryEnabled bool) *fiber.App {
	cors := middleware.CORSConfigFor(d.Config.Server.CORSOrigins)
	return handler.NewApp(handler.AppConfig{
		Name:   "corpdir API",
		Logger: d.Logger,
		Errors: handler.ErrorHandlerConfig{
			Classifier: pipeline.NewClassifier(d.Config.Validation.StripDepth),
			Sentry:     sentryEnabled,
		},
		Controllers: d.Controllers,
		Auth:        d.Auth,
		Health:      d.Health,
		RateLimit:   d.RateLimit,
		Metrics:     adaptor.HTTPHandler(promhttp.Handler()),
		CORS:        &cors,
		Quiet:       d.Config.IsProduction(),
	})
}

// Close releases all connections
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("failed to close Redis", zap.Error(err))
		}
	}
	if d.Postgres != nil {
		d.Postgres.Close()
	}
}
