package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/corpdir/api/internal/validator"
)

const defaultJWTSecret = "change-me-in-production"

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/corpdir")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")
	cfg.Server.CORSOrigins = splitList(v.GetString("server_cors_origins"))

	// PostgreSQL
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = v.GetInt32("postgres_max_conns")
	cfg.Postgres.MinConns = v.GetInt32("postgres_min_conns")

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// JWT
	cfg.JWT.Secret = v.GetString("jwt_secret")
	cfg.JWT.ExpiryHours = v.GetInt("jwt_expiry_hours")
	cfg.JWT.Issuer = v.GetString("jwt_issuer")
	cfg.JWT.Expiry = time.Duration(cfg.JWT.ExpiryHours) * time.Hour

	// Rate Limiting
	cfg.RateLimit.Enabled = v.GetBool("rate_limit_enabled")
	cfg.RateLimit.RequestsPerMinute = v.GetInt("rate_limit_requests_per_minute")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Tracing
	cfg.Trace.Verbosity = v.GetString("trace_verbosity")
	if cfg.Trace.Verbosity == "" {
		cfg.Trace.Verbosity = cfg.Log.Level
	}
	cfg.Trace.RedactFields = v.GetStringSlice("trace_redact_fields")
	cfg.Trace.ArrayThreshold = v.GetInt("trace_array_threshold")

	// Validation
	cfg.Validation.StripDepth = v.GetInt("validation_strip_depth")

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = cfg.Server.Env
	}
	cfg.Sentry.TracesSampleRate = v.GetFloat64("sentry_traces_sample_rate")

	// Seed
	cfg.Seed.AdminUsername = v.GetString("seed_admin_username")
	cfg.Seed.AdminPassword = v.GetString("seed_admin_password")
	cfg.Seed.UserUsername = v.GetString("seed_user_username")
	cfg.Seed.UserPassword = v.GetString("seed_user_password")
	cfg.Seed.CompanyName = v.GetString("seed_company_name")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 3000)
	v.SetDefault("server_env", "development")
	v.SetDefault("server_cors_origins", "")

	// PostgreSQL defaults
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "corpdir")
	v.SetDefault("postgres_password", "corpdir")
	v.SetDefault("postgres_db", "corpdir")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 25)
	v.SetDefault("postgres_min_conns", 5)

	// Redis defaults
	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// JWT defaults
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_expiry_hours", 24)
	v.SetDefault("jwt_issuer", "corpdir")

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("rate_limit_requests_per_minute", 600)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Tracing defaults
	v.SetDefault("trace_verbosity", "")
	v.SetDefault("trace_redact_fields", []string{"password", "token"})
	v.SetDefault("trace_array_threshold", 30)

	// Validation defaults
	v.SetDefault("validation_strip_depth", 1)

	// Sentry defaults
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("sentry_traces_sample_rate", 0.1)

	// Seed defaults
	v.SetDefault("seed_admin_username", "admin")
	v.SetDefault("seed_admin_password", "password")
	v.SetDefault("seed_user_username", "user")
	v.SetDefault("seed_user_password", "password")
	v.SetDefault("seed_company_name", "Topcoder")
}

func validate(cfg *Config) error {
	if err := validator.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.JWT.Secret == defaultJWTSecret && cfg.IsProduction() {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	return nil
}

// splitList parses a comma separated setting, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
