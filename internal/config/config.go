package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
	Trace      TraceConfig      `mapstructure:"trace"`
	Validation ValidationConfig `mapstructure:"validation"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
	Env  string `mapstructure:"env" validate:"oneof=development test production"`
	// CORSOrigins restricts cross-origin callers; empty allows any origin
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" validate:"required"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns" validate:"min=1"`
	MinConns int32  `mapstructure:"min_conns" validate:"min=0"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.User, c.Password, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis host is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string        `mapstructure:"secret" validate:"required"`
	ExpiryHours int           `mapstructure:"expiry_hours" validate:"min=1"`
	Issuer      string        `mapstructure:"issuer"`
	Expiry      time.Duration `mapstructure:"-"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" validate:"min=1"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// TraceConfig controls operation call tracing
type TraceConfig struct {
	// Verbosity enables tracing when set to "debug". Defaults to the log level.
	Verbosity      string   `mapstructure:"verbosity"`
	RedactFields   []string `mapstructure:"redact_fields"`
	ArrayThreshold int      `mapstructure:"array_threshold" validate:"min=1"`
}

// ValidationConfig controls how validation failures are reported
type ValidationConfig struct {
	// StripDepth is the number of leading path segments removed from
	// reported field paths.
	StripDepth int `mapstructure:"strip_depth" validate:"min=0"`
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate" validate:"min=0,max=1"`
}

// SeedConfig holds the accounts created by initdb
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	UserUsername  string `mapstructure:"user_username"`
	UserPassword  string `mapstructure:"user_password"`
	CompanyName   string `mapstructure:"company_name"`
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
