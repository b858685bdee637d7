package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSConfig configures the CORS middleware
type CORSConfig struct {
	// AllowOrigins lists allowed origins; "*" allows any and
	// "https://*.example.com" allows subdomains
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds
	MaxAge int
}

// DefaultCORSConfig allows any origin without credentials
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodOptions,
			fiber.MethodHead,
		},
		AllowHeaders: []string{
			fiber.HeaderOrigin,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			fiber.HeaderAuthorization,
			fiber.HeaderXRequestID,
		},
		ExposeHeaders: []string{
			fiber.HeaderXRequestID,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},
		MaxAge: 86400,
	}
}

// CORSConfigFor returns the default config restricted to origins. Explicit
// origins may send credentials; an empty list keeps the wildcard.
func CORSConfigFor(origins []string) CORSConfig {
	config := DefaultCORSConfig()
	if len(origins) > 0 {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return config
}

// CORSMiddleware adapts CORSConfig to fiber's cors middleware
type CORSMiddleware struct {
	config CORSConfig
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{config: config}
}

// Handler returns the CORS handler. Credentials are never combined with a
// wildcard origin.
func (m *CORSMiddleware) Handler() fiber.Handler {
	origins := strings.Join(m.config.AllowOrigins, ",")
	if origins == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     strings.Join(m.config.AllowMethods, ","),
		AllowHeaders:     strings.Join(m.config.AllowHeaders, ","),
		ExposeHeaders:    strings.Join(m.config.ExposeHeaders, ","),
		AllowCredentials: m.config.AllowCredentials && origins != "*",
		MaxAge:           m.config.MaxAge,
	})
}
