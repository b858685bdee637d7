package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxRequestIDLength bounds the inbound request ID that is echoed and logged
const maxRequestIDLength = 128

// RequestIDConfig configures the request ID middleware
type RequestIDConfig struct {
	Header    string
	Generator func() string
}

// DefaultRequestIDConfig returns default request ID config
func DefaultRequestIDConfig() RequestIDConfig {
	return RequestIDConfig{
		Header:    fiber.HeaderXRequestID,
		Generator: func() string { return uuid.NewString() },
	}
}

// RequestID reuses the caller's request ID when it is usable and otherwise
// generates one. The ID is echoed in the response and stored in locals for
// the logger, the error handler and the call tracer.
func RequestID(config ...RequestIDConfig) fiber.Handler {
	cfg := DefaultRequestIDConfig()
	if len(config) > 0 {
		if config[0].Header != "" {
			cfg.Header = config[0].Header
		}
		if config[0].Generator != nil {
			cfg.Generator = config[0].Generator
		}
	}

	return func(c *fiber.Ctx) error {
		requestID := c.Get(cfg.Header)
		if !usableRequestID(requestID) {
			requestID = cfg.Generator()
		}

		c.Set(cfg.Header, requestID)
		c.Locals(string(ContextKeyRequestID), requestID)

		return c.Next()
	}
}

// usableRequestID accepts short printable ASCII values
func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID gets the request ID from context
func GetRequestID(c *fiber.Ctx) string {
	if requestID, ok := c.Locals(string(ContextKeyRequestID)).(string); ok {
		return requestID
	}
	return ""
}
