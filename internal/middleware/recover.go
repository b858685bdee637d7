package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

const sentryHubKey = "sentry_hub"

// SentryConfig holds Sentry-specific configuration
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	Debug            bool
	SampleRate       float64
	TracesSampleRate float64
	FlushTimeout     time.Duration
}

// DefaultSentryConfig returns default Sentry configuration
func DefaultSentryConfig() SentryConfig {
	return SentryConfig{
		Environment:      "development",
		SampleRate:       1.0,
		TracesSampleRate: 0.1,
		FlushTimeout:     5 * time.Second,
	}
}

// InitSentry initializes the Sentry SDK. It reports whether Sentry is
// enabled.
func InitSentry(config SentryConfig) (bool, error) {
	if config.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		Debug:            config.Debug,
		SampleRate:       config.SampleRate,
		TracesSampleRate: config.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return true, nil
}

// FlushSentry flushes any buffered events to Sentry
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

// RecoverConfig configures the recover middleware
type RecoverConfig struct {
	// Logger instance
	Logger *zap.Logger
	// StackSize limits the logged stack trace size
	StackSize int
	// SentryEnabled reports panics to Sentry
	SentryEnabled bool
}

// DefaultRecoverConfig returns default recover config
func DefaultRecoverConfig(logger *zap.Logger) RecoverConfig {
	return RecoverConfig{
		Logger:    logger,
		StackSize: 4 << 10, // 4 KB
	}
}

// RecoverMiddleware creates a panic recovery middleware
type RecoverMiddleware struct {
	config RecoverConfig
}

// NewRecoverMiddleware creates a new recover middleware
func NewRecoverMiddleware(config RecoverConfig) *RecoverMiddleware {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &RecoverMiddleware{
		config: config,
	}
}

// Handler returns the recover handler. A panic is turned into an internal
// error for the app ErrorHandler.
func (m *RecoverMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		var hub *sentry.Hub
		if m.config.SentryEnabled {
			hub = sentry.CurrentHub().Clone()
			setSentryRequestContext(hub, c)
			hub.Scope().SetTag("request_id", GetRequestID(c))
			c.Locals(sentryHubKey, hub)
		}

		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			if m.config.StackSize > 0 && len(stack) > m.config.StackSize {
				stack = stack[:m.config.StackSize]
			}

			m.config.Logger.Error("panic recovered",
				zap.Any("panic", r),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("stack", string(stack)),
				zap.String("request_id", GetRequestID(c)),
			)

			if hub != nil {
				hub.Scope().SetLevel(sentry.LevelFatal)
				if eventID := hub.RecoverWithContext(c.UserContext(), r); eventID != nil {
					m.config.Logger.Info("panic reported to Sentry",
						zap.String("event_id", string(*eventID)),
					)
				}
			}

			appErr := apperrors.Internal(fmt.Sprintf("panic: %v", r))
			apperrors.MarkCaptured(appErr)
			err = appErr
		}()

		return c.Next()
	}
}

// CaptureError reports an error to Sentry from a Fiber context
func CaptureError(c *fiber.Ctx, err error) {
	hub, ok := c.Locals(sentryHubKey).(*sentry.Hub)
	if !ok || hub == nil {
		hub = sentry.CurrentHub().Clone()
		setSentryRequestContext(hub, c)
	}

	hub.Scope().SetTag("request_id", GetRequestID(c))
	hub.CaptureException(err)
}

// setSentryRequestContext sets request context on a Sentry hub from Fiber context
func setSentryRequestContext(hub *sentry.Hub, c *fiber.Ctx) {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if k != fiber.HeaderAuthorization && k != fiber.HeaderCookie {
			headers[k] = string(value)
		}
	})

	hub.Scope().SetContext("Request", map[string]interface{}{
		"url":          c.OriginalURL(),
		"method":       c.Method(),
		"headers":      headers,
		"query_string": string(c.Request().URI().QueryString()),
		"remote_addr":  c.IP(),
	})
}
