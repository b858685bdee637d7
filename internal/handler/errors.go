package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/corpdir/api/internal/middleware"
	"github.com/corpdir/api/internal/pipeline"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// NotFoundMessage is the body message for unknown routes
const NotFoundMessage = "Page not found"

// NotFoundBody is written for unknown routes
type NotFoundBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorHandlerConfig configures ErrorHandler
type ErrorHandlerConfig struct {
	Classifier *pipeline.Classifier
	Logger     *zap.Logger
	// Sentry reports server failures to Sentry
	Sentry bool
}

// ErrorHandler returns the Fiber error handler. Operation failures are
// classified into a status and an ErrorEnvelope; Fiber's own errors keep
// their status. Each failure is logged once, with its stack the first time
// the failure is seen.
func ErrorHandler(cfg ErrorHandlerConfig) fiber.ErrorHandler {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = pipeline.NewClassifier(1)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		if fe, ok := isFiberError(err); ok {
			if fe.Code == fiber.StatusNotFound {
				return c.Status(fiber.StatusNotFound).JSON(NotFoundBody{
					Code:    fiber.StatusNotFound,
					Message: NotFoundMessage,
				})
			}
			return c.Status(fe.Code).JSON(pipeline.ErrorEnvelope{Message: fe.Message})
		}

		status, envelope := classifier.Classify(err)

		fields := []zap.Field{
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("kind", pipeline.Kind(err)),
			zap.Error(err),
		}
		if apperrors.MarkCaptured(err) {
			fields = append(fields, zap.Stack("stack"))
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", fields...)
			if cfg.Sentry {
				middleware.CaptureError(c, err)
			}
		} else {
			log.Debug("request failed", fields...)
		}

		return c.Status(status).JSON(envelope)
	}
}
