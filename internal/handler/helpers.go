package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/pipeline"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Handlers maps registration names to bound route handlers.
type Handlers map[string]fiber.Handler

// Get returns the handler registered as name. It panics on unknown names so
// routing mistakes surface at startup.
func (h Handlers) Get(name string) fiber.Handler {
	handler, ok := h[name]
	if !ok {
		panic(fmt.Sprintf("handler: no controller registered as %q", name))
	}
	return handler
}

// Bind adapts every registration with pipeline.AutoAdapt and turns the
// result into Fiber handlers. Adapted controllers receive the request
// context as their only argument and are awaited until they finish.
func Bind(regs ...[]pipeline.Registration) (Handlers, error) {
	out := make(Handlers)
	for _, group := range regs {
		for _, reg := range pipeline.AutoAdapt(group) {
			if _, exists := out[reg.Name]; exists {
				return nil, fmt.Errorf("duplicate controller %q", reg.Name)
			}
			switch op := reg.Op.(type) {
			case pipeline.AsyncOperation:
				out[reg.Name] = bindAsync(op)
			case fiber.Handler:
				out[reg.Name] = op
			default:
				return nil, fmt.Errorf("controller %q has unsupported type %T", reg.Name, reg.Op)
			}
		}
	}
	return out, nil
}

func bindAsync(op pipeline.AsyncOperation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := op(c.UserContext(), c).Wait()
		return err
	}
}

// fiberCtx returns the request context a bound controller was called with
func fiberCtx(args pipeline.Args) (*fiber.Ctx, error) {
	if len(args) > 0 {
		if c, ok := args[0].(*fiber.Ctx); ok {
			return c, nil
		}
	}
	return nil, apperrors.Internal("controller called without a request context")
}

// bodyPayload decodes the JSON body into a generic map so the operation
// schema sees the raw values. An empty body yields nil.
func bodyPayload(c *fiber.Ctx) (any, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, nil
	}

	var payload any
	if err := c.App().Config().JSONDecoder(body, &payload); err != nil {
		return nil, apperrors.BadRequest("Invalid request body")
	}
	return payload, nil
}

// queryPayload returns the query string as a map
func queryPayload(c *fiber.Ctx) map[string]any {
	queries := c.Queries()
	out := make(map[string]any, len(queries))
	for k, v := range queries {
		out[k] = v
	}
	return out
}

// respond writes result with status
func respond(c *fiber.Ctx, status int, result any) (any, error) {
	if status == fiber.StatusNoContent {
		return nil, c.SendStatus(status)
	}
	return nil, c.Status(status).JSON(result)
}

func isFiberError(err error) (*fiber.Error, bool) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
