package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/pipeline"
	"github.com/corpdir/api/internal/service"
)

// Controller names exported by AuthController
const (
	AuthLogin = "auth.login"
)

// AuthController handles authentication endpoints
type AuthController struct {
	auth pipeline.Service
}

// NewAuthController creates a new auth controller
func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth.Service}
}

// Registrations lists the controllers of this module
func (h *AuthController) Registrations() []pipeline.Registration {
	return []pipeline.Registration{
		{Name: AuthLogin, Op: h.login},
	}
}

// login handles POST /login
func (h *AuthController) login(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	payload, err := bodyPayload(c)
	if err != nil {
		return nil, err
	}

	result, err := h.auth.Call(ctx, await, service.OpLogin, payload)
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, result)
}
