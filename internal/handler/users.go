package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/pipeline"
	"github.com/corpdir/api/internal/service"
)

// Controller names exported by UserController
const (
	UserCreate = "user.create"
	UserSearch = "user.search"
	UserGet    = "user.get"
	UserUpdate = "user.update"
	UserRemove = "user.remove"
)

// UserController handles user endpoints
type UserController struct {
	users pipeline.Service
}

// NewUserController creates a new user controller
func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users.Service}
}

// Registrations lists the controllers of this module
func (h *UserController) Registrations() []pipeline.Registration {
	return []pipeline.Registration{
		{Name: UserCreate, Op: h.create},
		{Name: UserSearch, Op: h.search},
		{Name: UserGet, Op: h.get},
		{Name: UserUpdate, Op: h.update},
		{Name: UserRemove, Op: h.remove},
	}
}

// create handles POST /users
func (h *UserController) create(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}
	payload, err := bodyPayload(c)
	if err != nil {
		return nil, err
	}

	user, err := h.users.Call(ctx, await, service.OpCreate, payload)
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusCreated, user)
}

// search handles GET /users
func (h *UserController) search(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	page, err := h.users.Call(ctx, await, service.OpSearch, queryPayload(c))
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, page)
}

// get handles GET /users/:id
func (h *UserController) get(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	user, err := h.users.Call(ctx, await, service.OpGet, c.Params("id"))
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, user)
}

// update handles PUT /users/:id
func (h *UserController) update(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}
	payload, err := bodyPayload(c)
	if err != nil {
		return nil, err
	}

	user, err := h.users.Call(ctx, await, service.OpUpdate, c.Params("id"), payload)
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, user)
}

// remove handles DELETE /users/:id
func (h *UserController) remove(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	if _, err := h.users.Call(ctx, await, service.OpRemove, c.Params("id")); err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusNoContent, nil)
}
