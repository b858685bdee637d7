package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/pipeline"
	"github.com/corpdir/api/internal/service"
)

// Controller names exported by CompanyController
const (
	CompanyCreate = "company.create"
	CompanySearch = "company.search"
	CompanyGet    = "company.get"
	CompanyUpdate = "company.update"
	CompanyRemove = "company.remove"
)

// CompanyController handles company endpoints
type CompanyController struct {
	companies pipeline.Service
}

// NewCompanyController creates a new company controller
func NewCompanyController(companies *service.CompanyService) *CompanyController {
	return &CompanyController{companies: companies.Service}
}

// Registrations lists the controllers of this module
func (h *CompanyController) Registrations() []pipeline.Registration {
	return []pipeline.Registration{
		{Name: CompanyCreate, Op: h.create},
		{Name: CompanySearch, Op: h.search},
		{Name: CompanyGet, Op: h.get},
		{Name: CompanyUpdate, Op: h.update},
		{Name: CompanyRemove, Op: h.remove},
	}
}

// create handles POST /companies
func (h *CompanyController) create(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}
	payload, err := bodyPayload(c)
	if err != nil {
		return nil, err
	}

	company, err := h.companies.Call(ctx, await, service.OpCreate, payload)
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusCreated, company)
}

// search handles GET /companies
func (h *CompanyController) search(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	page, err := h.companies.Call(ctx, await, service.OpSearch, queryPayload(c))
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, page)
}

// get handles GET /companies/:id
func (h *CompanyController) get(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	company, err := h.companies.Call(ctx, await, service.OpGet, c.Params("id"))
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, company)
}

// update handles PUT /companies/:id
func (h *CompanyController) update(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}
	payload, err := bodyPayload(c)
	if err != nil {
		return nil, err
	}

	company, err := h.companies.Call(ctx, await, service.OpUpdate, c.Params("id"), payload)
	if err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusOK, company)
}

// remove handles DELETE /companies/:id
func (h *CompanyController) remove(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	c, err := fiberCtx(args)
	if err != nil {
		return nil, err
	}

	if _, err := h.companies.Call(ctx, await, service.OpRemove, c.Params("id")); err != nil {
		return nil, err
	}
	return respond(c, fiber.StatusNoContent, nil)
}
