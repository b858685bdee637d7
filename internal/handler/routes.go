package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/middleware"
)

// RegisterRoutes registers the directory routes on router
func RegisterRoutes(router fiber.Router, h Handlers, auth *middleware.AuthMiddleware) {
	jwt := auth.RequireJWT()
	editors := auth.RequireRole(domain.RoleAdmin, domain.RoleManager)
	admins := auth.RequireRole(domain.RoleAdmin)

	router.Post("/login", h.Get(AuthLogin))

	companies := router.Group("/companies")
	companies.Get("/", h.Get(CompanySearch))
	companies.Get("/:id", h.Get(CompanyGet))
	companies.Post("/", jwt, editors, h.Get(CompanyCreate))
	companies.Put("/:id", jwt, editors, h.Get(CompanyUpdate))
	companies.Delete("/:id", jwt, editors, h.Get(CompanyRemove))

	users := router.Group("/users", jwt)
	users.Get("/", h.Get(UserSearch))
	users.Get("/:id", h.Get(UserGet))
	users.Post("/", admins, h.Get(UserCreate))
	users.Put("/:id", admins, h.Get(UserUpdate))
	users.Delete("/:id", admins, h.Get(UserRemove))
}
