package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Requests       *handlers.RequestsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	requests := api.Group("/requests")
	requests.Post("", auth.RequireRole(domain.RoleHousekeeper, domain.RoleAdmin), cfg.Requests.Create)
	requests.Get("", auth.RequireRole(), cfg.Requests.List)
	requests.Get("/:id", auth.RequireRole(), cfg.Requests.Get)
	requests.Post("/:id/accept", auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Requests.Accept)
	requests.Post("/:id/complete", auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Requests.Complete)

	users := api.Group("/users", auth.RequireRole(domain.RoleAdmin))
	users.Get("", cfg.Users.List)
	users.Post("", cfg.Users.Add)
	users.Delete("/:id", cfg.Users.Delete)
	users.Patch("/:id", cfg.Users.Rename)
}
