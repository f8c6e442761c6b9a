package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Complaints     *handlers.ComplaintsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The administrative mutations sit behind
// the bearer middleware plus an admin role guard; everything else is open,
// matching the public registration/submission flows.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	requireAdmin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin)}

	app.Post("/users", cfg.Users.Upsert)
	app.Get("/users/:email", cfg.Users.Get)
	app.Get("/users", append(requireAdmin, cfg.Users.List)...)
	app.Put("/users/:email", append(requireAdmin, cfg.Users.UpdateRole)...)
	app.Delete("/users/:email", append(requireAdmin, cfg.Users.Delete)...)

	app.Get("/category", cfg.Categories.List)

	app.Post("/complaints", cfg.Complaints.Create)
	app.Get("/complaints", cfg.Complaints.ListAll)
	// specific listings must precede the :id route
	app.Get("/complaints/user/:email", cfg.Complaints.ListByUser)
	app.Get("/complaints/employee/:id", cfg.Complaints.ListByEmployee)
	app.Get("/complaints/:id", cfg.Complaints.Get)
	app.Put("/complaints/:id", cfg.Complaints.Transition)
	app.Delete("/complaints/:id", append(requireAdmin, cfg.Complaints.Delete)...)
}
