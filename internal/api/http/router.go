package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-service/internal/api/http/handlers"
	"github.com/spec-kit/classroom-service/internal/auth"
	"github.com/spec-kit/classroom-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Students       *handlers.StudentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Post("/refresh", cfg.Users.Refresh)

	authedUsers := users.Group("", cfg.AuthMiddleware.Authenticate)
	authedUsers.Get("/me", cfg.Users.Me)
	authedUsers.Post("/password", cfg.Users.ChangePassword)

	students := api.Group("/students", cfg.AuthMiddleware.Authenticate)
	students.Get("", cfg.Students.List)
	students.Get("/:id", cfg.Students.Get)

	manage := students.Group("", auth.RequireRoles(domain.RoleAdmin, domain.RoleTeacher))
	manage.Post("", cfg.Students.Create)
	manage.Put("/:id", cfg.Students.Update)
	manage.Delete("/:id", cfg.Students.Delete)
}
