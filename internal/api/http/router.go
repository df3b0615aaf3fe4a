package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-schedule/internal/api/http/handlers"
	"github.com/spec-kit/staff-schedule/internal/auth"
	"github.com/spec-kit/staff-schedule/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Schedule       *handlers.ScheduleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role checks on schedule routes live in
// the service so every caller path enforces them.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Users.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Get("/profile", cfg.Users.Profile)

	users := protected.Group("/users")
	users.Get("/", cfg.Users.List)
	admin := users.Group("", auth.RequireRoles(domain.RoleUserAdmin))
	admin.Post("/", cfg.Users.Create)
	admin.Put("/:id", cfg.Users.Update)
	admin.Delete("/:id", cfg.Users.Delete)

	schedule := protected.Group("/schedule")
	schedule.Get("/my", cfg.Schedule.GetMine)
	schedule.Post("/my", cfg.Schedule.SaveMine)
	schedule.Get("/all", cfg.Schedule.GetAll)
	schedule.Post("/all", cfg.Schedule.SaveAll)
	schedule.Post("/approve", cfg.Schedule.SetApproval)
	schedule.Get("/status", cfg.Schedule.Status)
}
