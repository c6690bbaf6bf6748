package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/http/handlers"
	"github.com/spec-kit/request-workflow/internal/auth"
	"github.com/spec-kit/request-workflow/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Employees      *handlers.EmployeesHandler
	Tickets        *handlers.TicketsHandler
	Sessions       *handlers.SessionsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Employees.Register)
	authGroup.Post("/login", cfg.Employees.Login)

	authenticated := app.Group("", cfg.AuthMiddleware.Authenticate())
	authenticated.Get("/me", cfg.Employees.Me)

	tickets := authenticated.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", auth.RequireRole(
		domain.RoleMISSupervisor,
		domain.RoleProgrammer,
		domain.RoleDepartmentHead,
		domain.RoleOD,
	), cfg.Tickets.List)
	tickets.Get("/mine", cfg.Tickets.Mine)
	tickets.Get("/dashboard", cfg.Tickets.Dashboard)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/history", cfg.Tickets.History)

	sessions := authenticated.Group("/sessions")
	sessions.Post("", cfg.Sessions.Open)
	sessions.Get("/:id", cfg.Sessions.Get)
	sessions.Post("/:id/actions", cfg.Sessions.BeginAction)
	sessions.Post("/:id/remark", cfg.Sessions.SubmitRemark)
	sessions.Post("/:id/submit", cfg.Sessions.SubmitImmediate)
	sessions.Put("/:id/edits", cfg.Sessions.StageEdits)
	sessions.Post("/:id/attachments", cfg.Sessions.StageAttachment)
	sessions.Delete("/:id", cfg.Sessions.Close)
}
