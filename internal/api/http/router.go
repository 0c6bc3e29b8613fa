package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/shiftboard/internal/api/http/handlers"
	"github.com/spec-kit/shiftboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Agents         *handlers.AgentsHandler
	Calendar       *handlers.CalendarHandler
	Schedules      *handlers.SchedulesHandler
	Leads          *handlers.LeadsHandler
	AuthMiddleware *auth.AuthMiddleware
	Registry       *prometheus.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireRole())
	admin := auth.RequireAdmin()

	api.Get("/me", cfg.Auth.Me)
	api.Post("/users", admin, cfg.Auth.CreateUser)

	api.Get("/agents", cfg.Agents.List)
	api.Post("/agents", admin, cfg.Agents.Create)
	api.Post("/agents/refresh", admin, cfg.Agents.Refresh)
	api.Delete("/agents/:id", admin, cfg.Agents.Delete)

	api.Get("/calendar/:year/:month", cfg.Calendar.Month)

	api.Get("/schedules/:date", cfg.Schedules.Get)
	api.Post("/schedules/:date/editor", admin, cfg.Schedules.OpenEditor)

	api.Get("/editor/:session", admin, cfg.Schedules.View)
	api.Post("/editor/:session/members", admin, cfg.Schedules.AddMember)
	api.Delete("/editor/:session/members/:index", admin, cfg.Schedules.RemoveMember)
	api.Post("/editor/:session/save", admin, cfg.Schedules.Save)
	api.Delete("/editor/:session", admin, cfg.Schedules.Cancel)

	api.Get("/leads/summary", cfg.Leads.Summary)
	api.Get("/leads/summary/:member", cfg.Leads.MemberRecords)
}
