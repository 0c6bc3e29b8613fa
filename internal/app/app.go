// Package app wires repositories, services and HTTP handlers into a fiber app.
package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shiftboard/internal/api/http"
	"github.com/spec-kit/shiftboard/internal/api/http/handlers"
	"github.com/spec-kit/shiftboard/internal/auth"
	"github.com/spec-kit/shiftboard/internal/calendar"
	"github.com/spec-kit/shiftboard/internal/config"
	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/events"
	"github.com/spec-kit/shiftboard/internal/leads"
	"github.com/spec-kit/shiftboard/internal/observability"
	"github.com/spec-kit/shiftboard/internal/repository"
	"github.com/spec-kit/shiftboard/internal/roster"
	"github.com/spec-kit/shiftboard/internal/service"
	"github.com/spec-kit/shiftboard/internal/worker"
)

// App is the assembled service.
type App struct {
	Fiber     *fiber.App
	Auth      *service.AuthService
	Roster    *service.RosterService
	Schedules *service.ScheduleService
	Metrics   *observability.Metrics
}

// New builds the service on top of store. The roster cache is loaded and the
// bootstrap admin ensured before it returns.
func New(ctx context.Context, cfg *config.Config, store docstore.Store, logger *zap.Logger) (*App, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	agentRepo := repository.NewAgentRepository(store)
	scheduleRepo := repository.NewDayScheduleRepository(store)
	leadRepo := repository.NewLeadRepository(store)
	userRepo := repository.NewUserRepository(store)

	cache := roster.NewCache(agentRepo, cfg.Roster.Locale, logger)

	authService := service.NewAuthService(cfg.Auth, userRepo, logger)
	rosterService := service.NewRosterService(service.RosterDependencies{
		AgentRepo:  agentRepo,
		Cache:      cache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		ScheduleRepo: scheduleRepo,
		Roster:       cache,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	calendarService := service.NewCalendarService(calendar.NewAggregator(scheduleRepo, cache), logger)
	calendarService.RegisterHandlers(dispatcher)
	leadService := service.NewLeadService(leads.NewAggregator(leadRepo, cache, loc), logger)

	worker.StartNotificationWorker(service.NewNotificationService(cfg.Notification, dispatcher, logger))

	if _, err := rosterService.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(fiberApp, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(fiberApp, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, store),
		Auth:           handlers.NewAuthHandler(authService),
		Agents:         handlers.NewAgentsHandler(rosterService),
		Calendar:       handlers.NewCalendarHandler(calendarService),
		Schedules:      handlers.NewSchedulesHandler(scheduleService),
		Leads:          handlers.NewLeadsHandler(leadService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
		Registry:       metrics.Registry,
	})

	return &App{
		Fiber:     fiberApp,
		Auth:      authService,
		Roster:    rosterService,
		Schedules: scheduleService,
		Metrics:   metrics,
	}, nil
}
