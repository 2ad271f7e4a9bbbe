package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Staff          *handlers.StaffHandler
	StaffTickets   *handlers.StaffTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The ticket intake and tracking surface is
// deliberately unauthenticated; everything under /staff requires a token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/staff/login", cfg.Staff.Login)

	api := app.Group("/api/v1")

	public := api.Group("/tickets")
	public.Post("/", cfg.Tickets.Create)
	public.Get("/:code", cfg.Tickets.Track)
	public.Post("/:code/survey", cfg.Tickets.SubmitSurvey)

	staff := api.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/tickets/:id", cfg.StaffTickets.Get)
	staff.Get("/tickets/:id/activity", cfg.StaffTickets.Activity)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Patch("/tickets/:id/assignment", cfg.StaffTickets.UpdateAssignment)

	reports := staff.Group("/reports", auth.RequireStaffRole(domain.StaffRoleTeamLead, domain.StaffRoleAdmin))
	reports.Get("/sla", cfg.StaffTickets.SLAReport)
}
