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
	Stream         *handlers.StreamHandler
	Attachments    *handlers.AttachmentsHandler
	Audit          *handlers.AuditHandler
	Notifications  *handlers.NotificationsHandler
	SLA            *handlers.SLAHandler
	Dispatch       *handlers.DispatchHandler
	AuthMiddleware *auth.AuthMiddleware
	ServiceSecret  string
	Metrics        fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	api := app.Group("/api/v1")

	// Service-to-service callers authenticate with the shared secret, not a user token.
	api.Post("/notifications/dispatch", auth.ServiceAuth(cfg.ServiceSecret), cfg.Dispatch.Dispatch)

	user := cfg.AuthMiddleware.Handle
	staff := auth.RequireStaff()

	api.Post("/tickets", user, cfg.Tickets.CreateTicket)
	api.Get("/tickets/:id", user, cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", user, cfg.Tickets.UpdateTicket)
	api.Post("/tickets/:id/escalate", user, staff, cfg.Tickets.EscalateTicket)
	api.Get("/tickets/:id/escalations", user, staff, cfg.Tickets.ListEscalations)
	api.Post("/tickets/:id/messages", user, cfg.Tickets.AddMessage)
	api.Get("/tickets/:id/messages/stream", user, cfg.Stream.Messages)

	api.Post("/tickets/:id/attachments", user, cfg.Attachments.Upload)
	api.Get("/tickets/:id/attachments", user, cfg.Attachments.List)
	api.Delete("/attachments/:id", user, cfg.Attachments.Delete)

	api.Get("/tickets/:id/audit", user, staff, cfg.Audit.List)
	api.Get("/tickets/:id/audit/stats", user, staff, cfg.Audit.Stats)

	api.Get("/notifications", user, cfg.Notifications.List)
	api.Get("/notifications/unread-count", user, cfg.Notifications.UnreadCount)
	api.Post("/notifications/read-all", user, cfg.Notifications.MarkAllRead)
	api.Post("/notifications/:id/read", user, cfg.Notifications.MarkRead)

	api.Get("/sla-configs", user, staff, cfg.SLA.List)
	api.Put("/sla-configs", user, auth.RequireRole(domain.RoleOwner), cfg.SLA.Upsert)
}
