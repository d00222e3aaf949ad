package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crediflow/collections-service/internal/api/http/handlers"
	"github.com/crediflow/collections-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Cases          *handlers.CasesHandler
	Payments       *handlers.PaymentsHandler
	Agreements     *handlers.AgreementsHandler
	Interactions   *handlers.InteractionsHandler
	Tickets        *handlers.TicketsHandler
	Audit          *handlers.AuditHandler
	Documents      *handlers.DocumentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	api.Get("/auth/me", cfg.Auth.Me)

	api.Post("/cases", cfg.Cases.Create)
	api.Get("/cases", cfg.Cases.List)
	api.Get("/cases/:id", cfg.Cases.Get)
	api.Patch("/cases/:id", cfg.Cases.Patch)
	api.Get("/cases/:id/interactions", cfg.Interactions.ListByCase)
	api.Get("/cases/:id/documents/cancellation/:cancellationId", cfg.Documents.CancellationDocument)

	api.Post("/payments", cfg.Payments.Post)
	api.Get("/payments", cfg.Payments.List)
	api.Get("/payments/:id", cfg.Payments.Get)
	api.Patch("/payments/:id", cfg.Payments.Patch)

	api.Post("/cancellations", cfg.Payments.Cancel)
	api.Get("/cancellations", cfg.Payments.ListCancellations)
	api.Get("/cancellations/:id", cfg.Payments.GetCancellation)

	api.Post("/agreements", cfg.Agreements.Create)
	api.Get("/agreements", cfg.Agreements.List)
	api.Get("/agreements/:id", cfg.Agreements.Get)
	api.Patch("/agreements/:id", cfg.Agreements.Patch)

	api.Post("/interactions", cfg.Interactions.Submit)
	api.Get("/interactions", cfg.Interactions.List)

	api.Get("/tickets", cfg.Tickets.List)
	api.Post("/tickets/approve", cfg.Tickets.Approve)
	api.Post("/tickets/reject", cfg.Tickets.Reject)
	api.Get("/tickets/:id", cfg.Tickets.Get)

	api.Get("/audit", cfg.Audit.List)
}
