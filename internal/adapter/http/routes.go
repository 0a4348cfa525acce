package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	fullAccess := middleware.RequireRole(user.RoleCEO, user.RoleStrategyLead)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Get("/auth/me", h.Me)
		r.With(fullAccess).Get("/users", h.ListUsers)

		// Dashboard & reports
		r.Get("/dashboard", h.Dashboard)
		r.Get("/guardrails", h.Guardrails)

		// Clients
		r.Get("/clients", h.ListClients)
		r.With(fullAccess).Post("/clients", h.CreateClient)
		r.Get("/clients/health", h.ClientHealth)
		r.Get("/clients/{id}", h.GetClient)
		r.With(fullAccess).Put("/clients/{id}", h.UpdateClient)
		r.Get("/clients/{id}/guardrails", h.ClientGuardrails)
		r.Post("/clients/{id}/analyze", h.AnalyzeClient)
		r.Post("/clients/{id}/reviews", h.CreateReview)
		r.Get("/clients/{id}/reviews", h.ListReviews)
		r.With(fullAccess).Post("/clients/{id}/permissions/grant", h.GrantPermission)
		r.With(fullAccess).Post("/clients/{id}/permissions/revoke", h.RevokePermission)
		r.With(fullAccess).Get("/clients/{id}/permissions", h.ListPermissions)

		// Pipeline
		r.Get("/kanban", h.Kanban)
		r.Post("/opportunities/{id}/move", h.MoveOpportunity)
		r.Get("/opportunities/{id}/tickets", h.ListTickets)
		r.Post("/tickets", h.CreateTicket)
		r.Post("/tickets/{id}/resolve", h.ResolveTicket)

		// Leads
		r.Get("/leads", h.ListLeads)
		r.Post("/leads", h.CreateLead)
		r.Get("/leads/{id}", h.GetLead)
		r.Put("/leads/{id}", h.UpdateLead)
		r.With(fullAccess).Post("/leads/{id}/convert", h.ConvertLead)

		// Risk flags
		r.Post("/risks", h.CreateRiskFlag)
		r.Get("/alerts", h.ListAlerts)
		r.Post("/alerts/{id}/acknowledge", h.AcknowledgeAlert)
	})
}
