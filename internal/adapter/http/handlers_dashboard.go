package http

import (
	"net/http"

	"github.com/novaera/caprail/internal/middleware"
)

// Dashboard returns the aggregated portfolio overview.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboard.Overview(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// Guardrails returns the policy report across all clients.
func (h *Handlers) Guardrails(w http.ResponseWriter, r *http.Request) {
	report, err := h.dashboard.Guardrails(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "guardrail report unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
