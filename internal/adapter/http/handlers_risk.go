package http

import (
	"net/http"

	"github.com/novaera/caprail/internal/domain/risk"
	"github.com/novaera/caprail/internal/middleware"
)

// CreateRiskFlag records a delivery risk against a client.
func (h *Handlers) CreateRiskFlag(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[risk.CreateRequest](w, r)
	if !ok {
		return
	}

	f, err := h.risks.Flag(r.Context(), middleware.UserFromContext(r.Context()), &req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// ListAlerts returns all unacknowledged risk flags.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	flags, err := h.risks.Alerts(r.Context())
	if err != nil {
		writeDomainError(w, err, "risk flags not found")
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

// AcknowledgeAlert marks a risk flag handled.
func (h *Handlers) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.risks.Acknowledge(r.Context(), id); err != nil {
		writeDomainError(w, err, "risk flag not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
