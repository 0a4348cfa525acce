package http

import (
	"net/http"

	"github.com/novaera/caprail/internal/domain/lead"
	"github.com/novaera/caprail/internal/middleware"
)

// ListLeads returns the prospect funnel.
func (h *Handlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	funnel, err := h.leads.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "leads not found")
		return
	}
	writeJSON(w, http.StatusOK, funnel)
}

// GetLead returns one lead.
func (h *Handlers) GetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	l, err := h.leads.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// CreateLead adds a prospect to the funnel.
func (h *Handlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[lead.CreateRequest](w, r)
	if !ok {
		return
	}

	l, err := h.leads.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "lead not found")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// UpdateLead applies a partial lead update.
func (h *Handlers) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[lead.UpdateRequest](w, r)
	if !ok {
		return
	}

	l, err := h.leads.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// ConvertLead turns a lead into a client account.
func (h *Handlers) ConvertLead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	c, err := h.leads.Convert(r.Context(), middleware.UserFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err, "lead not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
