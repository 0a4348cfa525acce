package http

import (
	"errors"
	"net/http"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/middleware"
)

// Kanban returns the opportunity board grouped by stage.
func (h *Handlers) Kanban(w http.ResponseWriter, r *http.Request) {
	board, err := h.pipeline.Kanban(r.Context())
	if err != nil {
		writeDomainError(w, err, "opportunities not found")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type moveRequest struct {
	Stage    pipeline.Stage `json:"stage"`
	UserRole pipeline.Role  `json:"user_role"`
}

type moveResponse struct {
	OK    bool           `json:"ok"`
	Stage pipeline.Stage `json:"stage,omitempty"`
	Error string         `json:"error,omitempty"`
}

// MoveOpportunity transitions an opportunity through the stage gates.
// Gate rejections come back as {ok:false, error} with 400 (quality) or
// 403 (authority).
func (h *Handlers) MoveOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[moveRequest](w, r)
	if !ok {
		return
	}
	if req.UserRole == "" {
		req.UserRole = pipeline.RoleSales
	}

	opp, err := h.pipeline.Move(r.Context(), id, req.Stage, req.UserRole)
	if err != nil {
		status, msg := moveErrorStatus(err)
		if status == 0 {
			writeDomainError(w, err, "opportunity not found")
			return
		}
		writeJSON(w, status, moveResponse{OK: false, Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{OK: true, Stage: opp.Stage})
}

// moveErrorStatus maps gate and validation errors to their move-response
// status; other errors return 0 and fall through to the generic mapper.
func moveErrorStatus(err error) (int, string) {
	var qualityErr *pipeline.QualityGateError
	var authorityErr *pipeline.AuthorityError
	switch {
	case errors.As(err, &qualityErr):
		return http.StatusBadRequest, qualityErr.Error()
	case errors.As(err, &authorityErr):
		return http.StatusForbidden, authorityErr.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "invalid stage"
	}
	return 0, ""
}

// CreateTicket records a pipeline mistake report.
func (h *Handlers) CreateTicket(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[pipeline.TicketCreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.pipeline.CreateTicket(r.Context(), middleware.UserFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, err, "opportunity not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": t.ID})
}

// ResolveTicket marks a ticket handled.
func (h *Handlers) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.pipeline.ResolveTicket(r.Context(), id); err != nil {
		writeDomainError(w, err, "ticket not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListTickets returns the mistake tickets for an opportunity.
func (h *Handlers) ListTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	tickets, err := h.pipeline.ListTickets(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "opportunity not found")
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}
