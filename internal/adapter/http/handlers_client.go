package http

import (
	"net/http"

	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/review"
	"github.com/novaera/caprail/internal/middleware"
)

// ListClients returns all clients ranked by priority score.
func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UserFromContext(r.Context())
	rows, err := h.clients.List(r.Context(), viewer)
	if err != nil {
		writeDomainError(w, err, "clients not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetClient returns one client with derived scores.
func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.clients.Get(r.Context(), middleware.UserFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateClient creates a client account profile.
func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[client.CreateRequest](w, r)
	if !ok {
		return
	}

	c, err := h.clients.Create(r.Context(), middleware.UserFromContext(r.Context()), &req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClient applies a partial profile update.
func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[client.UpdateRequest](w, r)
	if !ok {
		return
	}

	c, err := h.clients.Update(r.Context(), middleware.UserFromContext(r.Context()), id, req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ClientHealth returns all clients ordered by delivery health, worst first.
func (h *Handlers) ClientHealth(w http.ResponseWriter, r *http.Request) {
	rows, err := h.clients.HealthReport(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "clients not found")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ClientGuardrails evaluates guardrails for one client.
func (h *Handlers) ClientGuardrails(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.clients.Guardrails(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateReview appends a review to a client's history.
func (h *Handlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[review.CreateRequest](w, r)
	if !ok {
		return
	}

	rev, err := h.clients.AddReview(r.Context(), middleware.UserFromContext(r.Context()), id, req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

// ListReviews returns a client's recent reviews.
func (h *Handlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.clients.ListReviews(r.Context(), middleware.UserFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type permissionRequest struct {
	UserID int64 `json:"user_id"`
}

// GrantPermission gives a user visibility into a client account.
func (h *Handlers) GrantPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[permissionRequest](w, r)
	if !ok {
		return
	}

	granter := middleware.UserFromContext(r.Context())
	if err := h.access.Grant(r.Context(), granter, req.UserID, id); err != nil {
		writeDomainError(w, err, "client or user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RevokePermission removes a user's visibility into a client account.
func (h *Handlers) RevokePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[permissionRequest](w, r)
	if !ok {
		return
	}

	granter := middleware.UserFromContext(r.Context())
	if err := h.access.Revoke(r.Context(), granter, req.UserID, id); err != nil {
		writeDomainError(w, err, "client or user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListPermissions returns the grants for a client.
func (h *Handlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	perms, err := h.access.ListClientPermissions(r.Context(), middleware.UserFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

type analyzeRequest struct {
	DeliveryNotes string `json:"delivery_notes"`
}

// AnalyzeClient runs the delivery note analyzer for a client.
func (h *Handlers) AnalyzeClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := readJSON[analyzeRequest](w, r)
	if !ok {
		return
	}

	result, err := h.analysis.Analyze(r.Context(), middleware.UserFromContext(r.Context()), id, req.DeliveryNotes)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
