package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/novaera/caprail/internal/domain"
)

// Ticket records a mistake committed on a pipeline record. Append-only;
// the only mutation after creation is setting Resolved.
type Ticket struct {
	ID            int64     `json:"id"`
	OpportunityID int64     `json:"opportunity_id"`
	Message       string    `json:"message"`
	CreatedByID   *int64    `json:"created_by_id,omitempty"`
	Resolved      bool      `json:"resolved"`
	CreatedAt     time.Time `json:"created_at"`
}

// TicketCreateRequest is the input for raising a pipeline ticket.
type TicketCreateRequest struct {
	OpportunityID int64  `json:"opportunity_id"`
	Message       string `json:"message"`
}

// Validate checks the ticket request.
func (r *TicketCreateRequest) Validate() error {
	if r.OpportunityID == 0 {
		return fmt.Errorf("opportunity_id is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message is required: %w", domain.ErrValidation)
	}
	return nil
}
