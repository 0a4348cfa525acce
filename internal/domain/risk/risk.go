// Package risk defines the risk flags raised by the delivery team against
// client accounts.
package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/novaera/caprail/internal/domain"
)

// Severity grades a risk flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Flag is a risk raised against a client. Acknowledged flips to true via an
// explicit acknowledgment and never reverts.
type Flag struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	ProjectName  string    `json:"project_name"`
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateRequest is the input for raising a risk flag.
type CreateRequest struct {
	ClientID    int64    `json:"client_id"`
	ProjectName string   `json:"project_name"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
}

// Validate checks required fields; an empty severity defaults to high,
// matching how the delivery team uses the flag.
func (r *CreateRequest) Validate() error {
	if r.ClientID == 0 {
		return fmt.Errorf("client_id is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("message is required: %w", domain.ErrValidation)
	}
	if r.Severity == "" {
		r.Severity = SeverityHigh
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("unknown severity %q: %w", r.Severity, domain.ErrValidation)
	}
	return nil
}
