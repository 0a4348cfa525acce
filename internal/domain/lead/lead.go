// Package lead defines the pre-client prospect model and its conversion funnel.
package lead

import (
	"fmt"
	"strings"
	"time"

	"github.com/novaera/caprail/internal/domain"
)

// Status is a stage in the lead conversion funnel.
type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusNegotiation Status = "negotiation"
	StatusConverted   Status = "converted"
	StatusLost        Status = "lost"
)

// Statuses is the funnel order.
var Statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusNegotiation, StatusConverted, StatusLost}

// Valid reports whether s is a known lead status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusNegotiation, StatusConverted, StatusLost:
		return true
	}
	return false
}

// Lead is a prospect prior to conversion. ConvertedClientID is set exactly
// once at conversion time, after which the link is immutable.
type Lead struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Department        string    `json:"department"`
	ContactInfo       string    `json:"contact_info"`
	Status            Status    `json:"status"`
	Notes             string    `json:"notes"`
	ConvertedClientID *int64    `json:"converted_client_id,omitempty"`
	LastContactedAt   time.Time `json:"last_contacted_at,omitzero"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Converted reports whether the lead has already been converted to a client.
func (l Lead) Converted() bool {
	return l.ConvertedClientID != nil
}

// CreateRequest is the input for adding a lead.
type CreateRequest struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	ContactInfo string `json:"contact_info"`
	Status      Status `json:"status"`
	Notes       string `json:"notes"`
}

// Validate checks required fields; an empty status defaults to new.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if r.Status == "" {
		r.Status = StatusNew
	}
	if !r.Status.Valid() {
		return fmt.Errorf("unknown lead status %q: %w", r.Status, domain.ErrValidation)
	}
	return nil
}

// UpdateRequest applies partial updates to a lead.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Department  *string `json:"department,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	// TouchContacted stamps LastContactedAt with the current time.
	TouchContacted bool `json:"touch_contacted,omitempty"`
}

// Validate checks the fields that are present.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.Status != nil && !r.Status.Valid() {
		return fmt.Errorf("unknown lead status %q: %w", *r.Status, domain.ErrValidation)
	}
	return nil
}
