package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/novaera/caprail/internal/domain"
)

// CreateRequest is the input for creating a client account profile.
type CreateRequest struct {
	Name                        string    `json:"name"`
	LegacySystems               string    `json:"legacy_systems"`
	AIReadinessScore            int       `json:"ai_readiness_score"`
	TrustLevel                  int       `json:"trust_level"`
	Revenue                     float64   `json:"revenue"`
	ServicesRevenue             float64   `json:"services_revenue"`
	AIProductRevenue            float64   `json:"ai_product_revenue"`
	DataFoundationServiceActive bool      `json:"data_foundation_service_active"`
	UseCaseDocumented           bool      `json:"use_case_documented"`
	DeliveryCapacityConfirmed   bool      `json:"delivery_capacity_confirmed"`
	PriorPilotSuccess           bool      `json:"prior_pilot_success"`
	BudgetConfirmed             bool      `json:"budget_confirmed"`
	HandoffChecklistComplete    bool      `json:"handoff_checklist_complete"`
	EngagementStartDate         time.Time `json:"engagement_start_date,omitzero"`
	AssignedToID                *int64    `json:"assigned_to_id,omitempty"`
	ApproverID                  *int64    `json:"approver_id,omitempty"`
	AIFeatureRequest            string    `json:"ai_feature_request"`
}

// Validate checks required fields and numeric ranges.
// Scores are validated at the boundary rather than clamped silently.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if len(r.Name) > 200 {
		return fmt.Errorf("name exceeds 200 characters: %w", domain.ErrValidation)
	}
	if r.AIReadinessScore < 0 || r.AIReadinessScore > 100 {
		return fmt.Errorf("ai_readiness_score must be in [0,100]: %w", domain.ErrValidation)
	}
	if r.TrustLevel < 0 || r.TrustLevel > 100 {
		return fmt.Errorf("trust_level must be in [0,100]: %w", domain.ErrValidation)
	}
	if r.Revenue < 0 || r.ServicesRevenue < 0 || r.AIProductRevenue < 0 {
		return fmt.Errorf("revenue fields must be non-negative: %w", domain.ErrValidation)
	}
	return nil
}

// UpdateRequest applies partial updates to a client profile.
// Nil pointers leave the stored value unchanged.
type UpdateRequest struct {
	Name                        *string    `json:"name,omitempty"`
	LegacySystems               *string    `json:"legacy_systems,omitempty"`
	AIReadinessScore            *int       `json:"ai_readiness_score,omitempty"`
	TrustLevel                  *int       `json:"trust_level,omitempty"`
	Revenue                     *float64   `json:"revenue,omitempty"`
	ServicesRevenue             *float64   `json:"services_revenue,omitempty"`
	AIProductRevenue            *float64   `json:"ai_product_revenue,omitempty"`
	DataFoundationServiceActive *bool      `json:"data_foundation_service_active,omitempty"`
	UseCaseDocumented           *bool      `json:"use_case_documented,omitempty"`
	DeliveryCapacityConfirmed   *bool      `json:"delivery_capacity_confirmed,omitempty"`
	PriorPilotSuccess           *bool      `json:"prior_pilot_success,omitempty"`
	BudgetConfirmed             *bool      `json:"budget_confirmed,omitempty"`
	HandoffChecklistComplete    *bool      `json:"handoff_checklist_complete,omitempty"`
	EngagementStartDate         *time.Time `json:"engagement_start_date,omitempty"`
	LastDeliveryUpdate          *time.Time `json:"last_delivery_update,omitempty"`
	AssignedToID                *int64     `json:"assigned_to_id,omitempty"`
	ApproverID                  *int64     `json:"approver_id,omitempty"`
	AIFeatureRequest            *string    `json:"ai_feature_request,omitempty"`
}

// Validate checks numeric ranges on the fields that are present.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
	}
	if r.AIReadinessScore != nil && (*r.AIReadinessScore < 0 || *r.AIReadinessScore > 100) {
		return fmt.Errorf("ai_readiness_score must be in [0,100]: %w", domain.ErrValidation)
	}
	if r.TrustLevel != nil && (*r.TrustLevel < 0 || *r.TrustLevel > 100) {
		return fmt.Errorf("trust_level must be in [0,100]: %w", domain.ErrValidation)
	}
	for _, v := range []*float64{r.Revenue, r.ServicesRevenue, r.AIProductRevenue} {
		if v != nil && *v < 0 {
			return fmt.Errorf("revenue fields must be non-negative: %w", domain.ErrValidation)
		}
	}
	return nil
}

// Apply copies the present fields of the request onto c.
func (r *UpdateRequest) Apply(c *Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.LegacySystems != nil {
		c.LegacySystems = *r.LegacySystems
	}
	if r.AIReadinessScore != nil {
		c.AIReadinessScore = *r.AIReadinessScore
	}
	if r.TrustLevel != nil {
		c.TrustLevel = *r.TrustLevel
	}
	if r.Revenue != nil {
		c.Revenue = *r.Revenue
	}
	if r.ServicesRevenue != nil {
		c.ServicesRevenue = *r.ServicesRevenue
	}
	if r.AIProductRevenue != nil {
		c.AIProductRevenue = *r.AIProductRevenue
	}
	if r.DataFoundationServiceActive != nil {
		c.DataFoundationServiceActive = *r.DataFoundationServiceActive
	}
	if r.UseCaseDocumented != nil {
		c.UseCaseDocumented = *r.UseCaseDocumented
	}
	if r.DeliveryCapacityConfirmed != nil {
		c.DeliveryCapacityConfirmed = *r.DeliveryCapacityConfirmed
	}
	if r.PriorPilotSuccess != nil {
		c.PriorPilotSuccess = *r.PriorPilotSuccess
	}
	if r.BudgetConfirmed != nil {
		c.BudgetConfirmed = *r.BudgetConfirmed
	}
	if r.HandoffChecklistComplete != nil {
		c.HandoffChecklistComplete = *r.HandoffChecklistComplete
	}
	if r.EngagementStartDate != nil {
		c.EngagementStartDate = *r.EngagementStartDate
	}
	if r.LastDeliveryUpdate != nil {
		c.LastDeliveryUpdate = *r.LastDeliveryUpdate
	}
	if r.AssignedToID != nil {
		c.AssignedToID = r.AssignedToID
	}
	if r.ApproverID != nil {
		c.ApproverID = r.ApproverID
	}
	if r.AIFeatureRequest != nil {
		c.AIFeatureRequest = *r.AIFeatureRequest
	}
}
