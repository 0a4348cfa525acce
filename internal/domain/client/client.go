// Package client defines the Client Account Profile (CAP) domain model.
//
// A Client is a value snapshot: scoring and guardrail evaluation take it by
// value and never mutate it, so they are unit-testable without storage.
package client

import (
	"time"
)

// Client is the account profile for an active engagement.
//
// Numeric scores are kept in [0,100] by request validation; revenue fields
// default to zero and are never null for scoring purposes. A zero
// EngagementStartDate or LastDeliveryUpdate means "not recorded".
type Client struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LegacySystems string `json:"legacy_systems"` // comma-separated descriptor

	AIReadinessScore int     `json:"ai_readiness_score"` // 0-100
	TrustLevel       int     `json:"trust_level"`        // 0-100
	Revenue          float64 `json:"revenue"`
	ServicesRevenue  float64 `json:"services_revenue"`
	AIProductRevenue float64 `json:"ai_product_revenue"`

	DataFoundationServiceActive bool `json:"data_foundation_service_active"`
	UseCaseDocumented           bool `json:"use_case_documented"`
	DeliveryCapacityConfirmed   bool `json:"delivery_capacity_confirmed"`
	PriorPilotSuccess           bool `json:"prior_pilot_success"`
	BudgetConfirmed             bool `json:"budget_confirmed"`
	HandoffChecklistComplete    bool `json:"handoff_checklist_complete"`

	EngagementStartDate time.Time `json:"engagement_start_date,omitzero"`
	LastDeliveryUpdate  time.Time `json:"last_delivery_update,omitzero"`

	// Note-analysis output, persisted from the last Analyze call.
	AIUseCases        []string  `json:"ai_use_cases"`
	TechnicalBlockers []string  `json:"technical_blockers"`
	KeyStakeholders   []string  `json:"key_stakeholders"`
	DeliveryNotes     string    `json:"delivery_notes"`
	AnalysisUpdatedAt time.Time `json:"analysis_updated_at,omitzero"`

	AssignedToID     *int64 `json:"assigned_to_id,omitempty"`
	ApproverID       *int64 `json:"approver_id,omitempty"`
	AIFeatureRequest string `json:"ai_feature_request"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EngagementStart returns the engagement start date, falling back to the
// record creation time when no explicit start was recorded.
func (c Client) EngagementStart() time.Time {
	if !c.EngagementStartDate.IsZero() {
		return c.EngagementStartDate
	}
	return c.CreatedAt
}

// Masked returns a copy with confidential fields zeroed, for callers
// without per-client visibility. Readiness and flags stay visible; revenue
// and account detail do not.
func (c Client) Masked() Client {
	c.Revenue = 0
	c.ServicesRevenue = 0
	c.AIProductRevenue = 0
	c.DeliveryNotes = ""
	c.AIUseCases = nil
	c.TechnicalBlockers = nil
	c.KeyStakeholders = nil
	c.AIFeatureRequest = ""
	return c
}
