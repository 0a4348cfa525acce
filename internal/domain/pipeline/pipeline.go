// Package pipeline defines the kanban opportunity pipeline: the closed set of
// stages, the canonical owning role per stage, and the gated Move transition.
package pipeline

import (
	"fmt"
	"time"

	"github.com/novaera/caprail/internal/domain"
)

// Stage is a discrete phase in the opportunity pipeline.
type Stage string

const (
	StageQualifiedLead Stage = "qualified_lead"
	StageDiscovery     Stage = "discovery"
	StageProposal      Stage = "proposal"
	StageContract      Stage = "contract"
	StageKickoff       Stage = "kickoff"
)

// Stages is the nominal progression order. Movement is not restricted to
// adjacent stages; ownership and the quality gate are what restrict it.
var Stages = []Stage{StageQualifiedLead, StageDiscovery, StageProposal, StageContract, StageKickoff}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageQualifiedLead, StageDiscovery, StageProposal, StageContract, StageKickoff:
		return true
	}
	return false
}

// Role is a functional pipeline role that owns stages.
type Role string

const (
	RoleSales      Role = "Sales"
	RoleOperations Role = "Operations"
	RoleDelivery   Role = "Delivery"
)

// Owner returns the canonical owning role for a stage. Adding a stage forces
// this switch to be revisited.
func Owner(s Stage) Role {
	switch s {
	case StageQualifiedLead, StageDiscovery, StageProposal:
		return RoleSales
	case StageContract:
		return RoleOperations
	case StageKickoff:
		return RoleDelivery
	default:
		return RoleSales
	}
}

// ReadinessThreshold is the minimum client AI readiness score required to
// move an opportunity from proposal to contract.
const ReadinessThreshold = 50

// Opportunity is a pipeline entry owned by exactly one client.
// PrimaryOwner always mirrors the canonical owner of the current stage;
// Move maintains that invariant on every transition.
type Opportunity struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	PrimaryOwner Role      `json:"primary_owner"`
	CreatedAt    time.Time `json:"created_at"`
}

// New returns an opportunity at the start of the pipeline for the client.
func New(clientID int64, name string) Opportunity {
	return Opportunity{
		ClientID:     clientID,
		Name:         name,
		Stage:        StageQualifiedLead,
		PrimaryOwner: Owner(StageQualifiedLead),
	}
}

// InHandoff reports whether the opportunity has reached the sales-to-ops
// handoff portion of the pipeline.
func (o Opportunity) InHandoff() bool {
	return o.Stage == StageContract || o.Stage == StageKickoff
}

// QualityGateError blocks a transition when the client's readiness score is
// below the gate threshold.
type QualityGateError struct {
	Threshold int
	Score     int
}

func (e *QualityGateError) Error() string {
	return fmt.Sprintf("quality gate: AI readiness score must be >= %d, current: %d", e.Threshold, e.Score)
}

// AuthorityError blocks a transition attempted by a role other than the
// canonical owner of the target stage.
type AuthorityError struct {
	Required Role
}

func (e *AuthorityError) Error() string {
	return fmt.Sprintf("decision authority required: primary owner for this stage is %s", e.Required)
}

// Move transitions the opportunity to target, enforcing in order:
//
//  1. target is a known stage (ErrValidation),
//  2. the proposal->contract quality gate on the owning client's readiness
//     score (QualityGateError),
//  3. the acting role equals the canonical owner of target (AuthorityError).
//
// On success the stage and primary owner are updated together. Callers must
// persist both fields atomically.
func Move(opp *Opportunity, clientReadiness int, target Stage, acting Role) error {
	if !target.Valid() {
		return fmt.Errorf("unknown stage %q: %w", target, domain.ErrValidation)
	}

	if opp.Stage == StageProposal && target == StageContract && clientReadiness < ReadinessThreshold {
		return &QualityGateError{Threshold: ReadinessThreshold, Score: clientReadiness}
	}

	required := Owner(target)
	if acting != required {
		return &AuthorityError{Required: required}
	}

	opp.Stage = target
	opp.PrimaryOwner = required
	return nil
}
