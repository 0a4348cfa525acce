package service

import (
	"context"
	"fmt"
	"time"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/lead"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/database"
)

// defaultScore is the readiness and trust starting point for a client
// converted from a lead, before any assessment has happened.
const defaultScore = 50

// LeadService handles the pre-client prospect funnel and conversion.
type LeadService struct {
	store database.Store
}

// NewLeadService creates a new lead service.
func NewLeadService(store database.Store) *LeadService {
	return &LeadService{store: store}
}

// Funnel is the lead list grouped by status, plus the converted count.
type Funnel struct {
	Statuses       []lead.Status               `json:"statuses"`
	ByStatus       map[lead.Status][]lead.Lead `json:"by_status"`
	ConvertedCount int                         `json:"converted_count"`
}

// List returns the funnel view of all leads, most recently updated first
// within each status.
func (s *LeadService) List(ctx context.Context) (*Funnel, error) {
	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return nil, err
	}
	converted, err := s.store.CountConvertedLeads(ctx)
	if err != nil {
		return nil, err
	}

	f := &Funnel{
		Statuses:       lead.Statuses,
		ByStatus:       make(map[lead.Status][]lead.Lead, len(lead.Statuses)),
		ConvertedCount: converted,
	}
	for _, st := range lead.Statuses {
		f.ByStatus[st] = []lead.Lead{}
	}
	for _, l := range leads {
		if l.Status.Valid() {
			f.ByStatus[l.Status] = append(f.ByStatus[l.Status], l)
		}
	}
	return f, nil
}

// Get returns a lead by ID.
func (s *LeadService) Get(ctx context.Context, id int64) (*lead.Lead, error) {
	return s.store.GetLead(ctx, id)
}

// Create adds a lead to the funnel.
func (s *LeadService) Create(ctx context.Context, req *lead.CreateRequest) (*lead.Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	l := &lead.Lead{
		Name:        req.Name,
		Department:  req.Department,
		ContactInfo: req.ContactInfo,
		Status:      req.Status,
		Notes:       req.Notes,
	}
	if err := s.store.CreateLead(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update applies a partial update to a lead. TouchContacted stamps the
// last-contacted time.
func (s *LeadService) Update(ctx context.Context, id int64, req lead.UpdateRequest) (*lead.Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Department != nil {
		l.Department = *req.Department
	}
	if req.ContactInfo != nil {
		l.ContactInfo = *req.ContactInfo
	}
	if req.Status != nil {
		l.Status = *req.Status
	}
	if req.Notes != nil {
		l.Notes = *req.Notes
	}
	if req.TouchContacted {
		l.LastContactedAt = time.Now().UTC()
	}

	if err := s.store.UpdateLead(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Convert turns a lead into a client account with a starting opportunity.
// Only CEO and Strategy Lead may convert, and a lead converts exactly once;
// converting again is a conflict. The lead notes carry over as the legacy
// systems descriptor.
func (s *LeadService) Convert(ctx context.Context, actor *user.User, id int64) (*client.Client, error) {
	if actor == nil || !actor.HasFullAccess() {
		return nil, fmt.Errorf("%w: only CEO or Strategy Lead can convert leads", domain.ErrAccessDenied)
	}

	l, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Converted() {
		return nil, fmt.Errorf("lead %d already converted: %w", id, domain.ErrConflict)
	}

	now := time.Now().UTC()
	c := &client.Client{
		Name:                l.Name,
		LegacySystems:       l.Notes,
		AIReadinessScore:    defaultScore,
		TrustLevel:          defaultScore,
		EngagementStartDate: now,
		LastDeliveryUpdate:  now,
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	l.Status = lead.StatusConverted
	l.ConvertedClientID = &c.ID
	if err := s.store.UpdateLead(ctx, l); err != nil {
		return nil, err
	}

	opp := pipeline.New(c.ID, "New opportunity")
	if err := s.store.CreateOpportunity(ctx, &opp); err != nil {
		return nil, fmt.Errorf("create initial opportunity: %w", err)
	}
	return c, nil
}
