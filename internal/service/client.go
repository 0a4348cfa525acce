package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/guardrail"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/domain/review"
	"github.com/novaera/caprail/internal/domain/scoring"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/database"
)

const reviewHistoryLimit = 20

// ClientService handles client account profiles, their scores and reviews.
type ClientService struct {
	store  database.Store
	access *AccessService
}

// NewClientService creates a new client service.
func NewClientService(store database.Store, access *AccessService) *ClientService {
	return &ClientService{store: store, access: access}
}

// ClientSummary is a list row: the (possibly masked) profile plus its
// priority score and visibility flag.
type ClientSummary struct {
	client.Client
	PriorityScore  float64 `json:"priority_score"`
	CanViewRevenue bool    `json:"can_view_revenue"`
}

// List returns all clients sorted by priority score, highest first.
// Confidential fields are masked per viewer, and masked revenue scores as 0
// so restricted viewers cannot infer it from the ranking.
func (s *ClientService) List(ctx context.Context, viewer *user.User) ([]ClientSummary, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rows := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		canSee := s.access.CanViewConfidential(ctx, viewer, c.ID)
		visible := c
		if !canSee {
			visible = c.Masked()
		}
		rows = append(rows, ClientSummary{
			Client:         visible,
			PriorityScore:  scoring.PriorityScore(visible.Revenue, c.AIReadinessScore, c.LastDeliveryUpdate, now),
			CanViewRevenue: canSee,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PriorityScore > rows[j].PriorityScore
	})
	return rows, nil
}

// ClientDetail is the full single-client view: profile, scores, quadrant and
// guardrail evaluation.
type ClientDetail struct {
	client.Client
	PriorityScore  float64                `json:"priority_score"`
	HealthScore    int                    `json:"health_score"`
	Quadrant       scoring.Quadrant       `json:"quadrant"`
	Guardrails     guardrail.Result       `json:"guardrails"`
	Opportunities  []pipeline.Opportunity `json:"opportunities"`
	CanViewRevenue bool                   `json:"can_view_revenue"`
}

// Get returns a single client with derived scores, masked per viewer.
func (s *ClientService) Get(ctx context.Context, viewer *user.User, id int64) (*ClientDetail, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	opps, err := s.store.ListClientOpportunities(ctx, id)
	if err != nil {
		return nil, err
	}
	riskCount, err := s.store.CountClientUnacknowledgedFlags(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	canSee := s.access.CanViewConfidential(ctx, viewer, id)
	visible := *c
	if !canSee {
		visible = c.Masked()
	}

	return &ClientDetail{
		Client:         visible,
		PriorityScore:  scoring.PriorityScore(visible.Revenue, c.AIReadinessScore, c.LastDeliveryUpdate, now),
		HealthScore:    scoring.HealthScore(*c, riskCount, now),
		Quadrant:       scoring.TrustRevenueQuadrant(visible),
		Guardrails:     guardrail.Evaluate(*c, opps, now),
		Opportunities:  opps,
		CanViewRevenue: canSee,
	}, nil
}

// Create creates a client profile and its first opportunity. Only CEO and
// Strategy Lead may create clients. When the revenue split is unset it
// defaults to 70% services / 30% AI product.
func (s *ClientService) Create(ctx context.Context, actor *user.User, req *client.CreateRequest) (*client.Client, error) {
	if actor == nil || !actor.HasFullAccess() {
		return nil, fmt.Errorf("%w: only CEO or Strategy Lead can create clients", domain.ErrAccessDenied)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &client.Client{
		Name:                        req.Name,
		LegacySystems:               req.LegacySystems,
		AIReadinessScore:            req.AIReadinessScore,
		TrustLevel:                  req.TrustLevel,
		Revenue:                     req.Revenue,
		ServicesRevenue:             req.ServicesRevenue,
		AIProductRevenue:            req.AIProductRevenue,
		DataFoundationServiceActive: req.DataFoundationServiceActive,
		UseCaseDocumented:           req.UseCaseDocumented,
		DeliveryCapacityConfirmed:   req.DeliveryCapacityConfirmed,
		PriorPilotSuccess:           req.PriorPilotSuccess,
		BudgetConfirmed:             req.BudgetConfirmed,
		HandoffChecklistComplete:    req.HandoffChecklistComplete,
		EngagementStartDate:         req.EngagementStartDate,
		LastDeliveryUpdate:          time.Now().UTC(),
		AssignedToID:                req.AssignedToID,
		ApproverID:                  req.ApproverID,
		AIFeatureRequest:            req.AIFeatureRequest,
	}
	if c.Revenue > 0 && c.ServicesRevenue == 0 && c.AIProductRevenue == 0 {
		c.ServicesRevenue = c.Revenue * 0.7
		c.AIProductRevenue = c.Revenue * 0.3
	}

	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	opp := pipeline.New(c.ID, opportunityName(c.Name))
	if err := s.store.CreateOpportunity(ctx, &opp); err != nil {
		return nil, fmt.Errorf("create initial opportunity: %w", err)
	}
	return c, nil
}

// Update applies a partial update to a client profile. Only CEO and Strategy
// Lead may edit profiles.
func (s *ClientService) Update(ctx context.Context, actor *user.User, id int64, req client.UpdateRequest) (*client.Client, error) {
	if actor == nil || !actor.HasFullAccess() {
		return nil, fmt.Errorf("%w: only CEO or Strategy Lead can edit clients", domain.ErrAccessDenied)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(c)

	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// HealthRow pairs a client with its delivery health score.
type HealthRow struct {
	Client      client.Client `json:"client"`
	HealthScore int           `json:"health_score"`
	RiskCount   int           `json:"risk_count"`
}

// HealthReport returns all clients sorted by health score ascending, so the
// accounts most at risk come first.
func (s *ClientService) HealthReport(ctx context.Context, viewer *user.User) ([]HealthRow, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rows := make([]HealthRow, 0, len(clients))
	for _, c := range clients {
		riskCount, err := s.store.CountClientUnacknowledgedFlags(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		visible := c
		if !s.access.CanViewConfidential(ctx, viewer, c.ID) {
			visible = c.Masked()
		}
		rows = append(rows, HealthRow{
			Client:      visible,
			HealthScore: scoring.HealthScore(c, riskCount, now),
			RiskCount:   riskCount,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].HealthScore < rows[j].HealthScore
	})
	return rows, nil
}

// Guardrails evaluates the sales guardrails for one client.
func (s *ClientService) Guardrails(ctx context.Context, id int64) (*guardrail.Result, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	opps, err := s.store.ListClientOpportunities(ctx, id)
	if err != nil {
		return nil, err
	}
	res := guardrail.Evaluate(*c, opps, time.Now().UTC())
	return &res, nil
}

// AddReview appends a review entry to a client's history. The reviewer must
// be able to view the account.
func (s *ClientService) AddReview(ctx context.Context, reviewer *user.User, clientID int64, req review.CreateRequest) (*review.Review, error) {
	if !s.access.CanViewConfidential(ctx, reviewer, clientID) {
		return nil, fmt.Errorf("%w: no access to this client", domain.ErrAccessDenied)
	}
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	r := &review.Review{
		ClientID:     clientID,
		ReviewedByID: reviewer.ID,
		Notes:        req.Notes,
	}
	if err := s.store.CreateReview(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviews returns the most recent reviews for a client.
func (s *ClientService) ListReviews(ctx context.Context, viewer *user.User, clientID int64) ([]review.Review, error) {
	if !s.access.CanViewConfidential(ctx, viewer, clientID) {
		return nil, fmt.Errorf("%w: no access to this client", domain.ErrAccessDenied)
	}
	return s.store.ListClientReviews(ctx, clientID, reviewHistoryLimit)
}

// opportunityName abbreviates long client names for the kanban card.
func opportunityName(name string) string {
	if len(name) > 20 {
		return name[:20] + "..."
	}
	return name
}
