package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/novaera/caprail/internal/adapter/otel"
	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/guardrail"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/domain/scoring"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/cache"
	"github.com/novaera/caprail/internal/port/database"
)

// DashboardService aggregates the portfolio overview. Results are cached
// briefly per visibility level since every page load hits this.
type DashboardService struct {
	store    database.Store
	access   *AccessService
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *otel.Metrics
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store database.Store, access *AccessService, c cache.Cache, ttl time.Duration, metrics *otel.Metrics) *DashboardService {
	return &DashboardService{store: store, access: access, cache: c, cacheTTL: ttl, metrics: metrics}
}

// MatrixEntry is one client's position in the trust/revenue matrix.
type MatrixEntry struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Trust   int     `json:"trust"`
	AIShare float64 `json:"ai_pct"`
}

// Overview is the aggregated dashboard payload.
type Overview struct {
	TotalRevenue    float64 `json:"total_revenue"`
	ServicesRevenue float64 `json:"services_revenue"`
	AIRevenue       float64 `json:"ai_revenue"`
	RevenueVelocity float64 `json:"revenue_velocity"`
	AccountHealth   float64 `json:"account_health"`
	UnackRiskFlags  int     `json:"unack_risk_flags"`

	TrustRevenueMatrix map[scoring.Quadrant][]MatrixEntry `json:"trust_revenue_matrix"`
	Violations         []guardrail.ClientViolations       `json:"guardrail_violations"`
	CanViewRevenue     bool                               `json:"can_view_revenue"`
}

// Overview builds the dashboard for the viewer. Revenue figures are zeroed
// for viewers without full access; the 70/30 split fallback applies when no
// per-stream breakdown was recorded.
func (s *DashboardService) Overview(ctx context.Context, viewer *user.User) (*Overview, error) {
	hasFull := viewer != nil && viewer.HasFullAccess()

	cacheKey := "dashboard:restricted"
	if hasFull {
		cacheKey = "dashboard:full"
	}
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var cached Overview
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var (
		clients    []client.Client
		opps       []pipeline.Opportunity
		unackFlags int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.store.ListClients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		opps, err = s.store.ListOpportunities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		unackFlags, err = s.store.CountUnacknowledgedFlags(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oppsByClient := make(map[int64][]pipeline.Opportunity, len(clients))
	for _, o := range opps {
		oppsByClient[o.ClientID] = append(oppsByClient[o.ClientID], o)
	}

	// Guardrails evaluate against the raw snapshot, but the embedded client
	// rows must not reach restricted viewers unmasked.
	violations := guardrail.ViolationsForClients(clients, oppsByClient, now)
	if !hasFull {
		for i := range violations {
			violations[i].Client = violations[i].Client.Masked()
		}
	}

	out := &Overview{
		AccountHealth:      scoring.AccountHealth(clients),
		UnackRiskFlags:     unackFlags,
		TrustRevenueMatrix: buildMatrix(clients, hasFull),
		Violations:         violations,
		CanViewRevenue:     hasFull,
	}
	if s.metrics != nil {
		s.metrics.GuardrailChecks.Add(ctx, int64(len(clients)))
	}

	if hasFull {
		for _, c := range clients {
			out.TotalRevenue += c.Revenue
			out.ServicesRevenue += c.ServicesRevenue
			out.AIRevenue += c.AIProductRevenue
		}
		if out.ServicesRevenue == 0 && out.AIRevenue == 0 {
			out.ServicesRevenue = out.TotalRevenue * 0.7
			out.AIRevenue = out.TotalRevenue * 0.3
		}
		out.RevenueVelocity = scoring.RevenueVelocity(clients, now)
	}

	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				slog.Debug("dashboard cache set failed", "error", err)
			}
		}
	}
	return out, nil
}

// buildMatrix buckets clients into the four trust/revenue quadrants. Without
// revenue visibility the AI share is always 0, so restricted viewers only see
// the trust axis.
func buildMatrix(clients []client.Client, includeRevenue bool) map[scoring.Quadrant][]MatrixEntry {
	matrix := map[scoring.Quadrant][]MatrixEntry{
		scoring.HighTrustLowAI:  {},
		scoring.LowTrustHighAI:  {},
		scoring.HighTrustHighAI: {},
		scoring.LowTrustLowAI:   {},
	}
	for _, c := range clients {
		visible := c
		if !includeRevenue {
			visible = c.Masked()
		}
		q := scoring.TrustRevenueQuadrant(visible)
		matrix[q] = append(matrix[q], MatrixEntry{
			ID:      c.ID,
			Name:    c.Name,
			Trust:   c.TrustLevel,
			AIShare: roundShare(scoring.AIRevenueShare(visible)),
		})
	}
	return matrix
}

func roundShare(v float64) float64 {
	return math.Round(v*10) / 10
}

// GuardrailReport is the policy report: every rule definition plus the
// clients currently in violation.
type GuardrailReport struct {
	Definitions []guardrail.Definition       `json:"definitions"`
	Violations  []guardrail.ClientViolations `json:"violations"`
}

// Guardrails builds the policy report across all clients. Violating client
// rows are masked per viewer, like the health report.
func (s *DashboardService) Guardrails(ctx context.Context, viewer *user.User) (*GuardrailReport, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	opps, err := s.store.ListOpportunities(ctx)
	if err != nil {
		return nil, err
	}

	oppsByClient := make(map[int64][]pipeline.Opportunity, len(clients))
	for _, o := range opps {
		oppsByClient[o.ClientID] = append(oppsByClient[o.ClientID], o)
	}

	if s.metrics != nil {
		s.metrics.GuardrailChecks.Add(ctx, int64(len(clients)))
	}

	violations := guardrail.ViolationsForClients(clients, oppsByClient, time.Now().UTC())
	for i := range violations {
		if !s.access.CanViewConfidential(ctx, viewer, violations[i].Client.ID) {
			violations[i].Client = violations[i].Client.Masked()
		}
	}
	return &GuardrailReport{
		Definitions: guardrail.Definitions,
		Violations:  violations,
	}, nil
}
