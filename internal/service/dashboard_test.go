package service

import (
	"context"
	"testing"
	"time"

	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/risk"
	"github.com/novaera/caprail/internal/domain/scoring"
	"github.com/novaera/caprail/internal/domain/user"
)

// mapCache is an in-memory cache.Cache for testing.
type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func dashboardFixture() *mockStore {
	return &mockStore{
		clients: []client.Client{
			{ID: 1, Name: "Acme", TrustLevel: 80, Revenue: 120000, ServicesRevenue: 84000, AIProductRevenue: 36000,
				AIReadinessScore: 65, DataFoundationServiceActive: true, UseCaseDocumented: true,
				DeliveryCapacityConfirmed: true, HandoffChecklistComplete: true,
				EngagementStartDate: time.Now().UTC().AddDate(-1, 0, 0)},
			{ID: 2, Name: "LowTrust", TrustLevel: 30, Revenue: 80000, ServicesRevenue: 80000,
				AIReadinessScore: 45, HandoffChecklistComplete: true},
		},
		flags: []risk.Flag{{ID: 1, ClientID: 2, Message: "slipping"}},
	}
}

func newDashboardService(store *mockStore, c *mapCache) *DashboardService {
	var svc *DashboardService
	if c == nil {
		svc = NewDashboardService(store, NewAccessService(store), nil, 0, nil)
	} else {
		svc = NewDashboardService(store, NewAccessService(store), c, time.Minute, nil)
	}
	return svc
}

func TestDashboardOverview_FullAccess(t *testing.T) {
	store := dashboardFixture()
	svc := newDashboardService(store, nil)

	out, err := svc.Overview(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.TotalRevenue != 200000 {
		t.Errorf("total revenue = %v, want 200000", out.TotalRevenue)
	}
	if out.ServicesRevenue != 164000 || out.AIRevenue != 36000 {
		t.Errorf("split = %v/%v, want 164000/36000", out.ServicesRevenue, out.AIRevenue)
	}
	// (65 + 45) / 2
	if out.AccountHealth != 55.0 {
		t.Errorf("account health = %v, want 55.0", out.AccountHealth)
	}
	if out.UnackRiskFlags != 1 {
		t.Errorf("unack flags = %d, want 1", out.UnackRiskFlags)
	}
	if !out.CanViewRevenue {
		t.Error("CEO cannot view revenue")
	}
}

func TestDashboardOverview_Matrix(t *testing.T) {
	store := dashboardFixture()
	svc := newDashboardService(store, nil)

	out, err := svc.Overview(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Acme: trust 80, ai share 30% exactly, high/high.
	hh := out.TrustRevenueMatrix[scoring.HighTrustHighAI]
	if len(hh) != 1 || hh[0].Name != "Acme" {
		t.Fatalf("high/high = %+v, want Acme", hh)
	}
	if hh[0].AIShare != 30.0 {
		t.Errorf("ai share = %v, want 30.0", hh[0].AIShare)
	}
	// LowTrust: trust 30, no AI revenue.
	ll := out.TrustRevenueMatrix[scoring.LowTrustLowAI]
	if len(ll) != 1 || ll[0].Name != "LowTrust" {
		t.Errorf("low/low = %+v, want LowTrust", ll)
	}
	// All four quadrants are present even when empty.
	if out.TrustRevenueMatrix[scoring.LowTrustHighAI] == nil {
		t.Error("empty quadrant missing from matrix")
	}
}

func TestDashboardOverview_RestrictedViewer(t *testing.T) {
	store := dashboardFixture()
	svc := newDashboardService(store, nil)

	out, err := svc.Overview(context.Background(), employeeUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.TotalRevenue != 0 || out.ServicesRevenue != 0 || out.AIRevenue != 0 {
		t.Error("revenue visible to restricted viewer")
	}
	if out.RevenueVelocity != 0 {
		t.Error("revenue velocity visible to restricted viewer")
	}
	if out.CanViewRevenue {
		t.Error("restricted viewer flagged as revenue viewer")
	}
	// Masked revenue means AI share is always 0 for restricted viewers: the
	// matrix degrades to the trust axis only.
	for q, entries := range out.TrustRevenueMatrix {
		for _, e := range entries {
			if e.AIShare != 0 {
				t.Errorf("quadrant %s entry %s leaks ai share %v", q, e.Name, e.AIShare)
			}
		}
	}
	// Trust stays visible.
	if len(out.TrustRevenueMatrix[scoring.HighTrustLowAI]) != 1 {
		t.Errorf("high trust bucket = %+v, want Acme on the trust axis",
			out.TrustRevenueMatrix[scoring.HighTrustLowAI])
	}
}

func TestDashboardOverview_SplitFallback(t *testing.T) {
	// No per-stream breakdown recorded anywhere: the 70/30 estimate applies.
	store := &mockStore{clients: []client.Client{
		{ID: 1, Name: "A", Revenue: 100000, TrustLevel: 70, HandoffChecklistComplete: true},
	}}
	svc := newDashboardService(store, nil)

	out, err := svc.Overview(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ServicesRevenue != 70000 || out.AIRevenue != 30000 {
		t.Errorf("split = %v/%v, want 70000/30000", out.ServicesRevenue, out.AIRevenue)
	}
}

func TestDashboardOverview_Violations(t *testing.T) {
	store := dashboardFixture()
	// Give LowTrust an unaudited AI product so guardrails fire.
	store.clients[1].AIProductRevenue = 10000
	svc := newDashboardService(store, nil)

	out, err := svc.Overview(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Violations) != 1 || out.Violations[0].Client.Name != "LowTrust" {
		t.Errorf("violations = %+v, want LowTrust only", out.Violations)
	}
}

func TestDashboardOverview_ViolationsMaskedForRestrictedViewer(t *testing.T) {
	store := dashboardFixture()
	store.clients[1].AIProductRevenue = 10000
	svc := newDashboardService(store, nil)

	out, err := svc.Overview(context.Background(), employeeUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(out.Violations))
	}

	// The violation is reported, but the embedded client row carries none of
	// the confidential fields.
	v := out.Violations[0].Client
	if v.Name != "LowTrust" {
		t.Errorf("client name = %q, want LowTrust", v.Name)
	}
	if v.Revenue != 0 || v.ServicesRevenue != 0 || v.AIProductRevenue != 0 {
		t.Errorf("revenue leaked to restricted viewer: %v/%v/%v",
			v.Revenue, v.ServicesRevenue, v.AIProductRevenue)
	}
	if v.DeliveryNotes != "" || v.AIUseCases != nil || v.KeyStakeholders != nil {
		t.Error("analysis output leaked to restricted viewer")
	}
	if len(out.Violations[0].Violations) == 0 {
		t.Error("masking dropped the violation messages")
	}
}

func TestDashboardOverview_Cached(t *testing.T) {
	store := dashboardFixture()
	cache := newMapCache()
	svc := newDashboardService(store, cache)
	ctx := context.Background()

	first, err := svc.Overview(ctx, ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the store has no effect until the cache entry expires.
	store.clients = nil
	second, err := svc.Overview(ctx, ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalRevenue != first.TotalRevenue {
		t.Errorf("cached revenue = %v, want %v", second.TotalRevenue, first.TotalRevenue)
	}

	// Full and restricted views cache separately.
	restricted, err := svc.Overview(ctx, employeeUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restricted.TotalRevenue != 0 {
		t.Error("restricted viewer served the full-access cache entry")
	}
}

func TestDashboardGuardrails(t *testing.T) {
	store := dashboardFixture()
	store.clients[1].AIProductRevenue = 10000
	svc := newDashboardService(store, nil)

	report, err := svc.Guardrails(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Definitions) != 9 {
		t.Errorf("definitions = %d, want 9", len(report.Definitions))
	}
	if len(report.Violations) != 1 {
		t.Errorf("violations = %d, want 1", len(report.Violations))
	}
	if report.Violations[0].Client.Revenue != 80000 {
		t.Errorf("full-access revenue = %v, want 80000", report.Violations[0].Client.Revenue)
	}
}

func TestDashboardGuardrails_MaskedPerViewer(t *testing.T) {
	store := dashboardFixture()
	store.clients[1].AIProductRevenue = 10000
	svc := newDashboardService(store, nil)
	ctx := context.Background()

	report, err := svc.Guardrails(ctx, employeeUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(report.Violations))
	}
	if report.Violations[0].Client.Revenue != 0 {
		t.Errorf("revenue leaked to ungranted employee: %v", report.Violations[0].Client.Revenue)
	}

	// A per-client grant restores visibility for that client only.
	store.perms = append(store.perms, user.ClientPermission{UserID: 2, ClientID: 2})
	report, err = svc.Guardrails(ctx, employeeUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Violations[0].Client.Revenue != 80000 {
		t.Errorf("granted employee revenue = %v, want 80000", report.Violations[0].Client.Revenue)
	}
}
