package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/lead"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/domain/review"
	"github.com/novaera/caprail/internal/domain/risk"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/database"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for
// testing. Created records get IDs starting at 101 so they never clash with
// seeded fixtures.
type mockStore struct {
	clients []client.Client
	opps    []pipeline.Opportunity
	tickets []pipeline.Ticket
	leads   []lead.Lead
	flags   []risk.Flag
	reviews []review.Review
	users   []user.User
	perms   []user.ClientPermission

	nextID int64

	// Error hooks, set these to inject failures.
	listClientsErr error
	getClientErr   error
}

func (m *mockStore) id() int64 {
	m.nextID++
	return 100 + m.nextID
}

// --- Clients ---

func (m *mockStore) ListClients(_ context.Context) ([]client.Client, error) {
	return m.clients, m.listClientsErr
}

func (m *mockStore) GetClient(_ context.Context, id int64) (*client.Client, error) {
	if m.getClientErr != nil {
		return nil, m.getClientErr
	}
	for i := range m.clients {
		if m.clients[i].ID == id {
			c := m.clients[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateClient(_ context.Context, c *client.Client) error {
	c.ID = m.id()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	m.clients = append(m.clients, *c)
	return nil
}

func (m *mockStore) UpdateClient(_ context.Context, c *client.Client) error {
	for i := range m.clients {
		if m.clients[i].ID == c.ID {
			m.clients[i] = *c
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) UpdateClientAnalysis(ctx context.Context, c *client.Client) error {
	return m.UpdateClient(ctx, c)
}

// --- Opportunities ---

func (m *mockStore) ListOpportunities(_ context.Context) ([]pipeline.Opportunity, error) {
	return m.opps, nil
}

func (m *mockStore) ListClientOpportunities(_ context.Context, clientID int64) ([]pipeline.Opportunity, error) {
	var out []pipeline.Opportunity
	for _, o := range m.opps {
		if o.ClientID == clientID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockStore) GetOpportunity(_ context.Context, id int64) (*pipeline.Opportunity, error) {
	for i := range m.opps {
		if m.opps[i].ID == id {
			o := m.opps[i]
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateOpportunity(_ context.Context, o *pipeline.Opportunity) error {
	o.ID = m.id()
	o.CreatedAt = time.Now().UTC()
	m.opps = append(m.opps, *o)
	return nil
}

func (m *mockStore) UpdateOpportunityStage(_ context.Context, id int64, stage pipeline.Stage, owner pipeline.Role) error {
	for i := range m.opps {
		if m.opps[i].ID == id {
			m.opps[i].Stage = stage
			m.opps[i].PrimaryOwner = owner
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Tickets ---

func (m *mockStore) CreateTicket(_ context.Context, t *pipeline.Ticket) error {
	t.ID = m.id()
	t.CreatedAt = time.Now().UTC()
	m.tickets = append(m.tickets, *t)
	return nil
}

func (m *mockStore) ResolveTicket(_ context.Context, id int64) error {
	for i := range m.tickets {
		if m.tickets[i].ID == id {
			m.tickets[i].Resolved = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListOpportunityTickets(_ context.Context, opportunityID int64) ([]pipeline.Ticket, error) {
	var out []pipeline.Ticket
	for _, t := range m.tickets {
		if t.OpportunityID == opportunityID {
			out = append(out, t)
		}
	}
	return out, nil
}

// --- Leads ---

func (m *mockStore) ListLeads(_ context.Context) ([]lead.Lead, error) {
	return m.leads, nil
}

func (m *mockStore) GetLead(_ context.Context, id int64) (*lead.Lead, error) {
	for i := range m.leads {
		if m.leads[i].ID == id {
			l := m.leads[i]
			return &l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateLead(_ context.Context, l *lead.Lead) error {
	l.ID = m.id()
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	m.leads = append(m.leads, *l)
	return nil
}

func (m *mockStore) UpdateLead(_ context.Context, l *lead.Lead) error {
	for i := range m.leads {
		if m.leads[i].ID == l.ID {
			m.leads[i] = *l
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CountConvertedLeads(_ context.Context) (int, error) {
	n := 0
	for _, l := range m.leads {
		if l.ConvertedClientID != nil {
			n++
		}
	}
	return n, nil
}

// --- Risk flags ---

func (m *mockStore) ListUnacknowledgedFlags(_ context.Context) ([]risk.Flag, error) {
	var out []risk.Flag
	for _, f := range m.flags {
		if !f.Acknowledged {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockStore) CountUnacknowledgedFlags(ctx context.Context) (int, error) {
	flags, _ := m.ListUnacknowledgedFlags(ctx)
	return len(flags), nil
}

func (m *mockStore) CountClientUnacknowledgedFlags(_ context.Context, clientID int64) (int, error) {
	n := 0
	for _, f := range m.flags {
		if f.ClientID == clientID && !f.Acknowledged {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) GetRiskFlag(_ context.Context, id int64) (*risk.Flag, error) {
	for i := range m.flags {
		if m.flags[i].ID == id {
			f := m.flags[i]
			return &f, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateRiskFlag(_ context.Context, f *risk.Flag) error {
	f.ID = m.id()
	f.CreatedAt = time.Now().UTC()
	m.flags = append(m.flags, *f)
	return nil
}

func (m *mockStore) AcknowledgeRiskFlag(_ context.Context, id int64) error {
	for i := range m.flags {
		if m.flags[i].ID == id {
			m.flags[i].Acknowledged = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Reviews ---

func (m *mockStore) CreateReview(_ context.Context, r *review.Review) error {
	r.ID = m.id()
	r.ReviewedAt = time.Now().UTC()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *mockStore) ListClientReviews(_ context.Context, clientID int64, limit int) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.reviews {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Users ---

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.ID = m.id()
	u.CreatedAt = time.Now().UTC()
	m.users = append(m.users, *u)
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id int64) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	return m.users, nil
}

func (m *mockStore) UpdateUserPassword(_ context.Context, id int64, passwordHash string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Client permissions ---

func (m *mockStore) GrantPermission(_ context.Context, p *user.ClientPermission) error {
	for _, existing := range m.perms {
		if existing.UserID == p.UserID && existing.ClientID == p.ClientID {
			return nil
		}
	}
	p.ID = m.id()
	p.GrantedAt = time.Now().UTC()
	m.perms = append(m.perms, *p)
	return nil
}

func (m *mockStore) RevokePermission(_ context.Context, userID, clientID int64) error {
	for i := range m.perms {
		if m.perms[i].UserID == userID && m.perms[i].ClientID == clientID {
			m.perms = append(m.perms[:i], m.perms[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) HasPermission(_ context.Context, userID, clientID int64) (bool, error) {
	for _, p := range m.perms {
		if p.UserID == userID && p.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) ListClientPermissions(_ context.Context, clientID int64) ([]user.ClientPermission, error) {
	var out []user.ClientPermission
	for _, p := range m.perms {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- Test fixtures ---

func ceoUser() *user.User {
	return &user.User{ID: 1, Email: "ceo@test.com", Name: "CEO", Role: user.RoleCEO}
}

func employeeUser() *user.User {
	return &user.User{ID: 2, Email: "emp@test.com", Name: "Employee", Role: user.RoleEmployee}
}

func newClientService(store *mockStore) *ClientService {
	return NewClientService(store, NewAccessService(store))
}

// --- ClientService tests ---

func TestClientServiceList_MasksForEmployee(t *testing.T) {
	store := &mockStore{clients: []client.Client{
		{ID: 1, Name: "Acme", Revenue: 120000, ServicesRevenue: 84000, AIProductRevenue: 36000, AIReadinessScore: 65},
	}}
	svc := newClientService(store)

	rows, err := svc.List(context.Background(), employeeUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Revenue != 0 || rows[0].ServicesRevenue != 0 {
		t.Error("revenue not masked for employee")
	}
	if rows[0].CanViewRevenue {
		t.Error("employee reported as revenue viewer")
	}
	// Masked revenue yields a zero priority score so ranking leaks nothing.
	if rows[0].PriorityScore != 0 {
		t.Errorf("priority score = %v, want 0 for masked row", rows[0].PriorityScore)
	}
}

func TestClientServiceList_SortedByPriority(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -1)
	stale := time.Now().UTC().AddDate(0, 0, -100)
	store := &mockStore{clients: []client.Client{
		{ID: 1, Name: "Stale", Revenue: 100000, AIReadinessScore: 80, LastDeliveryUpdate: stale},
		{ID: 2, Name: "Fresh", Revenue: 100000, AIReadinessScore: 80, LastDeliveryUpdate: recent},
	}}
	svc := newClientService(store)

	rows, err := svc.List(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Name != "Fresh" || rows[1].Name != "Stale" {
		t.Errorf("order = [%s, %s], want recently-touched first", rows[0].Name, rows[1].Name)
	}
	if !rows[0].CanViewRevenue {
		t.Error("CEO should view revenue")
	}
}

func TestClientServiceGet(t *testing.T) {
	store := &mockStore{
		clients: []client.Client{{
			ID: 1, Name: "Acme", Revenue: 100, TrustLevel: 70,
			AIReadinessScore:            60,
			DataFoundationServiceActive: true,
			UseCaseDocumented:           true,
			DeliveryCapacityConfirmed:   true,
			HandoffChecklistComplete:    true,
			EngagementStartDate:         time.Now().UTC().AddDate(-1, 0, 0),
		}},
		opps:  []pipeline.Opportunity{{ID: 10, ClientID: 1, Stage: pipeline.StageDiscovery}},
		flags: []risk.Flag{{ID: 20, ClientID: 1}},
	}
	svc := newClientService(store)

	got, err := svc.Get(context.Background(), ceoUser(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Opportunities) != 1 {
		t.Errorf("opportunities = %d, want 1", len(got.Opportunities))
	}
	// 60 readiness - 10 for the open flag.
	if got.HealthScore != 50 {
		t.Errorf("health score = %d, want 50", got.HealthScore)
	}
	if !got.Guardrails.OK {
		t.Errorf("unexpected guardrail violations: %v", got.Guardrails.Violations)
	}
}

func TestClientServiceGetNotFound(t *testing.T) {
	svc := newClientService(&mockStore{})
	_, err := svc.Get(context.Background(), ceoUser(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClientServiceCreate_RequiresFullAccess(t *testing.T) {
	svc := newClientService(&mockStore{})
	_, err := svc.Create(context.Background(), employeeUser(), &client.CreateRequest{Name: "X"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("err = %v, want ErrAccessDenied", err)
	}
}

func TestClientServiceCreate_RevenueSplitFallback(t *testing.T) {
	store := &mockStore{}
	svc := newClientService(store)

	c, err := svc.Create(context.Background(), ceoUser(), &client.CreateRequest{
		Name:    "Acme",
		Revenue: 100000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ServicesRevenue != 70000 || c.AIProductRevenue != 30000 {
		t.Errorf("split = %v/%v, want 70000/30000", c.ServicesRevenue, c.AIProductRevenue)
	}

	// The first opportunity is created alongside the profile.
	if len(store.opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(store.opps))
	}
	if store.opps[0].Stage != pipeline.StageQualifiedLead {
		t.Errorf("stage = %s, want qualified_lead", store.opps[0].Stage)
	}
}

func TestClientServiceCreate_ExplicitSplitKept(t *testing.T) {
	svc := newClientService(&mockStore{})
	c, err := svc.Create(context.Background(), ceoUser(), &client.CreateRequest{
		Name:             "Acme",
		Revenue:          100000,
		ServicesRevenue:  90000,
		AIProductRevenue: 10000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ServicesRevenue != 90000 || c.AIProductRevenue != 10000 {
		t.Errorf("explicit split overridden: %v/%v", c.ServicesRevenue, c.AIProductRevenue)
	}
}

func TestClientServiceUpdate(t *testing.T) {
	store := &mockStore{clients: []client.Client{{ID: 1, Name: "Old", TrustLevel: 40}}}
	svc := newClientService(store)

	trust := 80
	got, err := svc.Update(context.Background(), ceoUser(), 1, client.UpdateRequest{TrustLevel: &trust})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TrustLevel != 80 {
		t.Errorf("trust = %d, want 80", got.TrustLevel)
	}
	if got.Name != "Old" {
		t.Errorf("name changed unexpectedly: %s", got.Name)
	}
	if store.clients[0].TrustLevel != 80 {
		t.Error("update not persisted")
	}
}

func TestClientServiceHealthReport_WorstFirst(t *testing.T) {
	store := &mockStore{
		clients: []client.Client{
			{ID: 1, Name: "Healthy", AIReadinessScore: 90},
			{ID: 2, Name: "AtRisk", AIReadinessScore: 30},
		},
		flags: []risk.Flag{{ID: 5, ClientID: 2}},
	}
	svc := newClientService(store)

	rows, err := svc.HealthReport(context.Background(), ceoUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Client.Name != "AtRisk" {
		t.Errorf("first row = %s, want the lowest-scoring account", rows[0].Client.Name)
	}
	if rows[0].RiskCount != 1 {
		t.Errorf("risk count = %d, want 1", rows[0].RiskCount)
	}
}

func TestClientServiceReviews(t *testing.T) {
	store := &mockStore{clients: []client.Client{{ID: 1, Name: "Acme"}}}
	svc := newClientService(store)

	// Employee without a grant cannot review.
	_, err := svc.AddReview(context.Background(), employeeUser(), 1, review.CreateRequest{Notes: "checked"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}

	r, err := svc.AddReview(context.Background(), ceoUser(), 1, review.CreateRequest{Notes: "quarterly check"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ReviewedByID != ceoUser().ID {
		t.Errorf("reviewer = %d, want %d", r.ReviewedByID, ceoUser().ID)
	}

	got, err := svc.ListReviews(context.Background(), ceoUser(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Notes != "quarterly check" {
		t.Errorf("reviews = %+v", got)
	}
}

func TestOpportunityName(t *testing.T) {
	if got := opportunityName("Short"); got != "Short" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("x", 30)
	if got := opportunityName(long); got != strings.Repeat("x", 20)+"..." {
		t.Errorf("got %q", got)
	}
}
