package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/lead"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/port/database"
)

// SeedService loads demo data for a fresh installation. Each table is only
// seeded when empty, so running seed twice is harmless.
type SeedService struct {
	store database.Store
}

// NewSeedService creates a new seed service.
func NewSeedService(store database.Store) *SeedService {
	return &SeedService{store: store}
}

// Run seeds demo clients with opportunities and the prospect lead list.
func (s *SeedService) Run(ctx context.Context) error {
	if err := s.seedClients(ctx); err != nil {
		return fmt.Errorf("seed clients: %w", err)
	}
	if err := s.seedLeads(ctx); err != nil {
		return fmt.Errorf("seed leads: %w", err)
	}
	return nil
}

type seedClient struct {
	name          string
	legacy        string
	readiness     int
	revenue       float64
	services      float64
	aiProduct     float64
	trust         int
	dataFound     bool
	useCase       bool
	capacity      bool
	priorPilot    bool
	startDaysAgo  int
	updateDaysAgo int
	stage         pipeline.Stage
}

func (s *SeedService) seedClients(ctx context.Context) error {
	existing, err := s.store.ListClients(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	demo := []seedClient{
		{
			name: "California Dept of Public Services", legacy: "Legacy ERP, Custom case management",
			readiness: 65, revenue: 120000, services: 84000, aiProduct: 36000, trust: 75,
			startDaysAgo: 200, updateDaysAgo: 5, stage: pipeline.StageProposal,
		},
		{
			name: "State Health Authority", legacy: "Mainframe, Spreadsheet reporting",
			readiness: 45, revenue: 85000, services: 85000, aiProduct: 0, trust: 40,
			startDaysAgo: 100, updateDaysAgo: 14, stage: pipeline.StageDiscovery,
		},
		{
			name: "Regional Education Agency", legacy: "Student information system, Paper forms",
			readiness: 80, revenue: 200000, services: 120000, aiProduct: 80000, trust: 85,
			dataFound: true, useCase: true, capacity: true, priorPilot: true,
			startDaysAgo: 400, updateDaysAgo: 2, stage: pipeline.StageQualifiedLead,
		},
	}

	for _, d := range demo {
		c := &client.Client{
			Name:                        d.name,
			LegacySystems:               d.legacy,
			AIReadinessScore:            d.readiness,
			TrustLevel:                  d.trust,
			Revenue:                     d.revenue,
			ServicesRevenue:             d.services,
			AIProductRevenue:            d.aiProduct,
			DataFoundationServiceActive: d.dataFound,
			UseCaseDocumented:           d.useCase,
			DeliveryCapacityConfirmed:   d.capacity,
			PriorPilotSuccess:           d.priorPilot,
			EngagementStartDate:         now.AddDate(0, 0, -d.startDaysAgo),
			LastDeliveryUpdate:          now.AddDate(0, 0, -d.updateDaysAgo),
		}
		if err := s.store.CreateClient(ctx, c); err != nil {
			return err
		}

		opp := pipeline.Opportunity{
			ClientID:     c.ID,
			Name:         opportunityName(c.Name),
			Stage:        d.stage,
			PrimaryOwner: pipeline.Owner(d.stage),
		}
		if err := s.store.CreateOpportunity(ctx, &opp); err != nil {
			return err
		}
	}
	slog.Info("seeded demo clients", "count", len(demo))
	return nil
}

// caDepartments is the prospect list of California government departments.
var caDepartments = []string{
	"Dept of Public Services", "State Health Authority", "Regional Education Agency",
	"Dept of Transportation", "Dept of Corrections", "Dept of Motor Vehicles",
	"Dept of Water Resources", "Dept of Parks & Recreation", "Dept of Finance",
	"Dept of General Services", "Dept of Technology", "Dept of Human Resources",
	"Dept of Social Services", "Dept of Child Support", "Dept of Aging",
	"Dept of Veterans Affairs", "Dept of Housing", "Dept of Consumer Affairs",
	"Dept of Insurance", "Dept of Tax & Fee Administration", "Franchise Tax Board",
	"Employment Development Dept", "Dept of Industrial Relations",
	"Dept of Food & Agriculture", "Dept of Forestry", "Cal Fire",
	"Dept of Fish & Wildlife", "State Lands Commission", "Coastal Commission",
	"Air Resources Board", "Energy Commission", "Public Utilities Commission",
	"Dept of Justice", "Dept of Public Health", "Dept of Health Care Services",
	"Dept of State Hospitals", "Dept of Developmental Services",
	"Dept of Rehabilitation", "Dept of Education", "Community Colleges",
	"University of California", "California State University",
	"Dept of Alcoholic Beverage Control", "Dept of Cannabis Control",
	"Board of Equalization", "State Controller", "State Treasurer",
	"Secretary of State", "Attorney General", "Governor's Office",
}

func (s *SeedService) seedLeads(ctx context.Context) error {
	existing, err := s.store.ListLeads(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]int64, len(clients))
	for _, c := range clients {
		byName[c.Name] = c.ID
	}

	for _, dept := range caDepartments {
		name := "California " + dept
		l := &lead.Lead{
			Name:       name,
			Department: dept,
			Status:     lead.StatusNew,
			Notes:      "CA government - AI operations opportunity",
		}
		if id, ok := byName[name]; ok {
			l.Status = lead.StatusConverted
			l.ConvertedClientID = &id
		} else if id, ok := byName[dept]; ok {
			l.Status = lead.StatusConverted
			l.ConvertedClientID = &id
		}
		if err := s.store.CreateLead(ctx, l); err != nil {
			return err
		}
	}
	slog.Info("seeded prospect leads", "count", len(caDepartments))
	return nil
}
