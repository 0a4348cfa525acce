package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/client"
)

func (s *Store) ListClients(ctx context.Context) ([]client.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id int64) (*client.Client, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)

	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get client %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get client %d: %w", id, err)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	useCases, err := jsonList(c.AIUseCases)
	if err != nil {
		return fmt.Errorf("marshal ai_use_cases: %w", err)
	}
	blockers, err := jsonList(c.TechnicalBlockers)
	if err != nil {
		return fmt.Errorf("marshal technical_blockers: %w", err)
	}
	stakeholders, err := jsonList(c.KeyStakeholders)
	if err != nil {
		return fmt.Errorf("marshal key_stakeholders: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO clients (name, legacy_systems, ai_readiness_score, trust_level,
			revenue, services_revenue, ai_product_revenue,
			data_foundation_service_active, use_case_documented, delivery_capacity_confirmed,
			prior_pilot_success, budget_confirmed, handoff_checklist_complete,
			engagement_start_date, last_delivery_update,
			ai_use_cases, technical_blockers, key_stakeholders, delivery_notes,
			assigned_to_id, approver_id, ai_feature_request)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at, updated_at`,
		c.Name, c.LegacySystems, c.AIReadinessScore, c.TrustLevel,
		c.Revenue, c.ServicesRevenue, c.AIProductRevenue,
		c.DataFoundationServiceActive, c.UseCaseDocumented, c.DeliveryCapacityConfirmed,
		c.PriorPilotSuccess, c.BudgetConfirmed, c.HandoffChecklistComplete,
		nullableTime(c.EngagementStartDate), nullableTime(c.LastDeliveryUpdate),
		useCases, blockers, stakeholders, c.DeliveryNotes,
		c.AssignedToID, c.ApproverID, c.AIFeatureRequest,
	)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE clients SET name = $2, legacy_systems = $3, ai_readiness_score = $4,
			trust_level = $5, revenue = $6, services_revenue = $7, ai_product_revenue = $8,
			data_foundation_service_active = $9, use_case_documented = $10,
			delivery_capacity_confirmed = $11, prior_pilot_success = $12,
			budget_confirmed = $13, handoff_checklist_complete = $14,
			engagement_start_date = $15, last_delivery_update = $16,
			assigned_to_id = $17, approver_id = $18, ai_feature_request = $19, updated_at = $20
		WHERE id = $1`,
		c.ID, c.Name, c.LegacySystems, c.AIReadinessScore,
		c.TrustLevel, c.Revenue, c.ServicesRevenue, c.AIProductRevenue,
		c.DataFoundationServiceActive, c.UseCaseDocumented,
		c.DeliveryCapacityConfirmed, c.PriorPilotSuccess,
		c.BudgetConfirmed, c.HandoffChecklistComplete,
		nullableTime(c.EngagementStartDate), nullableTime(c.LastDeliveryUpdate),
		c.AssignedToID, c.ApproverID, c.AIFeatureRequest, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update client %d: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateClientAnalysis persists only the note-analysis output fields.
func (s *Store) UpdateClientAnalysis(ctx context.Context, c *client.Client) error {
	useCases, err := jsonList(c.AIUseCases)
	if err != nil {
		return fmt.Errorf("marshal ai_use_cases: %w", err)
	}
	blockers, err := jsonList(c.TechnicalBlockers)
	if err != nil {
		return fmt.Errorf("marshal technical_blockers: %w", err)
	}
	stakeholders, err := jsonList(c.KeyStakeholders)
	if err != nil {
		return fmt.Errorf("marshal key_stakeholders: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE clients SET ai_use_cases = $2, technical_blockers = $3, key_stakeholders = $4,
			delivery_notes = $5, analysis_updated_at = $6, updated_at = now()
		WHERE id = $1`,
		c.ID, useCases, blockers, stakeholders, c.DeliveryNotes, nullableTime(c.AnalysisUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("update client analysis %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update client analysis %d: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}
