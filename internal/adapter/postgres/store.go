package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novaera/caprail/internal/domain/client"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const clientColumns = `id, name, legacy_systems, ai_readiness_score, trust_level,
	revenue, services_revenue, ai_product_revenue,
	data_foundation_service_active, use_case_documented, delivery_capacity_confirmed,
	prior_pilot_success, budget_confirmed, handoff_checklist_complete,
	engagement_start_date, last_delivery_update,
	ai_use_cases, technical_blockers, key_stakeholders, delivery_notes, analysis_updated_at,
	assigned_to_id, approver_id, ai_feature_request, created_at, updated_at`

// scanClient reads one client row. Nullable timestamps map to the zero
// time.Time; JSONB lists unmarshal into string slices.
func scanClient(row pgx.Row) (client.Client, error) {
	var c client.Client
	var engagementStart, lastUpdate, analysisAt *time.Time
	var useCases, blockers, stakeholders []byte

	err := row.Scan(
		&c.ID, &c.Name, &c.LegacySystems, &c.AIReadinessScore, &c.TrustLevel,
		&c.Revenue, &c.ServicesRevenue, &c.AIProductRevenue,
		&c.DataFoundationServiceActive, &c.UseCaseDocumented, &c.DeliveryCapacityConfirmed,
		&c.PriorPilotSuccess, &c.BudgetConfirmed, &c.HandoffChecklistComplete,
		&engagementStart, &lastUpdate,
		&useCases, &blockers, &stakeholders, &c.DeliveryNotes, &analysisAt,
		&c.AssignedToID, &c.ApproverID, &c.AIFeatureRequest, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return client.Client{}, err
	}

	if engagementStart != nil {
		c.EngagementStartDate = *engagementStart
	}
	if lastUpdate != nil {
		c.LastDeliveryUpdate = *lastUpdate
	}
	if analysisAt != nil {
		c.AnalysisUpdatedAt = *analysisAt
	}
	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{useCases, &c.AIUseCases},
		{blockers, &c.TechnicalBlockers},
		{stakeholders, &c.KeyStakeholders},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return client.Client{}, fmt.Errorf("unmarshal analysis list: %w", err)
			}
		}
	}
	return c, nil
}

// nullableTime maps a zero time.Time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// jsonList marshals a string slice for a JSONB column, nil becoming [].
func jsonList(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
