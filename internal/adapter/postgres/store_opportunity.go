package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/pipeline"
)

const opportunityColumns = `id, client_id, name, stage, primary_owner, created_at`

func scanOpportunity(row pgx.Row) (pipeline.Opportunity, error) {
	var o pipeline.Opportunity
	err := row.Scan(&o.ID, &o.ClientID, &o.Name, &o.Stage, &o.PrimaryOwner, &o.CreatedAt)
	return o, err
}

func (s *Store) ListOpportunities(ctx context.Context) ([]pipeline.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []pipeline.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func (s *Store) ListClientOpportunities(ctx context.Context, clientID int64) ([]pipeline.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE client_id = $1 ORDER BY created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client opportunities: %w", err)
	}
	defer rows.Close()

	var opps []pipeline.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func (s *Store) GetOpportunity(ctx context.Context, id int64) (*pipeline.Opportunity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)

	o, err := scanOpportunity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get opportunity %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get opportunity %d: %w", id, err)
	}
	return &o, nil
}

func (s *Store) CreateOpportunity(ctx context.Context, o *pipeline.Opportunity) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO opportunities (client_id, name, stage, primary_owner)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		o.ClientID, o.Name, o.Stage, o.PrimaryOwner,
	)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	return nil
}

// UpdateOpportunityStage writes stage and primary owner in one statement;
// the owner-mirrors-stage invariant must never tear across rows.
func (s *Store) UpdateOpportunityStage(ctx context.Context, id int64, stage pipeline.Stage, owner pipeline.Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET stage = $2, primary_owner = $3 WHERE id = $1`,
		id, stage, owner)
	if err != nil {
		return fmt.Errorf("update opportunity stage %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update opportunity stage %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Pipeline tickets ---

func (s *Store) CreateTicket(ctx context.Context, t *pipeline.Ticket) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO pipeline_tickets (opportunity_id, message, created_by_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		t.OpportunityID, t.Message, t.CreatedByID,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (s *Store) ResolveTicket(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pipeline_tickets SET resolved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resolve ticket %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resolve ticket %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListOpportunityTickets(ctx context.Context, opportunityID int64) ([]pipeline.Ticket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, opportunity_id, message, created_by_id, resolved, created_at
		FROM pipeline_tickets WHERE opportunity_id = $1 ORDER BY created_at DESC`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []pipeline.Ticket
	for rows.Next() {
		var t pipeline.Ticket
		if err := rows.Scan(&t.ID, &t.OpportunityID, &t.Message, &t.CreatedByID, &t.Resolved, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
