package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/lead"
)

const leadColumns = `id, name, department, contact_info, status, notes,
	converted_client_id, last_contacted_at, created_at, updated_at`

func scanLead(row pgx.Row) (lead.Lead, error) {
	var l lead.Lead
	var lastContacted *time.Time
	err := row.Scan(&l.ID, &l.Name, &l.Department, &l.ContactInfo, &l.Status, &l.Notes,
		&l.ConvertedClientID, &lastContacted, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return lead.Lead{}, err
	}
	if lastContacted != nil {
		l.LastContactedAt = *lastContacted
	}
	return l, nil
}

func (s *Store) ListLeads(ctx context.Context) ([]lead.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *Store) GetLead(ctx context.Context, id int64) (*lead.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get lead %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get lead %d: %w", id, err)
	}
	return &l, nil
}

func (s *Store) CreateLead(ctx context.Context, l *lead.Lead) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO leads (name, department, contact_info, status, notes, converted_client_id, last_contacted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		l.Name, l.Department, l.ContactInfo, l.Status, l.Notes, l.ConvertedClientID, nullableTime(l.LastContactedAt),
	)
	if err := row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (s *Store) UpdateLead(ctx context.Context, l *lead.Lead) error {
	l.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE leads SET name = $2, department = $3, contact_info = $4, status = $5,
			notes = $6, converted_client_id = $7, last_contacted_at = $8, updated_at = $9
		WHERE id = $1`,
		l.ID, l.Name, l.Department, l.ContactInfo, l.Status,
		l.Notes, l.ConvertedClientID, nullableTime(l.LastContactedAt), l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead %d: %w", l.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update lead %d: %w", l.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) CountConvertedLeads(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM leads WHERE converted_client_id IS NOT NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count converted leads: %w", err)
	}
	return n, nil
}
