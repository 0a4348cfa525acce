package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/risk"
)

const riskColumns = `id, client_id, project_name, message, severity, acknowledged, created_at`

func scanRiskFlag(row pgx.Row) (risk.Flag, error) {
	var f risk.Flag
	err := row.Scan(&f.ID, &f.ClientID, &f.ProjectName, &f.Message, &f.Severity, &f.Acknowledged, &f.CreatedAt)
	return f, err
}

func (s *Store) ListUnacknowledgedFlags(ctx context.Context) ([]risk.Flag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+riskColumns+` FROM risk_flags WHERE NOT acknowledged ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list risk flags: %w", err)
	}
	defer rows.Close()

	var flags []risk.Flag
	for rows.Next() {
		f, err := scanRiskFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

func (s *Store) CountUnacknowledgedFlags(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM risk_flags WHERE NOT acknowledged`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count risk flags: %w", err)
	}
	return n, nil
}

func (s *Store) CountClientUnacknowledgedFlags(ctx context.Context, clientID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM risk_flags WHERE client_id = $1 AND NOT acknowledged`, clientID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count client risk flags: %w", err)
	}
	return n, nil
}

func (s *Store) GetRiskFlag(ctx context.Context, id int64) (*risk.Flag, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+riskColumns+` FROM risk_flags WHERE id = $1`, id)

	f, err := scanRiskFlag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get risk flag %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get risk flag %d: %w", id, err)
	}
	return &f, nil
}

func (s *Store) CreateRiskFlag(ctx context.Context, f *risk.Flag) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO risk_flags (client_id, project_name, message, severity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		f.ClientID, f.ProjectName, f.Message, f.Severity,
	)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("create risk flag: %w", err)
	}
	return nil
}

func (s *Store) AcknowledgeRiskFlag(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE risk_flags SET acknowledged = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("acknowledge risk flag %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("acknowledge risk flag %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
