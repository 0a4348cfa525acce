package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/user"
)

const userColumns = `id, email, name, password_hash, role, created_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Email, u.Name, u.PasswordHash, u.Role,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Email, domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user password %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Client permissions ---

// GrantPermission is idempotent: granting an already-held permission is
// a no-op rather than an error.
func (s *Store) GrantPermission(ctx context.Context, p *user.ClientPermission) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO client_permissions (user_id, client_id, granted_by_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, client_id) DO NOTHING
		RETURNING id, granted_at`,
		p.UserID, p.ClientID, p.GrantedByID,
	)
	if err := row.Scan(&p.ID, &p.GrantedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}

func (s *Store) RevokePermission(ctx context.Context, userID, clientID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM client_permissions WHERE user_id = $1 AND client_id = $2`,
		userID, clientID)
	if err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return nil
}

func (s *Store) HasPermission(ctx context.Context, userID, clientID int64) (bool, error) {
	var held bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM client_permissions WHERE user_id = $1 AND client_id = $2)`,
		userID, clientID).Scan(&held)
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return held, nil
}

func (s *Store) ListClientPermissions(ctx context.Context, clientID int64) ([]user.ClientPermission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, client_id, granted_by_id, granted_at
		FROM client_permissions WHERE client_id = $1 ORDER BY granted_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client permissions: %w", err)
	}
	defer rows.Close()

	var perms []user.ClientPermission
	for rows.Next() {
		var p user.ClientPermission
		if err := rows.Scan(&p.ID, &p.UserID, &p.ClientID, &p.GrantedByID, &p.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
