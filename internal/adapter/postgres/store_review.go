package postgres

import (
	"context"
	"fmt"

	"github.com/novaera/caprail/internal/domain/review"
)

func (s *Store) CreateReview(ctx context.Context, r *review.Review) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO client_reviews (client_id, reviewed_by_id, notes)
		VALUES ($1, $2, $3)
		RETURNING id, reviewed_at`,
		r.ClientID, r.ReviewedByID, r.Notes,
	)
	if err := row.Scan(&r.ID, &r.ReviewedAt); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (s *Store) ListClientReviews(ctx context.Context, clientID int64, limit int) ([]review.Review, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_id, reviewed_by_id, notes, reviewed_at
		FROM client_reviews WHERE client_id = $1
		ORDER BY reviewed_at DESC LIMIT $2`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list client reviews: %w", err)
	}
	defer rows.Close()

	var reviews []review.Review
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.ClientID, &r.ReviewedByID, &r.Notes, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
