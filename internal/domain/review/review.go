// Package review defines the append-only client review log.
package review

import "time"

// Review records that a user reviewed a client account. Never mutated after
// creation.
type Review struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	ReviewedByID int64     `json:"reviewed_by_id"`
	Notes        string    `json:"notes"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// CreateRequest is the input for logging a review.
type CreateRequest struct {
	Notes string `json:"notes"`
}
