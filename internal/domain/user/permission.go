package user

import "time"

// ClientPermission grants one user visibility into one client's confidential
// fields. At most one grant exists per (user, client) pair; revocation
// deletes the row entirely.
type ClientPermission struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ClientID    int64     `json:"client_id"`
	GrantedByID int64     `json:"granted_by_id"`
	GrantedAt   time.Time `json:"granted_at"`
}
