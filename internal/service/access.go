package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/database"
)

// AccessService decides who may see confidential client data and who may
// manage per-client grants.
type AccessService struct {
	store database.Store
}

// NewAccessService creates a new access service.
func NewAccessService(store database.Store) *AccessService {
	return &AccessService{store: store}
}

// CanViewConfidential reports whether u may see confidential fields of the
// given client. CEO and Strategy Lead always can; employees need an
// explicit grant.
func (s *AccessService) CanViewConfidential(ctx context.Context, u *user.User, clientID int64) bool {
	if u == nil {
		return false
	}
	if u.HasFullAccess() {
		return true
	}
	held, err := s.store.HasPermission(ctx, u.ID, clientID)
	if err != nil {
		slog.Error("permission check failed", "user_id", u.ID, "client_id", clientID, "error", err)
		return false
	}
	return held
}

// CanGrantPermissions reports whether u may grant or revoke client access.
func (s *AccessService) CanGrantPermissions(u *user.User) bool {
	return u != nil && u.HasFullAccess()
}

// Grant gives userID access to clientID. Granting an existing permission
// is a no-op.
func (s *AccessService) Grant(ctx context.Context, granter *user.User, userID, clientID int64) error {
	if !s.CanGrantPermissions(granter) {
		return fmt.Errorf("%w: only CEO or Strategy Lead can manage permissions", domain.ErrAccessDenied)
	}
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.store.GrantPermission(ctx, &user.ClientPermission{
		UserID:      userID,
		ClientID:    clientID,
		GrantedByID: granter.ID,
	})
}

// Revoke removes userID's access to clientID. Revoking an absent
// permission is a no-op.
func (s *AccessService) Revoke(ctx context.Context, granter *user.User, userID, clientID int64) error {
	if !s.CanGrantPermissions(granter) {
		return fmt.Errorf("%w: only CEO or Strategy Lead can manage permissions", domain.ErrAccessDenied)
	}
	return s.store.RevokePermission(ctx, userID, clientID)
}

// ListClientPermissions returns the grants for a client.
func (s *AccessService) ListClientPermissions(ctx context.Context, granter *user.User, clientID int64) ([]user.ClientPermission, error) {
	if !s.CanGrantPermissions(granter) {
		return nil, fmt.Errorf("%w: only CEO or Strategy Lead can manage permissions", domain.ErrAccessDenied)
	}
	return s.store.ListClientPermissions(ctx, clientID)
}
