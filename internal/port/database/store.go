// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/lead"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/domain/review"
	"github.com/novaera/caprail/internal/domain/risk"
	"github.com/novaera/caprail/internal/domain/user"
)

// Store is the port interface for database operations.
type Store interface {
	// Clients
	ListClients(ctx context.Context) ([]client.Client, error)
	GetClient(ctx context.Context, id int64) (*client.Client, error)
	CreateClient(ctx context.Context, c *client.Client) error
	UpdateClient(ctx context.Context, c *client.Client) error
	UpdateClientAnalysis(ctx context.Context, c *client.Client) error

	// Opportunities
	ListOpportunities(ctx context.Context) ([]pipeline.Opportunity, error)
	ListClientOpportunities(ctx context.Context, clientID int64) ([]pipeline.Opportunity, error)
	GetOpportunity(ctx context.Context, id int64) (*pipeline.Opportunity, error)
	CreateOpportunity(ctx context.Context, o *pipeline.Opportunity) error
	// UpdateOpportunityStage writes stage and primary owner in a single
	// statement so the owner-mirrors-stage invariant cannot tear.
	UpdateOpportunityStage(ctx context.Context, id int64, stage pipeline.Stage, owner pipeline.Role) error

	// Pipeline tickets
	CreateTicket(ctx context.Context, t *pipeline.Ticket) error
	ResolveTicket(ctx context.Context, id int64) error
	ListOpportunityTickets(ctx context.Context, opportunityID int64) ([]pipeline.Ticket, error)

	// Leads
	ListLeads(ctx context.Context) ([]lead.Lead, error)
	GetLead(ctx context.Context, id int64) (*lead.Lead, error)
	CreateLead(ctx context.Context, l *lead.Lead) error
	UpdateLead(ctx context.Context, l *lead.Lead) error
	CountConvertedLeads(ctx context.Context) (int, error)

	// Risk flags
	ListUnacknowledgedFlags(ctx context.Context) ([]risk.Flag, error)
	CountUnacknowledgedFlags(ctx context.Context) (int, error)
	CountClientUnacknowledgedFlags(ctx context.Context, clientID int64) (int, error)
	GetRiskFlag(ctx context.Context, id int64) (*risk.Flag, error)
	CreateRiskFlag(ctx context.Context, f *risk.Flag) error
	AcknowledgeRiskFlag(ctx context.Context, id int64) error

	// Reviews
	CreateReview(ctx context.Context, r *review.Review) error
	ListClientReviews(ctx context.Context, clientID int64, limit int) ([]review.Review, error)

	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id int64) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error

	// Client permissions
	GrantPermission(ctx context.Context, p *user.ClientPermission) error
	RevokePermission(ctx context.Context, userID, clientID int64) error
	HasPermission(ctx context.Context, userID, clientID int64) (bool, error)
	ListClientPermissions(ctx context.Context, clientID int64) ([]user.ClientPermission, error)
}
