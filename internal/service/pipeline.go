package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/novaera/caprail/internal/adapter/otel"
	"github.com/novaera/caprail/internal/adapter/ws"
	"github.com/novaera/caprail/internal/domain/pipeline"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/broadcast"
	"github.com/novaera/caprail/internal/port/database"
	"github.com/novaera/caprail/internal/port/messagequeue"
)

// PipelineService orchestrates the opportunity kanban: stage moves through
// both gates, mistake tickets, and the board view.
type PipelineService struct {
	store   database.Store
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster
	metrics *otel.Metrics
}

// NewPipelineService creates a new pipeline service.
func NewPipelineService(store database.Store, queue messagequeue.Queue, hub broadcast.Broadcaster, metrics *otel.Metrics) *PipelineService {
	return &PipelineService{store: store, queue: queue, hub: hub, metrics: metrics}
}

// Board is the kanban view: opportunities grouped per stage, in stage order.
type Board struct {
	Stages      []pipeline.Stage                          `json:"stages"`
	StageOwners map[pipeline.Stage]pipeline.Role          `json:"stage_owners"`
	ByStage     map[pipeline.Stage][]pipeline.Opportunity `json:"by_stage"`
	Threshold   int                                       `json:"readiness_threshold"`
}

// Kanban builds the board from all opportunities.
func (s *PipelineService) Kanban(ctx context.Context) (*Board, error) {
	opps, err := s.store.ListOpportunities(ctx)
	if err != nil {
		return nil, err
	}

	board := &Board{
		Stages:      pipeline.Stages,
		StageOwners: make(map[pipeline.Stage]pipeline.Role, len(pipeline.Stages)),
		ByStage:     make(map[pipeline.Stage][]pipeline.Opportunity, len(pipeline.Stages)),
		Threshold:   pipeline.ReadinessThreshold,
	}
	for _, st := range pipeline.Stages {
		board.StageOwners[st] = pipeline.Owner(st)
		board.ByStage[st] = []pipeline.Opportunity{}
	}
	for _, o := range opps {
		if o.Stage.Valid() {
			board.ByStage[o.Stage] = append(board.ByStage[o.Stage], o)
		}
	}
	return board, nil
}

// Move transitions an opportunity to the target stage as the acting role.
// The quality and authority gates run in the domain; on success the stage and
// owner are persisted in one statement and a pipeline.moved event goes out.
func (s *PipelineService) Move(ctx context.Context, id int64, target pipeline.Stage, acting pipeline.Role) (*pipeline.Opportunity, error) {
	opp, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetClient(ctx, opp.ClientID)
	if err != nil {
		return nil, err
	}

	if err := pipeline.Move(opp, c.AIReadinessScore, target, acting); err != nil {
		if s.metrics != nil {
			s.metrics.StageBlocks.Add(ctx, 1)
		}
		return nil, err
	}

	if err := s.store.UpdateOpportunityStage(ctx, opp.ID, opp.Stage, opp.PrimaryOwner); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StageMoves.Add(ctx, 1)
	}
	s.publishMoved(ctx, opp)
	return opp, nil
}

func (s *PipelineService) publishMoved(ctx context.Context, opp *pipeline.Opportunity) {
	event := ws.StageMovedEvent{
		OpportunityID: opp.ID,
		ClientID:      opp.ClientID,
		Stage:         string(opp.Stage),
		PrimaryOwner:  string(opp.PrimaryOwner),
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventStageMoved, event)
	}
	if s.queue != nil {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("marshal stage moved event", "error", err)
			return
		}
		if err := s.queue.Publish(ctx, messagequeue.SubjectStageMoved, data); err != nil {
			slog.Error("publish stage moved event", "opportunity_id", opp.ID, "error", err)
		}
	}
}

// EnsureOpportunities creates a starting opportunity for any client that has
// none, keeping the every-client-owns-one invariant after manual data fixes.
func (s *PipelineService) EnsureOpportunities(ctx context.Context) error {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return err
	}
	for _, c := range clients {
		opps, err := s.store.ListClientOpportunities(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(opps) > 0 {
			continue
		}
		opp := pipeline.New(c.ID, opportunityName(c.Name))
		if err := s.store.CreateOpportunity(ctx, &opp); err != nil {
			return err
		}
		slog.Info("created missing opportunity", "client_id", c.ID)
	}
	return nil
}

// CreateTicket records a pipeline mistake report against an opportunity.
func (s *PipelineService) CreateTicket(ctx context.Context, actor *user.User, req pipeline.TicketCreateRequest) (*pipeline.Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetOpportunity(ctx, req.OpportunityID); err != nil {
		return nil, err
	}

	t := &pipeline.Ticket{
		OpportunityID: req.OpportunityID,
		Message:       req.Message,
	}
	if actor != nil {
		t.CreatedByID = &actor.ID
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ResolveTicket marks a ticket handled. Resolution never reverts.
func (s *PipelineService) ResolveTicket(ctx context.Context, id int64) error {
	return s.store.ResolveTicket(ctx, id)
}

// ListTickets returns the mistake tickets for an opportunity, newest first.
func (s *PipelineService) ListTickets(ctx context.Context, opportunityID int64) ([]pipeline.Ticket, error) {
	return s.store.ListOpportunityTickets(ctx, opportunityID)
}
