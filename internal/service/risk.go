package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/novaera/caprail/internal/adapter/otel"
	"github.com/novaera/caprail/internal/adapter/ws"
	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/risk"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/broadcast"
	"github.com/novaera/caprail/internal/port/database"
	"github.com/novaera/caprail/internal/port/messagequeue"
)

// RiskService handles delivery risk flags and their alert feed.
type RiskService struct {
	store   database.Store
	access  *AccessService
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster
	metrics *otel.Metrics
}

// NewRiskService creates a new risk service.
func NewRiskService(store database.Store, access *AccessService, queue messagequeue.Queue, hub broadcast.Broadcaster, metrics *otel.Metrics) *RiskService {
	return &RiskService{store: store, access: access, queue: queue, hub: hub, metrics: metrics}
}

// Flag records a delivery risk against a client. The actor must be able to
// view the client.
func (s *RiskService) Flag(ctx context.Context, actor *user.User, req *risk.CreateRequest) (*risk.Flag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.access.CanViewConfidential(ctx, actor, req.ClientID) {
		return nil, fmt.Errorf("%w: no access to this client", domain.ErrAccessDenied)
	}
	if _, err := s.store.GetClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	f := &risk.Flag{
		ClientID:    req.ClientID,
		ProjectName: req.ProjectName,
		Message:     req.Message,
		Severity:    req.Severity,
	}
	if err := s.store.CreateRiskFlag(ctx, f); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RisksFlagged.Add(ctx, 1)
	}
	s.publish(ctx, messagequeue.SubjectRiskFlagged, ws.EventRiskFlagged, ws.RiskFlagEvent{
		FlagID:   f.ID,
		ClientID: f.ClientID,
		Severity: string(f.Severity),
		Message:  f.Message,
	})
	return f, nil
}

// Alerts returns all unacknowledged flags, newest first.
func (s *RiskService) Alerts(ctx context.Context) ([]risk.Flag, error) {
	return s.store.ListUnacknowledgedFlags(ctx)
}

// Acknowledge marks a flag handled. Acknowledgement never reverts.
func (s *RiskService) Acknowledge(ctx context.Context, id int64) error {
	f, err := s.store.GetRiskFlag(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.AcknowledgeRiskFlag(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, messagequeue.SubjectRiskAcknowledged, ws.EventRiskAcknowledged, ws.RiskFlagEvent{
		FlagID:   f.ID,
		ClientID: f.ClientID,
	})
	return nil
}

func (s *RiskService) publish(ctx context.Context, subject, eventType string, event ws.RiskFlagEvent) {
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, eventType, event)
	}
	if s.queue != nil {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("marshal risk event", "error", err)
			return
		}
		if err := s.queue.Publish(ctx, subject, data); err != nil {
			slog.Error("publish risk event", "flag_id", event.FlagID, "error", err)
		}
	}
}
