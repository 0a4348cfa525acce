package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventStageMoved       = "pipeline.stage_moved"
	EventRiskFlagged      = "risk.flagged"
	EventRiskAcknowledged = "risk.acknowledged"
)

// StageMovedEvent is broadcast when an opportunity advances to a new stage.
type StageMovedEvent struct {
	OpportunityID int64  `json:"opportunity_id"`
	ClientID      int64  `json:"client_id"`
	Stage         string `json:"stage"`
	PrimaryOwner  string `json:"primary_owner"`
}

// RiskFlagEvent is broadcast when a delivery risk is flagged or acknowledged.
type RiskFlagEvent struct {
	FlagID   int64  `json:"flag_id"`
	ClientID int64  `json:"client_id"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
