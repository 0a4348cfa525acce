// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Queue is the port interface for publishing domain events. The service only
// publishes; consumers (notifiers, analytics) live outside this process.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the queue connection.
	Close() error
}

// Subject constants for the events this service emits.
const (
	SubjectStageMoved       = "pipeline.moved"
	SubjectRiskFlagged      = "risks.flagged"
	SubjectRiskAcknowledged = "risks.acknowledged"
)
