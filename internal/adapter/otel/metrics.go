package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "caprail"

// Metrics holds all pipeline metric instruments.
type Metrics struct {
	StageMoves      metric.Int64Counter
	StageBlocks     metric.Int64Counter
	GuardrailChecks metric.Int64Counter
	RisksFlagged    metric.Int64Counter
	NoteAnalyses    metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.StageMoves, err = meter.Int64Counter("caprail.pipeline.moves",
		metric.WithDescription("Number of opportunity stage moves that passed both gates"))
	if err != nil {
		return nil, err
	}

	m.StageBlocks, err = meter.Int64Counter("caprail.pipeline.blocks",
		metric.WithDescription("Number of stage moves rejected by a gate"))
	if err != nil {
		return nil, err
	}

	m.GuardrailChecks, err = meter.Int64Counter("caprail.guardrail.evaluations",
		metric.WithDescription("Number of guardrail evaluations"))
	if err != nil {
		return nil, err
	}

	m.RisksFlagged, err = meter.Int64Counter("caprail.risks.flagged",
		metric.WithDescription("Number of delivery risk flags created"))
	if err != nil {
		return nil, err
	}

	m.NoteAnalyses, err = meter.Int64Counter("caprail.notes.analyses",
		metric.WithDescription("Number of delivery note analyses performed"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
