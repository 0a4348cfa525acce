// Package notes defines the note-analysis capability port: free text in,
// three string lists out.
package notes

import "context"

// Analysis is the structured output extracted from delivery team notes.
type Analysis struct {
	AIUseCases        []string `json:"ai_use_cases"`
	TechnicalBlockers []string `json:"technical_blockers"`
	KeyStakeholders   []string `json:"key_stakeholders"`
}

// Analyzer extracts insights from free-text delivery notes. Implementations
// are selected by configuration at the boundary: an offline keyword heuristic
// or a live LLM backend.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}
