// Package offline implements the note analyzer port with keyword heuristics,
// used when no LLM backend is configured.
package offline

import (
	"context"
	"strings"

	"github.com/novaera/caprail/internal/port/notes"
)

// Analyzer extracts analysis fields from delivery notes by keyword matching.
type Analyzer struct{}

// New creates an offline analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze scans the notes for known signals. It never fails; empty
// categories fall back to generic entries so the dashboard always has
// something to show.
func (a *Analyzer) Analyze(_ context.Context, text string) (notes.Analysis, error) {
	lower := strings.ToLower(text)
	var out notes.Analysis

	if strings.Contains(lower, "automation") || strings.Contains(lower, "manual") {
		out.AIUseCases = append(out.AIUseCases, "Process automation")
	}
	if strings.Contains(lower, "report") || strings.Contains(lower, "analytics") {
		out.AIUseCases = append(out.AIUseCases, "Analytics and reporting")
	}
	if strings.Contains(lower, "compliance") {
		out.AIUseCases = append(out.AIUseCases, "Compliance monitoring")
	}
	if strings.Contains(lower, "legacy") || strings.Contains(lower, "erp") {
		out.TechnicalBlockers = append(out.TechnicalBlockers, "Legacy system integration")
	}
	if strings.Contains(lower, "api") || strings.Contains(lower, "integration") {
		out.TechnicalBlockers = append(out.TechnicalBlockers, "API/integration constraints")
	}
	if strings.Contains(lower, "stakeholder") || strings.Contains(lower, "manager") || strings.Contains(lower, "director") {
		out.KeyStakeholders = append(out.KeyStakeholders, "Senior leadership")
	}
	if strings.Contains(lower, "it") || strings.Contains(lower, "technical") {
		out.KeyStakeholders = append(out.KeyStakeholders, "IT/Technical team")
	}

	if len(out.AIUseCases) == 0 {
		out.AIUseCases = []string{"General process improvement (review notes for specifics)"}
	}
	if len(out.KeyStakeholders) == 0 {
		out.KeyStakeholders = []string{"Account owner", "Delivery lead"}
	}
	return out, nil
}
