package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/novaera/caprail/internal/adapter/otel"
	"github.com/novaera/caprail/internal/domain"
	"github.com/novaera/caprail/internal/domain/user"
	"github.com/novaera/caprail/internal/port/database"
	"github.com/novaera/caprail/internal/port/notes"
)

// AnalysisService runs the delivery note analyzer and persists its output on
// the client profile.
type AnalysisService struct {
	store    database.Store
	access   *AccessService
	analyzer notes.Analyzer
	metrics  *otel.Metrics
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(store database.Store, access *AccessService, analyzer notes.Analyzer, metrics *otel.Metrics) *AnalysisService {
	return &AnalysisService{store: store, access: access, analyzer: analyzer, metrics: metrics}
}

// Analyze extracts use cases, blockers and stakeholders from delivery notes
// and saves them on the client. Empty notesText falls back to the stored
// notes. Analyzer failure degrades into a single-element use-case list so
// the write still succeeds and the failure is visible in the data.
func (s *AnalysisService) Analyze(ctx context.Context, actor *user.User, clientID int64, notesText string) (notes.Analysis, error) {
	if !s.access.CanViewConfidential(ctx, actor, clientID) {
		return notes.Analysis{}, fmt.Errorf("%w: no access to analyze this account", domain.ErrAccessDenied)
	}

	c, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return notes.Analysis{}, err
	}

	text := notesText
	if strings.TrimSpace(text) == "" {
		text = c.DeliveryNotes
	}
	if strings.TrimSpace(text) == "" {
		return notes.Analysis{}, fmt.Errorf("no delivery notes provided: %w", domain.ErrValidation)
	}

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		slog.Warn("note analysis failed, degrading", "client_id", clientID, "error", err)
		analysis = notes.Analysis{
			AIUseCases:        []string{fmt.Sprintf("API error: %s", err)},
			TechnicalBlockers: []string{},
			KeyStakeholders:   []string{},
		}
	}

	if s.metrics != nil {
		s.metrics.NoteAnalyses.Add(ctx, 1)
	}

	c.AIUseCases = analysis.AIUseCases
	c.TechnicalBlockers = analysis.TechnicalBlockers
	c.KeyStakeholders = analysis.KeyStakeholders
	c.DeliveryNotes = text
	c.AnalysisUpdatedAt = time.Now().UTC()

	if err := s.store.UpdateClientAnalysis(ctx, c); err != nil {
		return notes.Analysis{}, err
	}
	return analysis, nil
}
