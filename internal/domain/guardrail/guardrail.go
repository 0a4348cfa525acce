// Package guardrail evaluates the business policies that govern when an AI
// product may be proposed or sold to a client versus when only services
// engagements are appropriate.
//
// Rules are independent predicates evaluated in a fixed order against an
// immutable client snapshot. The result is advisory data, not an error: it
// never blocks reads and is returned alongside success.
package guardrail

import (
	"strings"
	"time"

	"github.com/novaera/caprail/internal/domain/client"
	"github.com/novaera/caprail/internal/domain/pipeline"
)

// Violation messages, in rule order. Stable output matters: dashboards and
// tests depend on deterministic ordering.
const (
	msgServicesFirst = "Services engagement required before AI Product adoption. " +
		"Legacy systems detected but no Data Foundation Service active."
	msgDataAudit = "AI Product proposed without data audit. Data Foundation Service recommended."
	msgTenure    = "Product readiness: client has < 6 months engagement. " +
		"Services engagement should precede AI product pilots."
	msgUseCase  = "Use case must be documented before proposing AI product."
	msgCapacity = "Delivery capacity must be confirmed before committing to AI product."
	msgPilot    = "Pilot before scale: AI products should start as 3-6 month pilots " +
		"unless client has prior successful pilot with us."
	msgHandoff = "Handoff checklist must be complete before contract signing."
	msgTrust   = "Trust preservation: low trust account with AI product. " +
		"Consider additional services support before scaling product."
	msgNewRelationship = "Services first: new relationship (< 90 days). " +
		"Establish services engagement before AI product."
)

const (
	minEngagementMonths = 6
	minEngagementDays   = 90
	pilotRevenueFloor   = 50000
	minTrustLevel       = 50
)

// Result is the outcome of evaluating all guardrails against one client.
type Result struct {
	OK         bool     `json:"ok"`
	Violations []string `json:"violations"`
}

// Evaluate runs every rule against the client snapshot and its opportunities.
// It never fails and never mutates its inputs. Output is deduplicated,
// order-preserving (first occurrence wins).
func Evaluate(c client.Client, opps []pipeline.Opportunity, now time.Time) Result {
	var violations []string
	add := func(msg string) { violations = append(violations, msg) }

	hasLegacy := strings.TrimSpace(c.LegacySystems) != ""
	aiRevenue := c.AIProductRevenue
	start := c.EngagementStart()

	// 1. Services first: legacy systems but no Data Foundation Service.
	if hasLegacy && !c.DataFoundationServiceActive {
		add(msgServicesFirst)
	}

	// 2. AI product proposed without data audit.
	if aiRevenue > 0 && !c.DataFoundationServiceActive && hasLegacy {
		add(msgDataAudit)
	}

	// 3. Product readiness: AI product without 6+ months engagement.
	// An absent start date cannot be violated yet.
	if aiRevenue > 0 && !start.IsZero() {
		months := now.Sub(start).Hours() / 24 / 30
		if months < minEngagementMonths {
			add(msgTenure)
		}
	}

	// 4. Use case not documented before product proposal.
	if aiRevenue > 0 && !c.UseCaseDocumented && len(c.AIUseCases) == 0 {
		add(msgUseCase)
	}

	// 5. Delivery capacity not confirmed.
	if aiRevenue > 0 && !c.DeliveryCapacityConfirmed {
		add(msgCapacity)
	}

	// 6. Pilot before scale: AI product at scale without prior pilot.
	if aiRevenue > pilotRevenueFloor && !c.PriorPilotSuccess && !c.DataFoundationServiceActive {
		add(msgPilot)
	}

	// 7. Handoff checklist incomplete while any opportunity sits in the
	// contract/kickoff handoff. Recomputed from current stages only.
	if !c.HandoffChecklistComplete {
		for _, o := range opps {
			if o.InHandoff() {
				add(msgHandoff)
				break
			}
		}
	}

	// 8. Trust preservation: low trust + AI product.
	if c.TrustLevel < minTrustLevel && aiRevenue > 0 {
		add(msgTrust)
	}

	// 9. New relationship proposing product.
	if aiRevenue > 0 && !start.IsZero() {
		if now.Sub(start).Hours()/24 < minEngagementDays {
			add(msgNewRelationship)
		}
	}

	violations = dedupe(violations)
	return Result{OK: len(violations) == 0, Violations: violations}
}

// dedupe collapses identical messages, keeping first-occurrence order.
func dedupe(msgs []string) []string {
	seen := make(map[string]bool, len(msgs))
	out := msgs[:0]
	for _, m := range msgs {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// ClientViolations pairs a client with its guardrail violations.
type ClientViolations struct {
	Client     client.Client `json:"client"`
	Violations []string      `json:"violations"`
}

// ViolationsForClients returns only the clients that currently violate at
// least one guardrail, in input order. opps maps client ID to opportunities.
func ViolationsForClients(clients []client.Client, opps map[int64][]pipeline.Opportunity, now time.Time) []ClientViolations {
	var out []ClientViolations
	for _, c := range clients {
		res := Evaluate(c, opps[c.ID], now)
		if !res.OK {
			out = append(out, ClientViolations{Client: c, Violations: res.Violations})
		}
	}
	return out
}
