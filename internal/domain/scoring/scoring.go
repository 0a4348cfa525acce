// Package scoring provides the pure score functions used to rank client
// accounts: priority score, account health, revenue velocity, and the
// trust/revenue quadrant. All functions take an explicit reference time and
// never fail.
package scoring

import (
	"math"
	"time"

	"github.com/novaera/caprail/internal/domain/client"
)

// minDays floors the elapsed-days divisor so a just-updated account yields a
// large finite score instead of infinity.
const minDays = 0.1

// DaysSince returns the elapsed days between t and now, floored at minDays.
// A zero t (never updated) returns 0.
func DaysSince(t, now time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return math.Max(now.Sub(t).Hours()/24, minDays)
}

// PriorityScore computes (revenue * readiness) / daysSince, rounded to two
// decimals. A zero lastUpdate coerces to now, yielding the minDays divisor.
func PriorityScore(revenue float64, readiness int, lastUpdate, now time.Time) float64 {
	if lastUpdate.IsZero() {
		lastUpdate = now
	}
	days := math.Max(now.Sub(lastUpdate).Hours()/24, minDays)
	return round2(revenue * float64(readiness) / days)
}

// AccountHealth returns the mean AI readiness score across clients, rounded
// to one decimal. Empty input yields 0.
func AccountHealth(clients []client.Client) float64 {
	if len(clients) == 0 {
		return 0
	}
	var sum int
	for _, c := range clients {
		sum += c.AIReadinessScore
	}
	return math.Round(float64(sum)/float64(len(clients))*10) / 10
}

// RevenueVelocity sums revenue/daysSince over clients with positive revenue
// and positive elapsed days. Clients with zero revenue or no recorded update
// contribute zero.
func RevenueVelocity(clients []client.Client, now time.Time) float64 {
	var total float64
	for _, c := range clients {
		days := DaysSince(c.LastDeliveryUpdate, now)
		if days > 0 && c.Revenue > 0 {
			total += c.Revenue / days
		}
	}
	return round2(total)
}

// HealthScore computes readiness - 10*riskCount - floor(daysSinceUpdate/7),
// clamped to [0,100].
func HealthScore(c client.Client, riskCount int, now time.Time) int {
	days := DaysSince(c.LastDeliveryUpdate, now)
	score := c.AIReadinessScore - 10*riskCount - int(days/7)
	return clamp(score, 0, 100)
}

// Quadrant buckets a client by trust level and AI revenue share.
// Used for portfolio visualization, not decisioning.
type Quadrant string

const (
	HighTrustLowAI  Quadrant = "high_trust_low_ai"
	LowTrustHighAI  Quadrant = "low_trust_high_ai"
	HighTrustHighAI Quadrant = "high_trust_high_ai"
	LowTrustLowAI   Quadrant = "low_trust_low_ai"
)

const (
	trustThreshold   = 60
	aiShareThreshold = 30 // percent of revenue from AI product
)

// TrustRevenueQuadrant classifies a client. The AI share is 0% when total
// revenue is zero.
func TrustRevenueQuadrant(c client.Client) Quadrant {
	highTrust := c.TrustLevel >= trustThreshold
	highAI := AIRevenueShare(c) >= aiShareThreshold
	switch {
	case highTrust && highAI:
		return HighTrustHighAI
	case highTrust:
		return HighTrustLowAI
	case highAI:
		return LowTrustHighAI
	default:
		return LowTrustLowAI
	}
}

// AIRevenueShare returns the percentage of total revenue coming from the AI
// product, 0 when total revenue is zero.
func AIRevenueShare(c client.Client) float64 {
	if c.Revenue <= 0 {
		return 0
	}
	return c.AIProductRevenue / c.Revenue * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
