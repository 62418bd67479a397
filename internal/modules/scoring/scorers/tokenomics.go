package scorers

import (
	"time"

	"github.com/aristath/oneglance/internal/modules/events"
)

// TokenomicsScorer rates supply/governance risk: proximity to a known
// unlock event penalizes the score, as do recent high-severity
// governance events. Absence of both keeps the (generous) baseline.
type TokenomicsScorer struct {
	Max               float64
	UnlockHorizonDays int // unlocks within this many days ahead are imminent
	GovWindowDays     int // trailing window for governance signals
}

// NewTokenomicsScorer creates a tokenomics scorer
func NewTokenomicsScorer(max float64, unlockHorizonDays, govWindowDays int) *TokenomicsScorer {
	return &TokenomicsScorer{
		Max:               max,
		UnlockHorizonDays: unlockHorizonDays,
		GovWindowDays:     govWindowDays,
	}
}

// Calculate scores the asset's event timeline relative to asOf
func (s *TokenomicsScorer) Calculate(evts []events.Event, asOf time.Time) (float64, []string) {
	score := 0.7 * s.Max
	var flags []string

	// Imminent unlock: one penalty regardless of how many tranches fall
	// inside the horizon
	for _, e := range evts {
		if e.Type != events.TypeUnlock {
			continue
		}
		daysUntil := int(e.Timestamp.Sub(asOf).Hours() / 24)
		if daysUntil >= 0 && daysUntil <= s.UnlockHorizonDays {
			score -= 0.3 * s.Max
			flags = append(flags, FlagUnlockImminent)
			break
		}
	}

	// Negative governance signal in the trailing window
	govSince := asOf.AddDate(0, 0, -s.GovWindowDays)
	for _, e := range evts {
		if e.Type == events.TypeGovernance && e.Severity >= events.SeverityHigh &&
			!e.Timestamp.Before(govSince) && !e.Timestamp.After(asOf) {
			score -= 0.2 * s.Max
			break
		}
	}

	return round2(clamp(score, 0, s.Max)), flags
}
