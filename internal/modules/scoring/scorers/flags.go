package scorers

import (
	"time"

	"github.com/aristath/oneglance/internal/modules/events"
)

// FlagDetector evaluates the independent risk predicates that do not
// belong to any single sub-score.
type FlagDetector struct {
	ExploitWindowDays int
	GovWindowDays     int
}

// NewFlagDetector creates a flag detector
func NewFlagDetector(exploitWindowDays, govWindowDays int) *FlagDetector {
	return &FlagDetector{
		ExploitWindowDays: exploitWindowDays,
		GovWindowDays:     govWindowDays,
	}
}

// Detect returns the flags raised by the asset's event timeline
// relative to asOf
func (d *FlagDetector) Detect(evts []events.Event, asOf time.Time) []string {
	var flags []string

	exploitSince := asOf.AddDate(0, 0, -d.ExploitWindowDays)
	for _, e := range evts {
		if e.Type == events.TypeExploit && !e.Timestamp.Before(exploitSince) && !e.Timestamp.After(asOf) {
			flags = append(flags, FlagExploitRecent)
			break
		}
	}

	govSince := asOf.AddDate(0, 0, -d.GovWindowDays)
	for _, e := range evts {
		if e.Type == events.TypeGovernance && e.Severity >= events.SeverityHigh &&
			!e.Timestamp.Before(govSince) && !e.Timestamp.After(asOf) {
			flags = append(flags, FlagGovernanceConflict)
			break
		}
	}

	return flags
}
