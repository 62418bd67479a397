package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/oneglance/internal/modules/events"
)

func TestFlagDetector_QuietTimeline(t *testing.T) {
	d := NewFlagDetector(90, 30)

	flags := d.Detect(nil, asOf)
	assert.Empty(t, flags)
}

func TestFlagDetector_RecentExploit(t *testing.T) {
	d := NewFlagDetector(90, 30)

	evts := []events.Event{
		makeEvent(events.TypeExploit, asOf.AddDate(0, 0, -30), events.SeverityCritical),
	}
	flags := d.Detect(evts, asOf)
	assert.Equal(t, []string{FlagExploitRecent}, flags)
}

func TestFlagDetector_OldExploitIgnored(t *testing.T) {
	d := NewFlagDetector(90, 30)

	evts := []events.Event{
		makeEvent(events.TypeExploit, asOf.AddDate(0, 0, -120), events.SeverityCritical),
	}
	flags := d.Detect(evts, asOf)
	assert.Empty(t, flags)
}

func TestFlagDetector_FutureExploitIgnored(t *testing.T) {
	d := NewFlagDetector(90, 30)

	// An exploit event dated in the future is bad data, not a signal
	evts := []events.Event{
		makeEvent(events.TypeExploit, asOf.AddDate(0, 0, 5), events.SeverityCritical),
	}
	flags := d.Detect(evts, asOf)
	assert.Empty(t, flags)
}

func TestFlagDetector_GovernanceConflictNeedsSeverity(t *testing.T) {
	d := NewFlagDetector(90, 30)

	evts := []events.Event{
		makeEvent(events.TypeGovernance, asOf.AddDate(0, 0, -5), events.SeverityMedium),
	}
	assert.Empty(t, d.Detect(evts, asOf))

	evts[0].Severity = events.SeverityHigh
	assert.Equal(t, []string{FlagGovernanceConflict}, d.Detect(evts, asOf))
}

func TestFlagDetector_BothFlags(t *testing.T) {
	d := NewFlagDetector(90, 30)

	evts := []events.Event{
		makeEvent(events.TypeExploit, asOf.AddDate(0, 0, -10), events.SeverityCritical),
		makeEvent(events.TypeGovernance, asOf.AddDate(0, 0, -3), events.SeverityCritical),
	}
	flags := d.Detect(evts, asOf)
	assert.ElementsMatch(t, []string{FlagExploitRecent, FlagGovernanceConflict}, flags)
}
