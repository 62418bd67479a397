package scorers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/oneglance/internal/modules/events"
)

var asOf = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func makeEvent(eventType events.Type, ts time.Time, severity int) events.Event {
	return events.Event{
		AssetID:   1,
		Type:      eventType,
		Title:     "test event",
		Timestamp: ts,
		Severity:  severity,
	}
}

func TestTokenomics_QuietTimelineScoresBaseline(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	score, flags := s.Calculate(nil, asOf)
	assert.Equal(t, 7.0, score)
	assert.Empty(t, flags)
}

func TestTokenomics_ImminentUnlock(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, 12), events.SeverityMedium),
	}
	score, flags := s.Calculate(evts, asOf)
	assert.Equal(t, 4.0, score)
	assert.Equal(t, []string{FlagUnlockImminent}, flags)
}

func TestTokenomics_UnlockTodayCounts(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		makeEvent(events.TypeUnlock, asOf, events.SeverityMedium),
	}
	score, flags := s.Calculate(evts, asOf)
	assert.Equal(t, 4.0, score)
	assert.Contains(t, flags, FlagUnlockImminent)
}

func TestTokenomics_UnlockOutsideHorizonIgnored(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		// Too far ahead and already past
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, 45), events.SeverityMedium),
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, -5), events.SeverityMedium),
	}
	score, flags := s.Calculate(evts, asOf)
	assert.Equal(t, 7.0, score)
	assert.Empty(t, flags)
}

func TestTokenomics_MultipleTranchesPenalizedOnce(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, 5), events.SeverityMedium),
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, 15), events.SeverityMedium),
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, 25), events.SeverityMedium),
	}
	score, flags := s.Calculate(evts, asOf)
	assert.Equal(t, 4.0, score)
	assert.Len(t, flags, 1)
}

func TestTokenomics_GovernanceConflict(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		makeEvent(events.TypeGovernance, asOf.AddDate(0, 0, -10), events.SeverityHigh),
	}
	score, flags := s.Calculate(evts, asOf)
	assert.Equal(t, 5.0, score)
	assert.Empty(t, flags) // governance flag is raised by the flag detector
}

func TestTokenomics_LowSeverityGovernanceIgnored(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		makeEvent(events.TypeGovernance, asOf.AddDate(0, 0, -10), events.SeverityLow),
	}
	score, _ := s.Calculate(evts, asOf)
	assert.Equal(t, 7.0, score)
}

func TestTokenomics_WorstCaseStaysAboveZero(t *testing.T) {
	s := NewTokenomicsScorer(10, 30, 30)

	evts := []events.Event{
		makeEvent(events.TypeUnlock, asOf.AddDate(0, 0, 3), events.SeverityCritical),
		makeEvent(events.TypeGovernance, asOf.AddDate(0, 0, -3), events.SeverityCritical),
	}
	score, _ := s.Calculate(evts, asOf)
	assert.Equal(t, 2.0, score)
}
