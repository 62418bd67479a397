package events_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/oneglance/internal/modules/events"
	ogtest "github.com/aristath/oneglance/internal/testing"
)

func TestInsert_DeduplicatesOnContentHash(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := events.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "UNI", "Uniswap")

	ts := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	event := events.Event{
		AssetID:   assetID,
		Hash:      events.Hash(assetID, events.TypeGovernance, "fee switch vote", ts),
		Timestamp: ts,
		Type:      events.TypeGovernance,
		Title:     "fee switch vote",
		Severity:  events.SeverityHigh,
	}

	created, err := repo.Insert(event)
	require.NoError(t, err)
	assert.True(t, created)

	// Same occurrence fetched again: silently dropped
	created, err = repo.Insert(event)
	require.NoError(t, err)
	assert.False(t, created)

	recent, err := repo.Recent(assetID, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestInsert_DifferentTimestampIsDifferentEvent(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := events.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "UNI", "Uniswap")

	t1 := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)

	for _, ts := range []time.Time{t1, t2} {
		created, err := repo.Insert(events.Event{
			AssetID:   assetID,
			Hash:      events.Hash(assetID, events.TypeUnlock, "tranche", ts),
			Timestamp: ts,
			Type:      events.TypeUnlock,
			Title:     "tranche",
			Severity:  events.SeverityMedium,
		})
		require.NoError(t, err)
		assert.True(t, created)
	}

	recent, err := repo.Recent(assetID, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestWindow_IncludesFutureEvents(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := events.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "ARB", "Arbitrum")

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	past := ogtest.NewEventFixture(assetID, events.TypeExploit, "old exploit", now.AddDate(0, 0, -120), events.SeverityCritical)
	recent := ogtest.NewEventFixture(assetID, events.TypeGovernance, "quorum fight", now.AddDate(0, 0, -10), events.SeverityHigh)
	future := ogtest.NewEventFixture(assetID, events.TypeUnlock, "cliff unlock", now.AddDate(0, 0, 20), events.SeverityMedium)

	for _, e := range []events.Event{past, recent, future} {
		_, err := repo.Insert(e)
		require.NoError(t, err)
	}

	// A 90-day trailing window keeps the recent event and the
	// future-dated unlock, drops only the stale one
	window, err := repo.Window(assetID, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, events.TypeUnlock, window[0].Type) // newest first
	assert.Equal(t, events.TypeGovernance, window[1].Type)
}

func TestHash_Deterministic(t *testing.T) {
	ts := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	h1 := events.Hash(1, events.TypeExploit, "bridge drained", ts)
	h2 := events.Hash(1, events.TypeExploit, "bridge drained", ts)
	assert.Equal(t, h1, h2)

	// Any identity component changes the hash
	assert.NotEqual(t, h1, events.Hash(2, events.TypeExploit, "bridge drained", ts))
	assert.NotEqual(t, h1, events.Hash(1, events.TypeGovernance, "bridge drained", ts))
	assert.NotEqual(t, h1, events.Hash(1, events.TypeExploit, "other title", ts))
	assert.NotEqual(t, h1, events.Hash(1, events.TypeExploit, "bridge drained", ts.Add(time.Second)))
}

func TestHash_TimezoneInsensitive(t *testing.T) {
	utc := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	athens := utc.In(time.FixedZone("EET", 3*3600))

	assert.Equal(t, events.Hash(1, events.TypeRelease, "v2 launch", utc), events.Hash(1, events.TypeRelease, "v2 launch", athens))
}
