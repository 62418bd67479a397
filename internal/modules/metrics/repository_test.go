package metrics_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/oneglance/internal/modules/metrics"
	ogtest "github.com/aristath/oneglance/internal/testing"
)

func fptr(v float64) *float64 { return &v }

func TestUpsert_OverwritesSameDay(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := metrics.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "BTC", "Bitcoin")

	first := metrics.Snapshot{
		AssetID:  assetID,
		Date:     "2026-08-01",
		PriceUSD: fptr(50000),
		TVL:      fptr(1e9),
	}
	require.NoError(t, repo.Upsert(first))

	// A corrected re-ingest for the same day replaces the row entirely
	second := metrics.Snapshot{
		AssetID:  assetID,
		Date:     "2026-08-01",
		PriceUSD: fptr(51000),
	}
	require.NoError(t, repo.Upsert(second))

	latest, err := repo.Latest(assetID, "2026-08-01")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 51000.0, *latest.PriceUSD)
	assert.Nil(t, latest.TVL, "overwrite replaces the whole row, including cleared fields")

	history, err := repo.History(assetID, "2026-08-01", 90)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistory_NewestFirstAndWindowed(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := metrics.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "ETH", "Ethereum")

	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ogtest.SeedPriceHistory(t, db.Conn(), assetID, end, 10, 100, 1e9)

	history, err := repo.History(assetID, "2026-08-01", 5)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "2026-08-01", history[0].Date)
	assert.Equal(t, "2026-07-28", history[4].Date)

	// Rows after the cutoff date are invisible
	history, err = repo.History(assetID, "2026-07-25", 90)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2026-07-25", history[0].Date)
}

func TestHistory_SparseGapsAllowed(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := metrics.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "OP", "Optimism")

	// Price-only and TVL-only days interleaved
	require.NoError(t, repo.Upsert(metrics.Snapshot{AssetID: assetID, Date: "2026-07-30", PriceUSD: fptr(2.5)}))
	require.NoError(t, repo.Upsert(metrics.Snapshot{AssetID: assetID, Date: "2026-07-31", TVL: fptr(5e8)}))

	history, err := repo.History(assetID, "2026-08-01", 90)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].PriceUSD)
	assert.NotNil(t, history[0].TVL)
	assert.NotNil(t, history[1].PriceUSD)
}

func TestLatest_NilWhenEmpty(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()

	repo := metrics.NewRepository(db.Conn(), zerolog.Nop())
	assetID := ogtest.SeedAsset(t, db.Conn(), "SOL", "Solana")

	latest, err := repo.Latest(assetID, "2026-08-01")
	require.NoError(t, err)
	assert.Nil(t, latest)
}
