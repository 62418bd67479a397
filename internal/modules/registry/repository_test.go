package registry

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ogtest "github.com/aristath/oneglance/internal/testing"
)

func strPtr(s string) *string { return &s }

func newTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	return NewRepository(db.Conn(), zerolog.Nop()), cleanup
}

func TestAdd_NormalizesSymbol(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	asset, err := repo.Add(AddAssetRequest{Symbol: " btc ", Name: "Bitcoin"}, TrackingWatchlist)
	require.NoError(t, err)
	assert.Equal(t, "BTC", asset.Symbol)

	found, err := repo.GetBySymbol("btc")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, asset.ID, found.ID)
}

func TestGetBySymbol_NilWhenUnknown(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	asset, err := repo.GetBySymbol("NOPE")
	require.NoError(t, err)
	assert.Nil(t, asset)
}

func TestDeactivate_PreservesHistory(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	asset, err := repo.Add(AddAssetRequest{Symbol: "UNI", Name: "Uniswap"}, TrackingWatchlist)
	require.NoError(t, err)

	ok, err := repo.Deactivate("UNI")
	require.NoError(t, err)
	assert.True(t, ok)

	// Gone from the active set
	active, err := repo.GetActive()
	require.NoError(t, err)
	assert.Empty(t, active)

	// But the row survives, inactive
	found, err := repo.GetBySymbol("UNI")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsActive)
	assert.Equal(t, asset.ID, found.ID)
}

func TestDeactivate_UnknownSymbol(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	ok, err := repo.Deactivate("NOPE")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdd_ReactivatesAndPromotesTracking(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	original, err := repo.Add(AddAssetRequest{Symbol: "ARB", Name: "Arbitrum"}, TrackingTop50)
	require.NoError(t, err)

	_, err = repo.Deactivate("ARB")
	require.NoError(t, err)

	// Re-adding to the watchlist reuses the same asset id
	again, err := repo.Add(AddAssetRequest{Symbol: "ARB", Name: "Arbitrum"}, TrackingWatchlist)
	require.NoError(t, err)
	assert.Equal(t, original.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Equal(t, TrackingWatchlist, again.TrackingType)
}

func TestSourceMapping(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	asset, err := repo.Add(AddAssetRequest{
		Symbol:        "AAVE",
		Name:          "Aave",
		CoinGeckoID:   strPtr("aave"),
		DefiLlamaSlug: strPtr("aave-v3"),
	}, TrackingWatchlist)
	require.NoError(t, err)

	src, err := repo.GetSource(asset.ID)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "aave", *src.CoinGeckoID)
	assert.Equal(t, "aave-v3", *src.DefiLlamaSlug)

	// Partial update keeps existing identifiers
	require.NoError(t, repo.UpsertSource(Source{
		AssetID:        asset.ID,
		TokenUnlocksID: strPtr("aave-unlocks"),
	}))

	src, err = repo.GetSource(asset.ID)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, "aave", *src.CoinGeckoID)
	assert.Equal(t, "aave-unlocks", *src.TokenUnlocksID)
}

func TestGetActive_IncludesSources(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()

	_, err := repo.Add(AddAssetRequest{Symbol: "BTC", Name: "Bitcoin", CoinGeckoID: strPtr("bitcoin")}, TrackingWatchlist)
	require.NoError(t, err)
	_, err = repo.Add(AddAssetRequest{Symbol: "AAPL", Name: "Apple Inc."}, TrackingWatchlist)
	require.NoError(t, err)

	active, err := repo.GetActive()
	require.NoError(t, err)
	require.Len(t, active, 2)

	// Ordered by symbol; source only where one was stored
	assert.Equal(t, "AAPL", active[0].Symbol)
	assert.Nil(t, active[0].Source)
	assert.Equal(t, "BTC", active[1].Symbol)
	require.NotNil(t, active[1].Source)
	assert.Equal(t, "bitcoin", *active[1].Source.CoinGeckoID)
}
