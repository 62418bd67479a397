package ingest

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
	ogtest "github.com/aristath/oneglance/internal/testing"
)

func fptr(v float64) *float64 { return &v }

func newTestIngest(t *testing.T) (*Service, *metrics.Repository, *events.Repository, int64, func()) {
	t.Helper()

	db, cleanup := ogtest.NewTestDB(t, "crypto")
	conn := db.Conn()
	log := zerolog.Nop()

	registryRepo := registry.NewRepository(conn, log)
	metricsRepo := metrics.NewRepository(conn, log)
	eventsRepo := events.NewRepository(conn, log)
	svc := NewService(registryRepo, metricsRepo, eventsRepo, log)

	assetID := ogtest.SeedAsset(t, conn, "BTC", "Bitcoin")
	return svc, metricsRepo, eventsRepo, assetID, cleanup
}

func TestIngestMetrics_ValidItem(t *testing.T) {
	svc, metricsRepo, _, assetID, cleanup := newTestIngest(t)
	defer cleanup()

	resp, err := svc.IngestMetrics([]MetricItem{
		{Symbol: "BTC", Date: "2026-08-01", PriceUSD: fptr(50000), MarketCap: fptr(1e12)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Ingested)
	assert.Equal(t, 0, resp.Skipped)
	assert.Empty(t, resp.Errors)

	snap, err := metricsRepo.Latest(assetID, "2026-08-01")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 50000.0, *snap.PriceUSD)
}

func TestIngestMetrics_RejectsPerItemNotPerBatch(t *testing.T) {
	svc, metricsRepo, _, assetID, cleanup := newTestIngest(t)
	defer cleanup()

	resp, err := svc.IngestMetrics([]MetricItem{
		{Symbol: "BTC", Date: "2026-08-01", PriceUSD: fptr(50000)}, // good
		{Symbol: "", Date: "2026-08-01"},                           // missing symbol
		{Symbol: "DOGE", Date: "2026-08-01"},                       // unknown symbol
		{Symbol: "BTC", Date: "01/08/2026"},                        // bad date format
		{Symbol: "BTC", Date: "2026-08-02", PriceUSD: fptr(-5)},    // negative price
		{Symbol: "BTC", Date: "2026-08-02", TVL: fptr(math.NaN())}, // non-finite
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Ingested)
	assert.Equal(t, 5, resp.Skipped)
	require.Len(t, resp.Errors, 5)

	// The valid item landed despite its bad neighbors
	snap, err := metricsRepo.Latest(assetID, "2026-08-01")
	require.NoError(t, err)
	require.NotNil(t, snap)

	// Each error names its batch position
	indexes := make([]int, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		indexes = append(indexes, e.Index)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, indexes)
}

func TestIngestMetrics_NegativePERatioAllowed(t *testing.T) {
	svc, _, _, _, cleanup := newTestIngest(t)
	defer cleanup()

	resp, err := svc.IngestMetrics([]MetricItem{
		{Symbol: "BTC", Date: "2026-08-01", PERatio: fptr(-12.5)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Ingested)
}

func TestIngestEvents_ValidatesShape(t *testing.T) {
	svc, _, _, _, cleanup := newTestIngest(t)
	defer cleanup()

	resp, err := svc.IngestEvents([]EventItem{
		{Symbol: "BTC", Timestamp: "2026-07-20T00:00:00Z", Type: "EXPLOIT", Title: "bridge drained", Severity: 5}, // good
		{Symbol: "BTC", Timestamp: "2026-07-20T00:00:00Z", Type: "RUMOR", Title: "x", Severity: 3},                // unknown type
		{Symbol: "BTC", Timestamp: "2026-07-20T00:00:00Z", Type: "EXPLOIT", Title: "y", Severity: 9},              // severity out of range
		{Symbol: "BTC", Timestamp: "not a time", Type: "EXPLOIT", Title: "z", Severity: 3},                        // bad timestamp
		{Symbol: "BTC", Timestamp: "2026-07-20T00:00:00Z", Type: "EXPLOIT", Title: "", Severity: 3},               // missing title
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Ingested)
	assert.Equal(t, 4, resp.Skipped)
	assert.Len(t, resp.Errors, 4)
}

func TestIngestEvents_DuplicateCountsAsSkippedWithoutError(t *testing.T) {
	svc, _, _, _, cleanup := newTestIngest(t)
	defer cleanup()

	item := EventItem{
		Symbol: "BTC", Timestamp: "2026-07-20T00:00:00Z",
		Type: "GOVERNANCE", Title: "fee vote", Severity: 4,
	}

	resp, err := svc.IngestEvents([]EventItem{item})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Ingested)

	// Re-fetching the same feed is routine, not an error
	resp, err = svc.IngestEvents([]EventItem{item})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Ingested)
	assert.Equal(t, 1, resp.Skipped)
	assert.Empty(t, resp.Errors)
}

func TestIngest_InactiveAssetRejected(t *testing.T) {
	db, cleanup := ogtest.NewTestDB(t, "crypto")
	defer cleanup()
	conn := db.Conn()
	log := zerolog.Nop()

	registryRepo := registry.NewRepository(conn, log)
	svc := NewService(registryRepo, metrics.NewRepository(conn, log), events.NewRepository(conn, log), log)

	ogtest.SeedAsset(t, conn, "UNI", "Uniswap")
	_, err := registryRepo.Deactivate("UNI")
	require.NoError(t, err)

	resp, err := svc.IngestMetrics([]MetricItem{
		{Symbol: "UNI", Date: "2026-08-01", PriceUSD: fptr(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Ingested)
	assert.Equal(t, 1, resp.Skipped)
}
