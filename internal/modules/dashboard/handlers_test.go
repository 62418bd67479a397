package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
	"github.com/aristath/oneglance/internal/modules/scoring"
	"github.com/aristath/oneglance/internal/modules/thesis"
	ogtest "github.com/aristath/oneglance/internal/testing"
)

func newTestDashboard(t *testing.T) (*chi.Mux, *scoring.Repository, *events.Repository, *thesis.Repository, int64, func()) {
	t.Helper()

	db, cleanup := ogtest.NewTestDB(t, "crypto")
	conn := db.Conn()
	log := zerolog.Nop()

	registryRepo := registry.NewRepository(conn, log)
	metricsRepo := metrics.NewRepository(conn, log)
	eventsRepo := events.NewRepository(conn, log)
	scoreRepo := scoring.NewRepository(conn, log)
	thesisRepo := thesis.NewRepository(conn, log)

	svc := NewService(registryRepo, metricsRepo, eventsRepo, scoreRepo, thesisRepo, log)
	handler := NewHandler(svc, log)

	router := chi.NewRouter()
	router.Get("/dashboard", handler.HandleOverview)
	router.Get("/assets/{symbol}", handler.HandleAssetDetail)
	router.Get("/assets/{symbol}/timeline", handler.HandleTimeline)
	router.Get("/assets/{symbol}/metrics", handler.HandleMetricsRange)

	assetID := ogtest.SeedAsset(t, conn, "BTC", "Bitcoin")
	ogtest.SeedPriceHistory(t, conn, assetID, time.Now().UTC(), 10, 50000, 1e12)

	return router, scoreRepo, eventsRepo, thesisRepo, assetID, cleanup
}

func TestHandleOverview_UnscoredAssetIsNotAnError(t *testing.T) {
	router, _, _, _, _, cleanup := newTestDashboard(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var overview Overview
	require.NoError(t, json.NewDecoder(w.Body).Decode(&overview))
	require.Len(t, overview.Assets, 1)
	assert.Equal(t, 0, overview.Scored)
	assert.Equal(t, 1, overview.Unscored)

	row := overview.Assets[0]
	assert.Equal(t, "BTC", row.Symbol)
	assert.Nil(t, row.Score, "an unscored asset shows an empty score, never fails the page")
	require.NotNil(t, row.LatestPrice)
	assert.Equal(t, 50000.0, *row.LatestPrice)
}

func TestHandleOverview_OrdersByTotalDescending(t *testing.T) {
	router, scoreRepo, _, _, assetID, cleanup := newTestDashboard(t)
	defer cleanup()

	// Second asset with a higher score than the first
	req := httptest.NewRequest("GET", "/dashboard", nil)
	today := time.Now().UTC().Format(metrics.DateLayout)

	require.NoError(t, scoreRepo.Upsert(scoring.Score{
		AssetID: assetID, Date: today,
		Fundamentals: 5, Tokenomics: 7, Momentum: 5, Total: 17,
		Status: scoring.StatusObserve, Flags: []string{},
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var overview Overview
	require.NoError(t, json.NewDecoder(w.Body).Decode(&overview))
	assert.Equal(t, 1, overview.Scored)
	require.NotNil(t, overview.Assets[0].Score)
	assert.Equal(t, 17.0, overview.Assets[0].Score.Total)
}

func TestHandleAssetDetail(t *testing.T) {
	router, _, eventsRepo, thesisRepo, assetID, cleanup := newTestDashboard(t)
	defer cleanup()

	_, err := eventsRepo.Insert(ogtest.NewEventFixture(
		assetID, events.TypeRelease, "halving", time.Now().UTC().AddDate(0, 0, -5), events.SeverityInfo))
	require.NoError(t, err)

	note := "digital gold"
	require.NoError(t, thesisRepo.Upsert(assetID, thesis.SaveNoteRequest{Thesis: &note}))

	req := httptest.NewRequest("GET", "/assets/BTC", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var detail Detail
	require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
	assert.Equal(t, "BTC", detail.Asset.Symbol)
	assert.Len(t, detail.Metrics, 10)
	assert.Len(t, detail.Events, 1)
	require.NotNil(t, detail.Thesis)
	assert.Equal(t, "digital gold", *detail.Thesis.Thesis)
	assert.Nil(t, detail.Score)
}

func TestHandleAssetDetail_UnknownSymbol(t *testing.T) {
	router, _, _, _, _, cleanup := newTestDashboard(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/assets/NOPE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleTimeline_MergesMetricsAndEvents(t *testing.T) {
	router, _, eventsRepo, _, assetID, cleanup := newTestDashboard(t)
	defer cleanup()

	_, err := eventsRepo.Insert(ogtest.NewEventFixture(
		assetID, events.TypeGovernance, "quorum fight", time.Now().UTC().AddDate(0, 0, -2), events.SeverityHigh))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/assets/BTC/timeline?range=30d", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []TimelineEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&entries))
	assert.Len(t, entries, 11) // 10 snapshots + 1 event

	// Newest first throughout
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i].Date, entries[i-1].Date)
	}

	kinds := map[string]int{}
	for _, e := range entries {
		kinds[e.Kind]++
	}
	assert.Equal(t, 10, kinds["metric"])
	assert.Equal(t, 1, kinds["event"])
}

func TestHandleMetricsRange_BadRange(t *testing.T) {
	router, _, _, _, _, cleanup := newTestDashboard(t)
	defer cleanup()

	for _, q := range []string{"range=0d", "range=9999d", "range=abc"} {
		req := httptest.NewRequest("GET", "/assets/BTC/metrics?"+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	req := httptest.NewRequest("GET", "/assets/BTC/metrics?range=5d", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snaps []metrics.Snapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snaps))
	assert.Len(t, snaps, 5)
}
