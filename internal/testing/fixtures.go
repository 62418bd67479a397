package testing

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
)

// SeedAsset inserts an asset row and returns its id
func SeedAsset(t *testing.T, db *sql.DB, symbol, name string) int64 {
	t.Helper()

	res, err := db.Exec(
		"INSERT INTO assets (symbol, name, tracking_type) VALUES (?, ?, 'watchlist')",
		symbol, name,
	)
	if err != nil {
		t.Fatalf("Failed to seed asset %s: %v", symbol, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get asset id: %v", err)
	}
	return id
}

// SeedPriceHistory inserts `days` daily snapshots ending at `end`, one
// per day in ascending date order, with the given constant price and
// market cap. Returns the dates used, ascending.
func SeedPriceHistory(t *testing.T, db *sql.DB, assetID int64, end time.Time, days int, price, marketCap float64) []string {
	t.Helper()

	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format(metrics.DateLayout)
		dates = append(dates, date)

		_, err := db.Exec(
			"INSERT INTO metrics_daily (asset_id, date, price_usd, market_cap) VALUES (?, ?, ?, ?)",
			assetID, date, price, marketCap,
		)
		if err != nil {
			t.Fatalf("Failed to seed snapshot for %s: %v", date, err)
		}
	}
	return dates
}

// NewEventFixture builds an event with a valid content hash
func NewEventFixture(assetID int64, eventType events.Type, title string, ts time.Time, severity int) events.Event {
	return events.Event{
		AssetID:   assetID,
		Hash:      events.Hash(assetID, eventType, title, ts),
		Timestamp: ts.UTC(),
		Type:      eventType,
		Title:     title,
		Severity:  severity,
	}
}
