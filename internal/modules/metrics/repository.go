package metrics

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository handles daily metric database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new metrics repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "metrics").Logger(),
	}
}

// Upsert inserts or overwrites the snapshot for (asset, date).
// Re-ingestion for the same date replaces the previous row, never
// duplicates it.
func (r *Repository) Upsert(s Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO metrics_daily
			(asset_id, date, price_usd, market_cap, volume_24h, tvl, fees_24h, revenue_24h, pe_ratio, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset_id, date) DO UPDATE SET
			price_usd = excluded.price_usd,
			market_cap = excluded.market_cap,
			volume_24h = excluded.volume_24h,
			tvl = excluded.tvl,
			fees_24h = excluded.fees_24h,
			revenue_24h = excluded.revenue_24h,
			pe_ratio = excluded.pe_ratio,
			raw = excluded.raw,
			created_at = datetime('now')`,
		s.AssetID, s.Date, s.PriceUSD, s.MarketCap, s.Volume24h, s.TVL,
		s.Fees24h, s.Revenue24h, s.PERatio, s.Raw,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert metrics for asset %d on %s: %w", s.AssetID, s.Date, err)
	}
	return nil
}

// History returns up to `days` snapshots for an asset on or before the
// given date, newest first. Sparse gaps are allowed; callers decide
// whether the series is long enough to use.
func (r *Repository) History(assetID int64, onOrBefore string, days int) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT asset_id, date, price_usd, market_cap, volume_24h, tvl, fees_24h, revenue_24h, pe_ratio
		FROM metrics_daily
		WHERE asset_id = ? AND date <= ?
		ORDER BY date DESC
		LIMIT ?`,
		assetID, onOrBefore, days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Latest returns the most recent snapshot on or before the given date,
// or nil when the asset has no metrics yet
func (r *Repository) Latest(assetID int64, onOrBefore string) (*Snapshot, error) {
	history, err := r.History(assetID, onOrBefore, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}

func scanSnapshot(rows *sql.Rows) (Snapshot, error) {
	var s Snapshot
	var price, mcap, vol, tvl, fees, rev, pe sql.NullFloat64

	err := rows.Scan(&s.AssetID, &s.Date, &price, &mcap, &vol, &tvl, &fees, &rev, &pe)
	if err != nil {
		return s, err
	}

	s.PriceUSD = nullableFloat(price)
	s.MarketCap = nullableFloat(mcap)
	s.Volume24h = nullableFloat(vol)
	s.TVL = nullableFloat(tvl)
	s.Fees24h = nullableFloat(fees)
	s.Revenue24h = nullableFloat(rev)
	s.PERatio = nullableFloat(pe)
	return s, nil
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
