package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository handles position database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// Add records a purchase lot and returns its id
func (r *Repository) Add(p Position) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO positions (asset_id, quantity, purchase_price_usd, purchase_date, notes)
		VALUES (?, ?, ?, ?, ?)`,
		p.AssetID, p.Quantity, p.PurchasePriceUSD, p.PurchaseDate, p.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert position: %w", err)
	}
	return res.LastInsertId()
}

// Delete removes a purchase lot. Returns false when the id does not exist.
func (r *Repository) Delete(id int64) (bool, error) {
	res, err := r.db.Exec("DELETE FROM positions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete position %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetByAsset returns all lots for one asset, oldest purchase first
func (r *Repository) GetByAsset(assetID int64) ([]Position, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, quantity, purchase_price_usd, purchase_date, notes
		FROM positions WHERE asset_id = ? ORDER BY purchase_date`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// holdingRow is one asset's aggregated lots joined with its latest price
type holdingRow struct {
	Symbol      string
	Name        string
	Quantity    float64
	CostUSD     float64
	LatestPrice *float64
	PositionIDs string // comma-joined lot ids from group_concat
}

// GetHoldings aggregates lots per asset and joins the latest ingested
// price. Assets with positions but no price data still appear, with a
// NULL price.
func (r *Repository) GetHoldings() ([]holdingRow, error) {
	rows, err := r.db.Query(`
		SELECT
			a.symbol,
			a.name,
			SUM(p.quantity) AS quantity,
			SUM(p.quantity * p.purchase_price_usd) AS cost_usd,
			(SELECT m.price_usd FROM metrics_daily m
			 WHERE m.asset_id = a.id AND m.price_usd IS NOT NULL
			 ORDER BY m.date DESC LIMIT 1) AS latest_price,
			GROUP_CONCAT(p.id) AS position_ids
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		GROUP BY a.id
		ORDER BY a.symbol`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var result []holdingRow
	for rows.Next() {
		var h holdingRow
		var price sql.NullFloat64
		if err := rows.Scan(&h.Symbol, &h.Name, &h.Quantity, &h.CostUSD, &price, &h.PositionIDs); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		if price.Valid {
			v := price.Float64
			h.LatestPrice = &v
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return result, nil
}

func scanPositions(rows *sql.Rows) ([]Position, error) {
	var result []Position
	for rows.Next() {
		var p Position
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.AssetID, &p.Quantity, &p.PurchasePriceUSD, &p.PurchaseDate, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		if notes.Valid {
			v := notes.String
			p.Notes = &v
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return result, nil
}
