package registry

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Repository handles asset and source database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

const assetColumns = `id, symbol, name, category, chain, is_active, tracking_type`

// NewRepository creates a new registry repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "registry").Logger(),
	}
}

// GetBySymbol returns an asset by symbol, or nil when not registered
func (r *Repository) GetBySymbol(symbol string) (*Asset, error) {
	query := "SELECT " + assetColumns + " FROM assets WHERE symbol = ?"

	row := r.db.QueryRow(query, normalizeSymbol(symbol))
	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset by symbol: %w", err)
	}
	return asset, nil
}

// GetActive returns all active assets with their source mappings,
// ordered by symbol
func (r *Repository) GetActive() ([]AssetWithSource, error) {
	query := `
		SELECT a.id, a.symbol, a.name, a.category, a.chain, a.is_active, a.tracking_type,
		       s.coingecko_id, s.defillama_slug, s.tokenunlocks_id, s.governance_url
		FROM assets a
		LEFT JOIN sources s ON a.id = s.asset_id
		WHERE a.is_active = 1
		ORDER BY a.symbol`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active assets: %w", err)
	}
	defer rows.Close()

	var assets []AssetWithSource
	for rows.Next() {
		var a Asset
		var category, chain sql.NullString
		var cgID, llamaSlug, unlocksID, govURL sql.NullString

		err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &category, &chain, &a.IsActive, &a.TrackingType,
			&cgID, &llamaSlug, &unlocksID, &govURL)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}

		a.Category = nullableString(category)
		a.Chain = nullableString(chain)

		aws := AssetWithSource{Asset: a}
		if cgID.Valid || llamaSlug.Valid || unlocksID.Valid || govURL.Valid {
			aws.Source = &Source{
				AssetID:        a.ID,
				CoinGeckoID:    nullableString(cgID),
				DefiLlamaSlug:  nullableString(llamaSlug),
				TokenUnlocksID: nullableString(unlocksID),
				GovernanceURL:  nullableString(govURL),
			}
		}
		assets = append(assets, aws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// Add registers a new asset, or reactivates an existing one. When the
// asset already exists its tracking type is promoted to the requested
// one; history is always preserved.
func (r *Repository) Add(req AddAssetRequest, tracking TrackingType) (*Asset, error) {
	symbol := normalizeSymbol(req.Symbol)

	existing, err := r.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		_, err := r.db.Exec(
			"UPDATE assets SET is_active = 1, tracking_type = ? WHERE id = ?",
			string(tracking), existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reactivate asset %s: %w", symbol, err)
		}
		existing.IsActive = true
		existing.TrackingType = tracking
		r.upsertSourceFromRequest(existing.ID, req)
		return existing, nil
	}

	res, err := r.db.Exec(
		"INSERT INTO assets (symbol, name, category, chain, tracking_type) VALUES (?, ?, ?, ?, ?)",
		symbol, req.Name, req.Category, req.Chain, string(tracking),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert asset %s: %w", symbol, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get asset id: %w", err)
	}

	r.upsertSourceFromRequest(id, req)

	return &Asset{
		ID:           id,
		Symbol:       symbol,
		Name:         req.Name,
		Category:     req.Category,
		Chain:        req.Chain,
		IsActive:     true,
		TrackingType: tracking,
	}, nil
}

// Deactivate marks an asset inactive, preserving all history.
// Returns false when the symbol is not registered.
func (r *Repository) Deactivate(symbol string) (bool, error) {
	res, err := r.db.Exec(
		"UPDATE assets SET is_active = 0 WHERE symbol = ?",
		normalizeSymbol(symbol),
	)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate asset %s: %w", symbol, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// UpsertSource stores or updates the provider mapping for an asset
func (r *Repository) UpsertSource(src Source) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (asset_id, coingecko_id, defillama_slug, tokenunlocks_id, governance_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(asset_id) DO UPDATE SET
			coingecko_id = COALESCE(excluded.coingecko_id, coingecko_id),
			defillama_slug = COALESCE(excluded.defillama_slug, defillama_slug),
			tokenunlocks_id = COALESCE(excluded.tokenunlocks_id, tokenunlocks_id),
			governance_url = COALESCE(excluded.governance_url, governance_url)`,
		src.AssetID, src.CoinGeckoID, src.DefiLlamaSlug, src.TokenUnlocksID, src.GovernanceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert source for asset %d: %w", src.AssetID, err)
	}
	return nil
}

// GetSource returns the provider mapping for an asset, or nil
func (r *Repository) GetSource(assetID int64) (*Source, error) {
	row := r.db.QueryRow(
		"SELECT asset_id, coingecko_id, defillama_slug, tokenunlocks_id, governance_url FROM sources WHERE asset_id = ?",
		assetID,
	)

	var src Source
	var cgID, llamaSlug, unlocksID, govURL sql.NullString
	err := row.Scan(&src.AssetID, &cgID, &llamaSlug, &unlocksID, &govURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	src.CoinGeckoID = nullableString(cgID)
	src.DefiLlamaSlug = nullableString(llamaSlug)
	src.TokenUnlocksID = nullableString(unlocksID)
	src.GovernanceURL = nullableString(govURL)
	return &src, nil
}

func (r *Repository) upsertSourceFromRequest(assetID int64, req AddAssetRequest) {
	if req.CoinGeckoID == nil && req.DefiLlamaSlug == nil {
		return
	}
	err := r.UpsertSource(Source{
		AssetID:       assetID,
		CoinGeckoID:   req.CoinGeckoID,
		DefiLlamaSlug: req.DefiLlamaSlug,
	})
	if err != nil {
		r.log.Warn().Int64("asset_id", assetID).Err(err).Msg("Failed to store source mapping")
	}
}

func scanAsset(row *sql.Row) (*Asset, error) {
	var a Asset
	var category, chain sql.NullString
	err := row.Scan(&a.ID, &a.Symbol, &a.Name, &category, &chain, &a.IsActive, &a.TrackingType)
	if err != nil {
		return nil, err
	}
	a.Category = nullableString(category)
	a.Chain = nullableString(chain)
	return &a, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
