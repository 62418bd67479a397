package registry

// TrackingType says how an asset ended up in the registry
type TrackingType string

const (
	// TrackingWatchlist - manually curated by the operator
	TrackingWatchlist TrackingType = "watchlist"
	// TrackingTop50 - auto-discovered from the provider's top list
	TrackingTop50 TrackingType = "top50"
)

// Asset represents a tracked symbol (crypto or stock).
// Assets are append-only: never deleted, only deactivated.
type Asset struct {
	ID           int64        `json:"id"`
	Symbol       string       `json:"symbol"`
	Name         string       `json:"name"`
	Category     *string      `json:"category,omitempty"` // DeFi/L1/L2/... for crypto, sector for stocks
	Chain        *string      `json:"chain,omitempty"`    // chain for crypto, exchange for stocks
	IsActive     bool         `json:"is_active"`
	TrackingType TrackingType `json:"tracking_type"`
}

// Source holds the external provider identifiers for an asset.
// Stored as a table so the registry stays the single source of truth
// for symbol -> provider-id mappings.
type Source struct {
	AssetID        int64   `json:"asset_id"`
	CoinGeckoID    *string `json:"coingecko_id,omitempty"`
	DefiLlamaSlug  *string `json:"defillama_slug,omitempty"`
	TokenUnlocksID *string `json:"tokenunlocks_id,omitempty"`
	GovernanceURL  *string `json:"governance_url,omitempty"`
}

// AssetWithSource joins an asset with its provider mapping
type AssetWithSource struct {
	Asset
	Source *Source `json:"source,omitempty"`
}

// AddAssetRequest is the payload for adding an asset to the watchlist
type AddAssetRequest struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Category      *string `json:"category,omitempty"`
	Chain         *string `json:"chain,omitempty"`
	CoinGeckoID   *string `json:"coingecko_id,omitempty"`
	DefiLlamaSlug *string `json:"defillama_slug,omitempty"`
}
