package metrics

// Snapshot is one asset's daily metric row. At most one snapshot exists
// per (asset, date); re-ingestion for the same date overwrites.
// All numeric fields are optional: providers report different subsets
// (TVL for DeFi protocols, P/E for equities) and sparse gaps are allowed.
type Snapshot struct {
	AssetID    int64    `json:"asset_id"`
	Date       string   `json:"date"` // calendar date, YYYY-MM-DD
	PriceUSD   *float64 `json:"price_usd,omitempty"`
	MarketCap  *float64 `json:"market_cap,omitempty"`
	Volume24h  *float64 `json:"volume_24h,omitempty"`
	TVL        *float64 `json:"tvl,omitempty"`
	Fees24h    *float64 `json:"fees_24h,omitempty"`
	Revenue24h *float64 `json:"revenue_24h,omitempty"`
	PERatio    *float64 `json:"pe_ratio,omitempty"`
	Raw        *string  `json:"-"` // original provider payload (JSON), kept for auditability
}

// DateLayout is the calendar-date format used across the metrics tables
const DateLayout = "2006-01-02"
