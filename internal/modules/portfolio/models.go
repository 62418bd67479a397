package portfolio

// Position is one purchase lot of an asset. Multiple lots per asset are
// allowed; the summary aggregates them.
type Position struct {
	ID               int64   `json:"id"`
	AssetID          int64   `json:"asset_id"`
	Quantity         float64 `json:"quantity"`
	PurchasePriceUSD float64 `json:"purchase_price_usd"`
	PurchaseDate     string  `json:"purchase_date"` // YYYY-MM-DD
	Notes            *string `json:"notes,omitempty"`
}

// AddPositionRequest is the payload for recording a purchase
type AddPositionRequest struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	PurchasePriceUSD float64 `json:"purchase_price_usd"`
	PurchaseDate     string  `json:"purchase_date"`
	Notes            *string `json:"notes,omitempty"`
}

// Holding aggregates all lots of one asset, valued at the latest
// ingested price. ValueUSD and P/L fields are nil when no price has
// been ingested yet.
type Holding struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity"`
	CostUSD      float64  `json:"cost_usd"`
	LatestPrice  *float64 `json:"latest_price,omitempty"`
	ValueUSD     *float64 `json:"value_usd,omitempty"`
	ProfitUSD    *float64 `json:"profit_usd,omitempty"`
	ProfitPct    *float64 `json:"profit_pct,omitempty"`
	PositionIDs  []int64  `json:"position_ids"`
}

// Summary is the full portfolio view for one asset class
type Summary struct {
	Holdings      []Holding `json:"holdings"`
	TotalCostUSD  float64   `json:"total_cost_usd"`
	TotalValueUSD float64   `json:"total_value_usd"`
	Priced        int       `json:"priced"`   // holdings with a known latest price
	Unpriced      int       `json:"unpriced"` // holdings still waiting on price data
}
