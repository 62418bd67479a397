package ingest

// MetricItem is one raw metric observation arriving at the gateway.
// Symbol and date are mandatory; every numeric field is optional and is
// stored only if it passes validation.
type MetricItem struct {
	Symbol     string   `json:"symbol"`
	Date       string   `json:"date"` // YYYY-MM-DD
	PriceUSD   *float64 `json:"price_usd,omitempty"`
	MarketCap  *float64 `json:"market_cap,omitempty"`
	Volume24h  *float64 `json:"volume_24h,omitempty"`
	TVL        *float64 `json:"tvl,omitempty"`
	Fees24h    *float64 `json:"fees_24h,omitempty"`
	Revenue24h *float64 `json:"revenue_24h,omitempty"`
	PERatio    *float64 `json:"pe_ratio,omitempty"`
	Raw        *string  `json:"raw,omitempty"`
}

// EventItem is one raw event arriving at the gateway
type EventItem struct {
	Symbol    string  `json:"symbol"`
	Timestamp string  `json:"timestamp"` // RFC3339
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	URL       *string `json:"url,omitempty"`
	Severity  int     `json:"severity"`
	Summary   *string `json:"summary,omitempty"`
}

// ItemError reports one rejected item with its position in the batch
type ItemError struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol,omitempty"`
	Reason string `json:"reason"`
}

// Response summarizes an ingest batch. Rejected items never abort the
// batch: valid items are stored, invalid ones are reported here.
type Response struct {
	Ingested int         `json:"ingested"`
	Skipped  int         `json:"skipped"`
	Errors   []ItemError `json:"errors"`
}

// MetricsRequest is the payload for the metrics ingest endpoint
type MetricsRequest struct {
	Metrics []MetricItem `json:"metrics"`
}

// EventsRequest is the payload for the events ingest endpoint
type EventsRequest struct {
	Events []EventItem `json:"events"`
}
