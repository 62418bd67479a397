package scoring

// Status is the categorical recommendation derived from the total score.
// It is a pure, monotonic function of the total: a higher total never
// yields a more severe status.
type Status string

const (
	StatusAccumulate Status = "ACCUMULATE"
	StatusObserve    Status = "OBSERVE"
	StatusRiskOff    Status = "RISK_OFF"
)

// Score is one asset's point-in-time daily score. Rows are upserted
// keyed on (asset, date) and never mutated afterwards; re-running the
// pass for the same date with unchanged inputs rewrites identical values.
type Score struct {
	AssetID      int64    `json:"asset_id"`
	Date         string   `json:"date"` // calendar date, YYYY-MM-DD
	Fundamentals float64  `json:"fundamentals_score"`
	Tokenomics   float64  `json:"tokenomics_score"`
	Momentum     float64  `json:"momentum_score"`
	Total        float64  `json:"total_score"`
	Status       Status   `json:"status"`
	Flags        []string `json:"flags"`
}

// StatusChange reports an asset whose status differs from its previous
// score row. Consumed by the alerting collaborator.
type StatusChange struct {
	Symbol string  `json:"symbol"`
	From   *Status `json:"from_status"`
	To     Status  `json:"to_status"`
	Reason string  `json:"reason"`
}

// SkippedAsset reports an asset the batch could not score
type SkippedAsset struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// BatchSummary aggregates one scoring pass. Per-asset failures are
// captured here; nothing about one asset aborts the others.
type BatchSummary struct {
	RunID         string         `json:"run_id"`
	Date          string         `json:"date"`
	Scored        int            `json:"scored"`
	Skipped       []SkippedAsset `json:"skipped"`
	Failed        []SkippedAsset `json:"failed"`
	StatusChanges []StatusChange `json:"status_changes"`
}

// StatusFor maps a total score to its status using the configured
// thresholds. Monotonic by construction.
func StatusFor(total float64, cfg Config) Status {
	switch {
	case total >= cfg.HighThreshold:
		return StatusAccumulate
	case total >= cfg.MidThreshold:
		return StatusObserve
	default:
		return StatusRiskOff
	}
}
