package dashboard

import (
	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
	"github.com/aristath/oneglance/internal/modules/scoring"
	"github.com/aristath/oneglance/internal/modules/thesis"
)

// Row is one asset's line on the one-glance dashboard. Score is nil for
// assets that have not been scored yet; that is a normal state shown as
// "no score yet", never an error.
type Row struct {
	Symbol      string         `json:"symbol"`
	Name        string         `json:"name"`
	Category    *string        `json:"category,omitempty"`
	LatestPrice *float64       `json:"latest_price,omitempty"`
	Score       *scoring.Score `json:"score,omitempty"`
}

// Overview is the full dashboard for one asset class, ordered by total
// score descending with unscored assets last.
type Overview struct {
	Assets   []Row `json:"assets"`
	Scored   int   `json:"scored"`
	Unscored int   `json:"unscored"`
}

// Detail is the drill-down view for one asset
type Detail struct {
	Asset   registry.AssetWithSource `json:"asset"`
	Score   *scoring.Score           `json:"score,omitempty"`
	Metrics []metrics.Snapshot       `json:"metrics"`
	Events  []events.Event           `json:"events"`
	Thesis  *thesis.Note             `json:"thesis,omitempty"`
}

// TimelineEntry is one item in an asset's merged history. Kind is
// "metric" or "event"; exactly one of Metric/Event is set.
type TimelineEntry struct {
	Kind   string            `json:"kind"`
	Date   string            `json:"date"`
	Metric *metrics.Snapshot `json:"metric,omitempty"`
	Event  *events.Event     `json:"event,omitempty"`
}
