package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch telemetry, labeled by asset class (crypto/stocks) and outcome
// (scored/skipped/failed).
var (
	assetsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oneglance_scoring_assets_total",
		Help: "Assets processed by the scoring pass, by outcome.",
	}, []string{"class", "outcome"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oneglance_scoring_batch_seconds",
		Help:    "Wall-clock duration of a full scoring pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"class"})
)
