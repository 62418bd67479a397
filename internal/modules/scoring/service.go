package scoring

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/domain"
	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
	"github.com/aristath/oneglance/internal/modules/scoring/scorers"
)

// Service runs the daily scoring pass for one asset class.
//
// Each run is a pure function over the current contents of the registry,
// metrics and event stores: the engine holds no state between
// invocations and never reads its own prior output to compute a score
// (the previous day's row is consulted only for the status-change
// signal). Assets are independent, so the batch fans out over a bounded
// worker pool; one asset's missing data or failed write never blocks
// the others.
type Service struct {
	class        string // "crypto" or "stocks", used for logging/telemetry
	registryRepo *registry.Repository
	metricsRepo  *metrics.Repository
	eventsRepo   *events.Repository
	scoreRepo    *Repository
	cfg          Config
	workers      int
	log          zerolog.Logger

	fundamentals *scorers.FundamentalsScorer
	tokenomics   *scorers.TokenomicsScorer
	momentum     *scorers.MomentumScorer
	flagDetector *scorers.FlagDetector
}

// NewService creates a scoring service for one asset class
func NewService(
	class string,
	registryRepo *registry.Repository,
	metricsRepo *metrics.Repository,
	eventsRepo *events.Repository,
	scoreRepo *Repository,
	cfg Config,
	workers int,
	log zerolog.Logger,
) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		class:        class,
		registryRepo: registryRepo,
		metricsRepo:  metricsRepo,
		eventsRepo:   eventsRepo,
		scoreRepo:    scoreRepo,
		cfg:          cfg,
		workers:      workers,
		log:          log.With().Str("service", "scoring").Str("class", class).Logger(),
		fundamentals: scorers.NewFundamentalsScorer(cfg.SubScoreMax, cfg.MinHistoryPoints),
		tokenomics:   scorers.NewTokenomicsScorer(cfg.SubScoreMax, cfg.UnlockHorizonDays, cfg.GovWindowDays),
		momentum:     scorers.NewMomentumScorer(cfg.SubScoreMax, cfg.VolatilityCutoff),
		flagDetector: scorers.NewFlagDetector(cfg.ExploitWindowDays, cfg.GovWindowDays),
	}
}

// ComputeAll scores every active asset for the given date and upserts
// one row per (asset, date). The date is supplied by the caller; the
// engine has no other wall-clock dependency, so a re-run for the same
// date with unchanged inputs produces identical rows.
func (s *Service) ComputeAll(ctx context.Context, asOf time.Time) (*BatchSummary, error) {
	started := time.Now()
	asOf = asOf.UTC().Truncate(24 * time.Hour)
	dateStr := asOf.Format(metrics.DateLayout)

	summary := &BatchSummary{
		RunID:         uuid.NewString(),
		Date:          dateStr,
		Skipped:       []SkippedAsset{},
		Failed:        []SkippedAsset{},
		StatusChanges: []StatusChange{},
	}

	assets, err := s.registryRepo.GetActive()
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_active_assets", err)
	}

	s.log.Info().Str("run_id", summary.RunID).Str("date", dateStr).
		Int("assets", len(assets)).Msg("Starting scoring pass")

	var mu sync.Mutex
	pool := pond.NewPool(s.workers)
	group := pool.NewGroup()

	for _, asset := range assets {
		a := asset.Asset
		group.Submit(func() {
			if ctx.Err() != nil {
				mu.Lock()
				summary.Failed = append(summary.Failed, SkippedAsset{Symbol: a.Symbol, Reason: "canceled"})
				mu.Unlock()
				return
			}

			_, change, err := s.scoreAsset(ctx, a, asOf, dateStr)
			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == domain.ErrInsufficientData:
				summary.Skipped = append(summary.Skipped, SkippedAsset{Symbol: a.Symbol, Reason: "insufficient_data"})
				assetsProcessed.WithLabelValues(s.class, "skipped").Inc()
				s.log.Warn().Str("symbol", a.Symbol).Msg("Skipping asset: insufficient metric history")
			case err != nil:
				summary.Failed = append(summary.Failed, SkippedAsset{Symbol: a.Symbol, Reason: err.Error()})
				assetsProcessed.WithLabelValues(s.class, "failed").Inc()
				s.log.Error().Str("symbol", a.Symbol).Err(err).Msg("Failed to score asset")
			default:
				summary.Scored++
				assetsProcessed.WithLabelValues(s.class, "scored").Inc()
				if change != nil {
					summary.StatusChanges = append(summary.StatusChanges, *change)
				}
			}
		})
	}

	group.Wait()
	pool.StopAndWait()

	// Deterministic ordering for consumers regardless of worker timing
	sort.Slice(summary.Skipped, func(i, j int) bool { return summary.Skipped[i].Symbol < summary.Skipped[j].Symbol })
	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i].Symbol < summary.Failed[j].Symbol })
	sort.Slice(summary.StatusChanges, func(i, j int) bool {
		return summary.StatusChanges[i].Symbol < summary.StatusChanges[j].Symbol
	})

	batchDuration.WithLabelValues(s.class).Observe(time.Since(started).Seconds())
	s.log.Info().Str("run_id", summary.RunID).
		Int("scored", summary.Scored).
		Int("skipped", len(summary.Skipped)).
		Int("failed", len(summary.Failed)).
		Int("status_changes", len(summary.StatusChanges)).
		Msg("Scoring pass finished")

	return summary, nil
}

// scoreAsset computes and persists one asset's score. Returns
// domain.ErrInsufficientData when the asset lacks the required history.
// Every store access, read and write alike, goes through retryTransient
// so a momentary SQLITE_BUSY fails the asset only after the retries are
// exhausted.
func (s *Service) scoreAsset(ctx context.Context, a registry.Asset, asOf time.Time, dateStr string) (*Score, *StatusChange, error) {
	var history []metrics.Snapshot
	err := s.retryTransient(ctx, "fetch_metrics", func() error {
		var err error
		history, err = s.metricsRepo.History(a.ID, dateStr, s.cfg.HistoryDays)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if len(history) < s.cfg.MinHistoryPoints {
		return nil, nil, domain.ErrInsufficientData
	}

	// History comes newest-first; scorers expect ascending date order
	snapshots := make([]metrics.Snapshot, len(history))
	for i, snap := range history {
		snapshots[len(history)-1-i] = snap
	}

	// One event fetch covers every window; scorers filter what they need.
	// The window reaches back to the widest trailing window and forward
	// past asOf so future-dated unlock events are visible.
	eventWindow := s.cfg.GovWindowDays
	if s.cfg.ExploitWindowDays > eventWindow {
		eventWindow = s.cfg.ExploitWindowDays
	}
	var evts []events.Event
	err = s.retryTransient(ctx, "fetch_events", func() error {
		var err error
		evts, err = s.eventsRepo.Window(a.ID, asOf.AddDate(0, 0, -eventWindow))
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	fundamentals, fundFlags := s.fundamentals.Calculate(adoptionSeries(snapshots))
	tokenomics, tokenFlags := s.tokenomics.Calculate(evts, asOf)
	momentum, momFlags := s.momentum.Calculate(closeSeries(snapshots))
	extraFlags := s.flagDetector.Detect(evts, asOf)

	flags := mergeFlags(fundFlags, tokenFlags, momFlags, extraFlags)
	total := round2(fundamentals + tokenomics + momentum)

	score := Score{
		AssetID:      a.ID,
		Date:         dateStr,
		Fundamentals: fundamentals,
		Tokenomics:   tokenomics,
		Momentum:     momentum,
		Total:        total,
		Status:       StatusFor(total, s.cfg),
		Flags:        flags,
	}

	// Fetch the previous status before the upsert so an accidental
	// re-run for the same date compares against yesterday, not itself
	var prevStatus *Status
	err = s.retryTransient(ctx, "fetch_previous_status", func() error {
		var err error
		prevStatus, err = s.scoreRepo.PreviousStatus(a.ID, dateStr)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.retryTransient(ctx, "upsert_score", func() error {
		return s.scoreRepo.Upsert(score)
	})
	if err != nil {
		return nil, nil, err
	}

	var change *StatusChange
	if prevStatus != nil && *prevStatus != score.Status {
		reason := "score_change"
		if len(flags) > 0 {
			reason = strings.Join(flags, ", ")
		}
		change = &StatusChange{
			Symbol: a.Symbol,
			From:   prevStatus,
			To:     score.Status,
			Reason: reason,
		}
	}

	return &score, change, nil
}

// retryTransient runs one store operation, retrying a bounded number of
// times with exponential backoff. When every attempt fails the last
// error comes back wrapped as a transient store error tagged with op,
// and the caller reports the asset as failed and moves on.
func (s *Service) retryTransient(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	err := backoff.Retry(fn, backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx))
	if err != nil {
		return domain.NewTransientStoreError(op, err)
	}
	return nil
}

// adoptionSeries extracts the size/adoption metric in ascending date
// order: TVL when the asset reports enough of it, market cap otherwise
func adoptionSeries(snapshots []metrics.Snapshot) []float64 {
	// Trend windows look at the trailing 30 points at most
	if len(snapshots) > 30 {
		snapshots = snapshots[len(snapshots)-30:]
	}

	var tvl []float64
	for _, snap := range snapshots {
		if snap.TVL != nil {
			tvl = append(tvl, *snap.TVL)
		}
	}
	if len(tvl) >= 7 {
		return tvl
	}

	var mcap []float64
	for _, snap := range snapshots {
		if snap.MarketCap != nil {
			mcap = append(mcap, *snap.MarketCap)
		}
	}
	return mcap
}

// closeSeries extracts close prices in ascending date order
func closeSeries(snapshots []metrics.Snapshot) []float64 {
	var closes []float64
	for _, snap := range snapshots {
		if snap.PriceUSD != nil {
			closes = append(closes, *snap.PriceUSD)
		}
	}
	return closes
}

// mergeFlags deduplicates and sorts flags so stored rows are
// byte-identical across re-runs
func mergeFlags(sets ...[]string) []string {
	seen := map[string]bool{}
	merged := []string{}
	for _, set := range sets {
		for _, f := range set {
			if !seen[f] {
				seen[f] = true
				merged = append(merged, f)
			}
		}
	}
	sort.Strings(merged)
	return merged
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
