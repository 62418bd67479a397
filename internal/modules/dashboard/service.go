package dashboard

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/domain"
	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
	"github.com/aristath/oneglance/internal/modules/scoring"
	"github.com/aristath/oneglance/internal/modules/thesis"
)

const (
	detailMetricsDays  = 30
	detailEventsLimit  = 20
	timelineEventLimit = 100
)

// Service assembles the read-only presentation views for one asset
// class. It only reads; all writes go through ingest and scoring.
type Service struct {
	registryRepo *registry.Repository
	metricsRepo  *metrics.Repository
	eventsRepo   *events.Repository
	scoreRepo    *scoring.Repository
	thesisRepo   *thesis.Repository
	log          zerolog.Logger
}

// NewService creates a dashboard service
func NewService(
	registryRepo *registry.Repository,
	metricsRepo *metrics.Repository,
	eventsRepo *events.Repository,
	scoreRepo *scoring.Repository,
	thesisRepo *thesis.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		registryRepo: registryRepo,
		metricsRepo:  metricsRepo,
		eventsRepo:   eventsRepo,
		scoreRepo:    scoreRepo,
		thesisRepo:   thesisRepo,
		log:          log.With().Str("service", "dashboard").Logger(),
	}
}

// Overview returns one row per active asset, highest total score first,
// unscored assets at the end sorted by symbol.
func (s *Service) Overview() (*Overview, error) {
	assets, err := s.registryRepo.GetActive()
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_active_assets", err)
	}

	today := time.Now().UTC().Format(metrics.DateLayout)
	overview := &Overview{Assets: []Row{}}
	for _, a := range assets {
		row := Row{
			Symbol:   a.Symbol,
			Name:     a.Name,
			Category: a.Category,
		}

		latest, err := s.metricsRepo.Latest(a.ID, today)
		if err != nil {
			return nil, domain.NewTransientStoreError("fetch_latest_metrics", err)
		}
		if latest != nil {
			row.LatestPrice = latest.PriceUSD
		}

		score, err := s.scoreRepo.GetLatest(a.ID)
		if err != nil {
			return nil, domain.NewTransientStoreError("fetch_latest_score", err)
		}
		row.Score = score

		if score != nil {
			overview.Scored++
		} else {
			overview.Unscored++
		}
		overview.Assets = append(overview.Assets, row)
	}

	sort.SliceStable(overview.Assets, func(i, j int) bool {
		si, sj := overview.Assets[i].Score, overview.Assets[j].Score
		switch {
		case si != nil && sj != nil:
			if si.Total != sj.Total {
				return si.Total > sj.Total
			}
			return overview.Assets[i].Symbol < overview.Assets[j].Symbol
		case si != nil:
			return true
		case sj != nil:
			return false
		default:
			return overview.Assets[i].Symbol < overview.Assets[j].Symbol
		}
	})

	return overview, nil
}

// Detail returns the drill-down view for a symbol. Missing score,
// metrics or thesis are empty sections, not errors; only an unknown
// symbol fails.
func (s *Service) Detail(symbol string) (*Detail, error) {
	asset, err := s.registryRepo.GetBySymbol(symbol)
	if err != nil {
		return nil, domain.NewTransientStoreError("resolve_symbol", err)
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}

	source, err := s.registryRepo.GetSource(asset.ID)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_source", err)
	}

	today := time.Now().UTC().Format(metrics.DateLayout)
	history, err := s.metricsRepo.History(asset.ID, today, detailMetricsDays)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_metrics", err)
	}

	recentEvents, err := s.eventsRepo.Recent(asset.ID, detailEventsLimit)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_events", err)
	}

	score, err := s.scoreRepo.GetLatest(asset.ID)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_latest_score", err)
	}

	note, err := s.thesisRepo.Get(asset.ID)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_thesis", err)
	}

	if history == nil {
		history = []metrics.Snapshot{}
	}
	if recentEvents == nil {
		recentEvents = []events.Event{}
	}

	return &Detail{
		Asset:   registry.AssetWithSource{Asset: *asset, Source: source},
		Score:   score,
		Metrics: history,
		Events:  recentEvents,
		Thesis:  note,
	}, nil
}

// Timeline merges an asset's metric snapshots and events into one
// chronological list, newest first.
func (s *Service) Timeline(symbol string, days int) ([]TimelineEntry, error) {
	asset, err := s.registryRepo.GetBySymbol(symbol)
	if err != nil {
		return nil, domain.NewTransientStoreError("resolve_symbol", err)
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}

	today := time.Now().UTC().Format(metrics.DateLayout)
	history, err := s.metricsRepo.History(asset.ID, today, days)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_metrics", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	evts, err := s.eventsRepo.Window(asset.ID, since)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_events", err)
	}
	if len(evts) > timelineEventLimit {
		evts = evts[:timelineEventLimit]
	}

	entries := make([]TimelineEntry, 0, len(history)+len(evts))
	for i := range history {
		snap := history[i]
		entries = append(entries, TimelineEntry{Kind: "metric", Date: snap.Date, Metric: &snap})
	}
	for i := range evts {
		e := evts[i]
		entries = append(entries, TimelineEntry{Kind: "event", Date: e.Timestamp.UTC().Format(metrics.DateLayout), Event: &e})
	}

	// Newest first; events before metrics on the same date so the
	// narrative reads event -> resulting numbers
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Kind == "event" && entries[j].Kind == "metric"
	})

	return entries, nil
}

// MetricsRange returns an asset's snapshots for the trailing N days,
// newest first.
func (s *Service) MetricsRange(symbol string, days int) ([]metrics.Snapshot, error) {
	asset, err := s.registryRepo.GetBySymbol(symbol)
	if err != nil {
		return nil, domain.NewTransientStoreError("resolve_symbol", err)
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}

	today := time.Now().UTC().Format(metrics.DateLayout)
	history, err := s.metricsRepo.History(asset.ID, today, days)
	if err != nil {
		return nil, domain.NewTransientStoreError("fetch_metrics", err)
	}
	if history == nil {
		history = []metrics.Snapshot{}
	}
	return history, nil
}
