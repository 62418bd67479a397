package ingest

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/domain"
	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
)

// Service is the ingestion gateway for one asset class. It is the only
// write path into the metrics and event stores: every item is validated
// against the expected shape and resolved against the registry before
// anything is written. Unknown symbols and malformed items are rejected
// per item, never per batch.
type Service struct {
	registryRepo *registry.Repository
	metricsRepo  *metrics.Repository
	eventsRepo   *events.Repository
	log          zerolog.Logger
}

// NewService creates an ingest service for one asset class
func NewService(
	registryRepo *registry.Repository,
	metricsRepo *metrics.Repository,
	eventsRepo *events.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		registryRepo: registryRepo,
		metricsRepo:  metricsRepo,
		eventsRepo:   eventsRepo,
		log:          log.With().Str("service", "ingest").Logger(),
	}
}

// IngestMetrics validates and stores a batch of metric observations.
// Re-ingesting the same (symbol, date) overwrites the prior snapshot.
func (s *Service) IngestMetrics(items []MetricItem) (*Response, error) {
	resp := &Response{Errors: []ItemError{}}

	for i, item := range items {
		assetID, err := s.resolveSymbol(item.Symbol)
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, ItemError{Index: i, Symbol: item.Symbol, Reason: err.Error()})
			continue
		}

		snapshot, err := item.toSnapshot(assetID)
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, ItemError{Index: i, Symbol: item.Symbol, Reason: err.Error()})
			continue
		}

		if err := s.metricsRepo.Upsert(*snapshot); err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, ItemError{Index: i, Symbol: item.Symbol, Reason: "store write failed"})
			s.log.Error().Str("symbol", item.Symbol).Err(err).Msg("Failed to upsert metric snapshot")
			continue
		}
		resp.Ingested++
	}

	s.log.Info().Int("ingested", resp.Ingested).Int("skipped", resp.Skipped).Msg("Metric batch processed")
	return resp, nil
}

// IngestEvents validates and stores a batch of events. Duplicate events
// (same content hash) count as skipped without an error entry.
func (s *Service) IngestEvents(items []EventItem) (*Response, error) {
	resp := &Response{Errors: []ItemError{}}

	for i, item := range items {
		assetID, err := s.resolveSymbol(item.Symbol)
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, ItemError{Index: i, Symbol: item.Symbol, Reason: err.Error()})
			continue
		}

		event, err := item.toEvent(assetID)
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, ItemError{Index: i, Symbol: item.Symbol, Reason: err.Error()})
			continue
		}

		created, err := s.eventsRepo.Insert(*event)
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, ItemError{Index: i, Symbol: item.Symbol, Reason: "store write failed"})
			s.log.Error().Str("symbol", item.Symbol).Err(err).Msg("Failed to insert event")
			continue
		}
		if !created {
			resp.Skipped++
			continue
		}
		resp.Ingested++
	}

	s.log.Info().Int("ingested", resp.Ingested).Int("skipped", resp.Skipped).Msg("Event batch processed")
	return resp, nil
}

func (s *Service) resolveSymbol(symbol string) (int64, error) {
	if symbol == "" {
		return 0, domain.NewValidationError("symbol", "required")
	}
	asset, err := s.registryRepo.GetBySymbol(symbol)
	if err != nil {
		return 0, domain.NewTransientStoreError("resolve_symbol", err)
	}
	if asset == nil || !asset.IsActive {
		return 0, domain.ErrAssetNotFound
	}
	return asset.ID, nil
}

func (m MetricItem) toSnapshot(assetID int64) (*metrics.Snapshot, error) {
	if m.Date == "" {
		return nil, domain.NewValidationError("date", "required")
	}
	if _, err := time.Parse(metrics.DateLayout, m.Date); err != nil {
		return nil, domain.NewValidationError("date", "expected YYYY-MM-DD")
	}

	fields := map[string]*float64{
		"price_usd":   m.PriceUSD,
		"market_cap":  m.MarketCap,
		"volume_24h":  m.Volume24h,
		"tvl":         m.TVL,
		"fees_24h":    m.Fees24h,
		"revenue_24h": m.Revenue24h,
	}
	for name, v := range fields {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, domain.NewValidationError(name, "must be finite")
		}
		if *v < 0 {
			return nil, domain.NewValidationError(name, "must be non-negative")
		}
	}
	// P/E may legitimately be negative (loss-making companies), only
	// reject non-finite values
	if m.PERatio != nil && (math.IsNaN(*m.PERatio) || math.IsInf(*m.PERatio, 0)) {
		return nil, domain.NewValidationError("pe_ratio", "must be finite")
	}

	return &metrics.Snapshot{
		AssetID:    assetID,
		Date:       m.Date,
		PriceUSD:   m.PriceUSD,
		MarketCap:  m.MarketCap,
		Volume24h:  m.Volume24h,
		TVL:        m.TVL,
		Fees24h:    m.Fees24h,
		Revenue24h: m.Revenue24h,
		PERatio:    m.PERatio,
		Raw:        m.Raw,
	}, nil
}

func (e EventItem) toEvent(assetID int64) (*events.Event, error) {
	if e.Title == "" {
		return nil, domain.NewValidationError("title", "required")
	}
	eventType := events.Type(e.Type)
	if !events.KnownTypes[eventType] {
		return nil, domain.NewValidationError("type", "unknown event type")
	}
	if e.Severity < events.SeverityInfo || e.Severity > events.SeverityCritical {
		return nil, domain.NewValidationError("severity", "must be between 1 and 5")
	}
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return nil, domain.NewValidationError("timestamp", "expected RFC3339")
	}

	return &events.Event{
		AssetID:   assetID,
		Hash:      events.Hash(assetID, eventType, e.Title, ts),
		Timestamp: ts.UTC(),
		Type:      eventType,
		Title:     e.Title,
		URL:       e.URL,
		Severity:  e.Severity,
		Summary:   e.Summary,
	}, nil
}
