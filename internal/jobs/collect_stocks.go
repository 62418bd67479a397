package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/clients/yahoo"
	"github.com/aristath/oneglance/internal/modules/ingest"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
)

// CollectStocksJob pulls today's quote for every active equity and
// pushes it through the ingestion gateway. Quotes are fetched one
// symbol at a time with a pause in between; Yahoo rate limits hard.
type CollectStocksJob struct {
	registryRepo *registry.Repository
	ingestSvc    *ingest.Service
	yahoo        *yahoo.Client
	log          zerolog.Logger
}

// NewCollectStocksJob creates the stocks collection job
func NewCollectStocksJob(
	registryRepo *registry.Repository,
	ingestSvc *ingest.Service,
	yh *yahoo.Client,
	log zerolog.Logger,
) *CollectStocksJob {
	return &CollectStocksJob{
		registryRepo: registryRepo,
		ingestSvc:    ingestSvc,
		yahoo:        yh,
		log:          log.With().Str("job", "collect_stocks").Logger(),
	}
}

// Name returns the job name
func (j *CollectStocksJob) Name() string { return "collect_stocks" }

// Run collects and ingests today's equity quotes
func (j *CollectStocksJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	assets, err := j.registryRepo.GetActive()
	if err != nil {
		return err
	}

	today := time.Now().UTC().Format(metrics.DateLayout)
	var batch []ingest.MetricItem

	for _, a := range assets {
		quote, err := j.yahoo.GetQuote(ctx, a.Symbol)
		if err != nil {
			j.log.Warn().Str("symbol", a.Symbol).Err(err).Msg("Failed to fetch quote")
			continue
		}

		price := quote.Price
		batch = append(batch, ingest.MetricItem{
			Symbol:    a.Symbol,
			Date:      today,
			PriceUSD:  &price,
			MarketCap: quote.MarketCap,
			Volume24h: quote.Volume,
		})

		time.Sleep(500 * time.Millisecond)
	}

	if len(batch) == 0 {
		j.log.Info().Msg("No equity quotes collected")
		return nil
	}

	resp, err := j.ingestSvc.IngestMetrics(batch)
	if err != nil {
		return err
	}

	j.log.Info().Int("ingested", resp.Ingested).Int("skipped", resp.Skipped).
		Msg("Equity collection finished")
	return nil
}
