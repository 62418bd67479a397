// Package jobs holds the scheduled pipeline jobs: the data collectors
// and the daily collect-then-score pipeline.
package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/clients/coingecko"
	"github.com/aristath/oneglance/internal/clients/defillama"
	"github.com/aristath/oneglance/internal/modules/ingest"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/registry"
)

// CollectCryptoJob pulls today's market data for every active crypto
// asset and pushes it through the ingestion gateway. Market numbers
// come from CoinGecko; TVL and fee numbers from DefiLlama for assets
// with a protocol slug. All writes go through ingest so scheduled
// collection and manual pushes obey the same validation.
type CollectCryptoJob struct {
	registryRepo *registry.Repository
	ingestSvc    *ingest.Service
	coingecko    *coingecko.Client
	defillama    *defillama.Client
	log          zerolog.Logger
}

// NewCollectCryptoJob creates the crypto collection job
func NewCollectCryptoJob(
	registryRepo *registry.Repository,
	ingestSvc *ingest.Service,
	cg *coingecko.Client,
	dl *defillama.Client,
	log zerolog.Logger,
) *CollectCryptoJob {
	return &CollectCryptoJob{
		registryRepo: registryRepo,
		ingestSvc:    ingestSvc,
		coingecko:    cg,
		defillama:    dl,
		log:          log.With().Str("job", "collect_crypto").Logger(),
	}
}

// Name returns the job name
func (j *CollectCryptoJob) Name() string { return "collect_crypto" }

// Run collects and ingests today's crypto metrics
func (j *CollectCryptoJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	assets, err := j.registryRepo.GetActive()
	if err != nil {
		return err
	}

	today := time.Now().UTC().Format(metrics.DateLayout)
	items := map[string]*ingest.MetricItem{}

	// Market data in one batched CoinGecko call
	var ids []string
	idToSymbol := map[string]string{}
	for _, a := range assets {
		if a.Source == nil || a.Source.CoinGeckoID == nil {
			continue
		}
		ids = append(ids, *a.Source.CoinGeckoID)
		idToSymbol[*a.Source.CoinGeckoID] = a.Symbol
	}

	if len(ids) > 0 {
		markets, err := j.coingecko.MarketsByID(ctx, strings.Join(ids, ","))
		if err != nil {
			j.log.Error().Err(err).Msg("Failed to fetch CoinGecko markets")
		} else {
			for _, m := range markets {
				symbol, ok := idToSymbol[m.ID]
				if !ok {
					continue
				}
				price, mcap, vol := m.Price, m.MarketCap, m.Volume24h
				items[symbol] = &ingest.MetricItem{
					Symbol:    symbol,
					Date:      today,
					PriceUSD:  &price,
					MarketCap: &mcap,
					Volume24h: &vol,
				}
			}
		}
	}

	// TVL and fees per protocol. Snapshot rows are overwritten whole on
	// re-ingest, so these merge into the same item as the market data.
	for _, a := range assets {
		if a.Source == nil || a.Source.DefiLlamaSlug == nil {
			continue
		}
		slug := *a.Source.DefiLlamaSlug

		item, ok := items[a.Symbol]
		if !ok {
			item = &ingest.MetricItem{Symbol: a.Symbol, Date: today}
			items[a.Symbol] = item
		}

		protocol, err := j.defillama.ProtocolTVL(ctx, slug)
		if err != nil {
			j.log.Warn().Str("symbol", a.Symbol).Err(err).Msg("Failed to fetch TVL")
		} else {
			tvl := protocol.TVL
			item.TVL = &tvl
		}

		fees, err := j.defillama.ProtocolFees(ctx, slug)
		if err != nil {
			j.log.Warn().Str("symbol", a.Symbol).Err(err).Msg("Failed to fetch fees")
		} else {
			item.Fees24h = fees.Total24h
			item.Revenue24h = fees.Revenue24h
		}
	}

	if len(items) == 0 {
		j.log.Info().Msg("No crypto metrics collected")
		return nil
	}

	batch := make([]ingest.MetricItem, 0, len(items))
	for _, item := range items {
		batch = append(batch, *item)
	}

	resp, err := j.ingestSvc.IngestMetrics(batch)
	if err != nil {
		return err
	}

	j.log.Info().Int("ingested", resp.Ingested).Int("skipped", resp.Skipped).
		Msg("Crypto collection finished")
	return nil
}
