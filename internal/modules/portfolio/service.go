package portfolio

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/domain"
	"github.com/aristath/oneglance/internal/modules/registry"
)

// Service manages positions and the valued portfolio summary
type Service struct {
	repo         *Repository
	registryRepo *registry.Repository
	log          zerolog.Logger
}

// NewService creates a portfolio service
func NewService(repo *Repository, registryRepo *registry.Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		registryRepo: registryRepo,
		log:          log.With().Str("service", "portfolio").Logger(),
	}
}

// AddPosition validates and records a purchase lot
func (s *Service) AddPosition(req AddPositionRequest) (*Position, error) {
	if req.Symbol == "" {
		return nil, domain.NewValidationError("symbol", "required")
	}
	if req.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	if req.PurchasePriceUSD < 0 {
		return nil, domain.NewValidationError("purchase_price_usd", "must be non-negative")
	}
	if _, err := time.Parse("2006-01-02", req.PurchaseDate); err != nil {
		return nil, domain.NewValidationError("purchase_date", "expected YYYY-MM-DD")
	}

	asset, err := s.registryRepo.GetBySymbol(req.Symbol)
	if err != nil {
		return nil, domain.NewTransientStoreError("resolve_symbol", err)
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}

	p := Position{
		AssetID:          asset.ID,
		Quantity:         req.Quantity,
		PurchasePriceUSD: req.PurchasePriceUSD,
		PurchaseDate:     req.PurchaseDate,
		Notes:            req.Notes,
	}
	id, err := s.repo.Add(p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// RemovePosition deletes a lot by id. Returns domain.ErrAssetNotFound
// semantics via a bool so handlers can map to 404.
func (s *Service) RemovePosition(id int64) (bool, error) {
	return s.repo.Delete(id)
}

// GetSummary values every holding at its latest ingested price. A
// holding with no price data yet is reported as unpriced rather than
// dropped or failed.
func (s *Service) GetSummary() (*Summary, error) {
	rows, err := s.repo.GetHoldings()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Holdings: []Holding{}}
	for _, row := range rows {
		h := Holding{
			Symbol:      row.Symbol,
			Name:        row.Name,
			Quantity:    row.Quantity,
			CostUSD:     row.CostUSD,
			LatestPrice: row.LatestPrice,
			PositionIDs: parseIDs(row.PositionIDs),
		}

		if row.LatestPrice != nil {
			value := row.Quantity * *row.LatestPrice
			profit := value - row.CostUSD
			h.ValueUSD = &value
			h.ProfitUSD = &profit
			if row.CostUSD > 0 {
				pct := profit / row.CostUSD * 100
				h.ProfitPct = &pct
			}
			summary.TotalValueUSD += value
			summary.Priced++
		} else {
			summary.Unpriced++
		}
		summary.TotalCostUSD += row.CostUSD
		summary.Holdings = append(summary.Holdings, h)
	}

	return summary, nil
}

func parseIDs(joined string) []int64 {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
