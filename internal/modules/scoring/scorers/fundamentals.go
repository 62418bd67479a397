package scorers

// FundamentalsScorer rates the stability of an asset's size/adoption
// metric (TVL for DeFi protocols, market cap otherwise) over trailing
// 7-day and 30-day windows. Stability and growth are rewarded, sharp
// drawdowns penalized.
type FundamentalsScorer struct {
	Max       float64 // sub-score upper bound
	MinPoints int     // minimum series length before trends are trusted
}

// NewFundamentalsScorer creates a fundamentals scorer
func NewFundamentalsScorer(max float64, minPoints int) *FundamentalsScorer {
	return &FundamentalsScorer{Max: max, MinPoints: minPoints}
}

// Calculate scores an adoption series given in ascending date order
// (at most the trailing 30 points). A series too sparse for trend
// analysis scores neutral rather than penalizing the asset.
func (s *FundamentalsScorer) Calculate(adoption []float64) (float64, []string) {
	score := 0.5 * s.Max
	var flags []string

	if len(adoption) < s.MinPoints || len(adoption) < 7 {
		return round2(score), flags
	}

	last := adoption[len(adoption)-1]

	// 7-day trend
	change7d := pctChange(adoption[len(adoption)-7], last)
	if change7d < -0.10 {
		score -= 0.2 * s.Max
		flags = append(flags, FlagTVLDrop7d)
	} else if change7d > 0.10 {
		score += 0.2 * s.Max
	}

	// 30-day trend (window start = oldest point in the series)
	change30d := pctChange(adoption[0], last)
	if change30d < -0.25 {
		score -= 0.3 * s.Max
		flags = append(flags, FlagTVLDrop30d)
	} else if change30d > 0.25 {
		score += 0.2 * s.Max
	}

	return round2(clamp(score, 0, s.Max)), flags
}
