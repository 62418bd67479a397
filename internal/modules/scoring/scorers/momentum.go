package scorers

import (
	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// MomentumScorer rates short-term price behavior: trend direction over
// 7 days, relative volatility (excessive volatility is penalized even
// when the trend is up), and an RSI guard against chasing overextended
// moves.
type MomentumScorer struct {
	Max              float64
	VolatilityCutoff float64 // stddev/mean over the short window
}

// rsiPeriod is the lookback for the RSI guard; talib needs period+1
// closes before it emits a value.
const rsiPeriod = 14

// NewMomentumScorer creates a momentum scorer
func NewMomentumScorer(max, volatilityCutoff float64) *MomentumScorer {
	return &MomentumScorer{Max: max, VolatilityCutoff: volatilityCutoff}
}

// Calculate scores a close-price series given in ascending date order.
// A series shorter than 7 closes scores neutral.
func (s *MomentumScorer) Calculate(closes []float64) (float64, []string) {
	score := 0.5 * s.Max

	if len(closes) < 7 {
		return round2(score), nil
	}

	week := closes[len(closes)-7:]

	// 7-day trend
	change7d := pctChange(week[0], week[len(week)-1])
	if change7d > 0.05 {
		score += 0.2 * s.Max
	} else if change7d < -0.10 {
		score -= 0.2 * s.Max
	}

	// Relative volatility over the same window
	mean := stat.Mean(week, nil)
	if mean > 0 {
		volatility := stat.StdDev(week, nil) / mean
		if volatility > s.VolatilityCutoff {
			score -= 0.2 * s.Max
		}
	}

	// RSI guard, only when the series is long enough
	if len(closes) > rsiPeriod {
		rsi := talib.Rsi(closes, rsiPeriod)
		latest := rsi[len(rsi)-1]
		if latest >= 75 {
			score -= 0.1 * s.Max
		} else if latest > 0 && latest <= 25 {
			score += 0.1 * s.Max
		}
	}

	return round2(clamp(score, 0, s.Max)), nil
}
