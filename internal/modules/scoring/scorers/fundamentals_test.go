package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatSeries(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestFundamentals_NeutralOnShortSeries(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	score, flags := s.Calculate([]float64{100, 101, 102})
	assert.Equal(t, 5.0, score)
	assert.Empty(t, flags)

	score, flags = s.Calculate(nil)
	assert.Equal(t, 5.0, score)
	assert.Empty(t, flags)
}

func TestFundamentals_StableSeriesScoresBaseline(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	score, flags := s.Calculate(flatSeries(30, 1_000_000))
	assert.Equal(t, 5.0, score)
	assert.Empty(t, flags)
}

func TestFundamentals_SharpWeeklyDrop(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	// Flat for most of the month, then -20% over the last week
	series := flatSeries(24, 1000)
	for i := 0; i < 6; i++ {
		series = append(series, 800)
	}

	score, flags := s.Calculate(series)
	// -2 for the 7d drop; 30d change is -20%, inside the -25% band
	assert.Equal(t, 3.0, score)
	assert.Equal(t, []string{FlagTVLDrop7d}, flags)
}

func TestFundamentals_CollapseFlagsBothWindows(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	// -60% over the month and still falling through the last week
	series := flatSeries(23, 1000)
	series = append(series, 700, 650, 600, 550, 500, 450, 400)

	score, flags := s.Calculate(series)
	// baseline 5 - 2 (7d) - 3 (30d) = 0
	assert.Equal(t, 0.0, score)
	assert.Equal(t, []string{FlagTVLDrop7d, FlagTVLDrop30d}, flags)
}

func TestFundamentals_GrowthRewarded(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	// Compounding growth: well above +10% over the week and +25% over
	// the month
	series := make([]float64, 30)
	v := 1000.0
	for i := range series {
		series[i] = v
		v *= 1.02
	}

	score, flags := s.Calculate(series)
	// baseline 5 + 2 (7d growth) + 2 (30d growth) = 9
	assert.Equal(t, 9.0, score)
	assert.Empty(t, flags)
}

func TestFundamentals_ScoreStaysInBounds(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	cases := [][]float64{
		flatSeries(30, 1),
		append(flatSeries(23, 1e12), flatSeries(7, 1)...),
		{0, 0, 0, 0, 0, 0, 0, 0},
	}
	for _, series := range cases {
		score, _ := s.Calculate(series)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 10.0)
	}
}

func TestFundamentals_ZeroBaseIsNotATrend(t *testing.T) {
	s := NewFundamentalsScorer(10, 7)

	// A series starting at zero has no meaningful percent change
	series := append([]float64{0}, flatSeries(29, 1000)...)
	score, _ := s.Calculate(series)
	assert.Equal(t, 5.0, score)
}
