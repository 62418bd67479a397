package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor_Thresholds(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, StatusAccumulate, StatusFor(30, cfg))
	assert.Equal(t, StatusAccumulate, StatusFor(22, cfg))
	assert.Equal(t, StatusObserve, StatusFor(21.99, cfg))
	assert.Equal(t, StatusObserve, StatusFor(15, cfg))
	assert.Equal(t, StatusRiskOff, StatusFor(14.99, cfg))
	assert.Equal(t, StatusRiskOff, StatusFor(0, cfg))
}

func TestStatusFor_Monotonic(t *testing.T) {
	cfg := DefaultConfig()

	rank := map[Status]int{StatusRiskOff: 0, StatusObserve: 1, StatusAccumulate: 2}

	prev := StatusFor(0, cfg)
	for total := 0.0; total <= 30; total += 0.25 {
		current := StatusFor(total, cfg)
		assert.GreaterOrEqual(t, rank[current], rank[prev],
			"status must never get more severe as the total rises (total=%.2f)", total)
		prev = current
	}
}
