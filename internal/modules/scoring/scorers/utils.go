// Package scorers provides the per-category scoring implementations.
// Scorers are stateless and deterministic: for fixed inputs they return
// bit-identical results, which is what makes the daily pass idempotent.
package scorers

import "math"

// Risk flags. Flags are observability, not scoring inputs: they never
// feed back into the numeric score beyond what the sub-scores already
// capture, which keeps the model auditable.
const (
	FlagTVLDrop7d          = "tvl_drop_7d"
	FlagTVLDrop30d         = "tvl_drop_30d"
	FlagUnlockImminent     = "unlock_imminent"
	FlagExploitRecent      = "exploit_recent"
	FlagGovernanceConflict = "governance_conflict"
)

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pctChange returns (to-from)/from, or 0 when the base is not positive
func pctChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from
}
