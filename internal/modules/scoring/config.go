package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/oneglance/internal/domain"
)

// Config holds the scoring thresholds and windows. The cutoffs are
// descriptive constants, not derived from a formula; they are
// configurable precisely because the weighting model is heuristic.
type Config struct {
	// Each sub-score lies in [0, SubScoreMax]; total in [0, 3*SubScoreMax]
	SubScoreMax float64 `yaml:"sub_score_max"`

	// Status cutoffs over the total score
	HighThreshold float64 `yaml:"high_threshold"` // >= high -> ACCUMULATE
	MidThreshold  float64 `yaml:"mid_threshold"`  // >= mid  -> OBSERVE

	// Metric history: how far back to read, and the minimum number of
	// snapshots required before an asset is scored at all
	HistoryDays      int `yaml:"history_days"`
	MinHistoryPoints int `yaml:"min_history_points"`

	// Event windows (days)
	UnlockHorizonDays int `yaml:"unlock_horizon_days"` // unlocks this close ahead penalize tokenomics
	GovWindowDays     int `yaml:"gov_window_days"`     // trailing window for governance signals
	ExploitWindowDays int `yaml:"exploit_window_days"` // trailing window for the exploit_recent flag

	// Momentum volatility cutoff (stddev / mean over the short window)
	VolatilityCutoff float64 `yaml:"volatility_cutoff"`
}

// DefaultConfig returns the compiled-in thresholds: 0-10 per category,
// status cutoffs at 22 and 15 points.
func DefaultConfig() Config {
	return Config{
		SubScoreMax:       10,
		HighThreshold:     22,
		MidThreshold:      15,
		HistoryDays:       90,
		MinHistoryPoints:  7,
		UnlockHorizonDays: 30,
		GovWindowDays:     30,
		ExploitWindowDays: 90,
		VolatilityCutoff:  0.15,
	}
}

// LoadConfig returns the defaults, overridden by the YAML file at path
// when one is given. A broken or inconsistent file is a fatal
// configuration error, not something to limp along with.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, domain.NewConfigurationError("scoring_config", fmt.Sprintf("cannot read %s: %v", path, err))
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, domain.NewConfigurationError("scoring_config", fmt.Sprintf("cannot parse %s: %v", path, err))
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks threshold consistency
func (c Config) Validate() error {
	if c.SubScoreMax <= 0 {
		return domain.NewConfigurationError("sub_score_max", "must be positive")
	}
	totalMax := 3 * c.SubScoreMax
	if c.HighThreshold <= c.MidThreshold {
		return domain.NewConfigurationError("high_threshold", "must be greater than mid_threshold")
	}
	if c.HighThreshold > totalMax {
		return domain.NewConfigurationError("high_threshold", fmt.Sprintf("exceeds maximum total score %.0f", totalMax))
	}
	if c.MidThreshold <= 0 {
		return domain.NewConfigurationError("mid_threshold", "must be positive")
	}
	if c.MinHistoryPoints < 2 {
		return domain.NewConfigurationError("min_history_points", "must be at least 2")
	}
	if c.HistoryDays < c.MinHistoryPoints {
		return domain.NewConfigurationError("history_days", "must cover at least min_history_points days")
	}
	if c.UnlockHorizonDays < 0 || c.GovWindowDays < 0 || c.ExploitWindowDays < 0 {
		return domain.NewConfigurationError("event_windows", "must not be negative")
	}
	if c.VolatilityCutoff <= 0 {
		return domain.NewConfigurationError("volatility_cutoff", "must be positive")
	}
	return nil
}
