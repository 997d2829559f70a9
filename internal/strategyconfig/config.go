package strategyconfig

import (
	"time"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
)

// Config is the full monthly-rebalance strategy definition. One YAML file
// is the single source of truth for a run; the old per-script constants
// (universe 500→15 vs 500→10, Sharpe window, smoothing on/off) are all
// fields here.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Ranking   Ranking   `yaml:"ranking" json:"ranking"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Calendar  Calendar  `yaml:"calendar" json:"calendar"`
}

// Meta identifies the strategy variant.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe is the size/liquidity cut applied before ranking.
type Universe struct {
	MaxSize int `yaml:"max_size" json:"max_size"`
}

// Ranking selects and optionally smooths the rank metric.
type Ranking struct {
	Metric contracts.RankMetric `yaml:"metric" json:"metric"`
	// SmoothingDays > 1 averages the metric over the trailing window
	// ending at each rebalance date. 0 or 1 uses the point value.
	SmoothingDays int `yaml:"smoothing_days" json:"smoothing_days"`
}

// Portfolio sizes the held book and its starting value.
type Portfolio struct {
	Size         int     `yaml:"size" json:"size"`
	InitialValue float64 `yaml:"initial_value" json:"initial_value"`
}

// Calendar controls how holding-period series are emitted.
type Calendar struct {
	// KeepAnchorRow keeps each period's rebalance date in the output
	// series instead of starting the day after.
	KeepAnchorRow bool `yaml:"keep_anchor_row" json:"keep_anchor_row"`
}

// Default returns the production strategy parameters.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "monthly-sharpe",
			Version:    "1.0",
		},
		Universe: Universe{
			MaxSize: 500,
		},
		Ranking: Ranking{
			Metric: contracts.MetricSharpe365,
		},
		Portfolio: Portfolio{
			Size:         15,
			InitialValue: 1.0,
		},
	}
}

// EffectiveFor returns a copy of c with a run's engine parameters folded
// back in. Flags and API requests may override individual strategy fields,
// so hashing the result stamps a persisted run with the exact parameter
// set that produced it, not just the file it started from.
func (c *Config) EffectiveFor(run engine.Config) *Config {
	out := *c
	out.Universe.MaxSize = run.MaxUniverseSize
	out.Ranking.Metric = run.Metric
	out.Ranking.SmoothingDays = run.SmoothingDays
	out.Portfolio.Size = run.PortfolioSize
	out.Portfolio.InitialValue = run.InitialValue
	out.Calendar.KeepAnchorRow = run.KeepAnchorRow
	return &out
}

// StrategySnapshot records the exact configuration a run was produced
// with, for reproducibility.
type StrategySnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	CreatedAt  time.Time `json:"created_at"`
}
