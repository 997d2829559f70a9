package strategyconfig

import "fmt"

// ValidationError is a fatal configuration failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommended-constraint violation (non-fatal).
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if cfg.Universe.MaxSize <= 0 {
		return ValidationError{"universe.max_size", "must be > 0"}
	}

	if !cfg.Ranking.Metric.Valid() {
		return ValidationError{"ranking.metric", fmt.Sprintf("unknown metric %q", cfg.Ranking.Metric)}
	}
	if cfg.Ranking.SmoothingDays < 0 {
		return ValidationError{"ranking.smoothing_days", "must be >= 0"}
	}

	if cfg.Portfolio.Size <= 0 {
		return ValidationError{"portfolio.size", "must be > 0"}
	}
	if cfg.Portfolio.Size > cfg.Universe.MaxSize {
		return ValidationError{"portfolio.size", fmt.Sprintf("must be <= universe.max_size=%d", cfg.Universe.MaxSize)}
	}
	if cfg.Portfolio.InitialValue <= 0 {
		return ValidationError{"portfolio.initial_value", "must be > 0"}
	}

	return nil
}

// Warn checks recommended constraints.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// A book this concentrated makes single-name gaps dominate the
	// period return.
	if cfg.Portfolio.Size < 5 {
		warnings = append(warnings, Warning{
			Code:    "CONCENTRATED_PORTFOLIO",
			Message: fmt.Sprintf("portfolio.size=%d: single-name risk dominates below 5 holdings", cfg.Portfolio.Size),
		})
	}

	// A smoothing window longer than a month overlaps the previous
	// rebalance and dilutes the signal.
	if cfg.Ranking.SmoothingDays > 30 {
		warnings = append(warnings, Warning{
			Code:    "LONG_SMOOTHING",
			Message: fmt.Sprintf("ranking.smoothing_days=%d spans more than one holding period", cfg.Ranking.SmoothingDays),
		})
	}

	return warnings
}
