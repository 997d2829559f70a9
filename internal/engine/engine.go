package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/pkg/logger"
)

// Engine runs month-end rebalanced backtests
// ⭐ SSOT: the rebalance/accounting loop lives here only
type Engine struct {
	repo   contracts.MarketDataRepository
	logger *logger.Logger
}

// Config holds the parameters of one backtest run. The old script
// variants (universe 500→15 vs 500→10, different Sharpe windows) collapse
// into these fields.
type Config struct {
	FromYear int
	ToYear   int

	MaxUniverseSize int                  // size/liquidity cut, e.g. 500
	PortfolioSize   int                  // symbols held per period, e.g. 15
	Metric          contracts.RankMetric // ranking column
	SmoothingDays   int                  // trailing average window for the metric, 0/1 = point value

	InitialValue float64 // starting portfolio value, e.g. 1.0
	// KeepAnchorRow keeps each period's anchor date in the output series
	// instead of starting the day after rebalancing.
	KeepAnchorRow bool
}

// Validate checks the run parameters.
func (c Config) Validate() error {
	if c.ToYear < c.FromYear {
		return fmt.Errorf("invalid year range %d-%d", c.FromYear, c.ToYear)
	}
	if c.MaxUniverseSize <= 0 || c.PortfolioSize <= 0 {
		return fmt.Errorf("universe and portfolio sizes must be positive")
	}
	if c.PortfolioSize > c.MaxUniverseSize {
		return fmt.Errorf("portfolio size %d exceeds universe size %d",
			c.PortfolioSize, c.MaxUniverseSize)
	}
	if !c.Metric.Valid() {
		return fmt.Errorf("unknown rank metric %q", c.Metric)
	}
	if c.InitialValue <= 0 {
		return fmt.Errorf("initial value must be positive")
	}
	return nil
}

// Result holds a completed backtest run.
type Result struct {
	Config   Config
	Schedule []time.Time
	Periods  []contracts.PeriodResult
	Skipped  []contracts.SkippedPeriod
	Series   []contracts.SeriesPoint
	Summary  contracts.Summary
	Duration time.Duration
}

// ToRun converts a Result into its persisted form.
func (r *Result) ToRun() *contracts.BacktestRun {
	return &contracts.BacktestRun{
		FromYear:        r.Config.FromYear,
		ToYear:          r.Config.ToYear,
		Metric:          r.Config.Metric,
		MaxUniverseSize: r.Config.MaxUniverseSize,
		PortfolioSize:   r.Config.PortfolioSize,
		Summary:         r.Summary,
		Series:          r.Series,
		Periods:         r.Periods,
		Skipped:         r.Skipped,
	}
}

// New creates a backtest engine over the given data source.
func New(repo contracts.MarketDataRepository, log *logger.Logger) *Engine {
	return &Engine{
		repo:   repo,
		logger: log,
	}
}

// Run executes one backtest. Periods are processed strictly in date order:
// each period's scale depends on the previous period's ending value.
//
// Per-period failures (empty universe, missing anchor price) are recovered
// locally: the period is skipped, logged and reported in Result.Skipped,
// and the run continues. Structural failures (calendar resolution, data
// source errors) abort the run.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"from_year":      cfg.FromYear,
		"to_year":        cfg.ToYear,
		"universe":       cfg.MaxUniverseSize,
		"portfolio":      cfg.PortfolioSize,
		"metric":         string(cfg.Metric),
		"smoothing_days": cfg.SmoothingDays,
	}).Info("Starting backtest")

	startTime := time.Now()

	schedule, err := ResolveMonthEnds(ctx, e.repo, cfg.FromYear, cfg.ToYear)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:   cfg,
		Schedule: schedule,
	}
	acc := NewAccumulator(cfg.InitialValue)

	for i := 0; i < len(schedule)-1; i++ {
		current, next := schedule[i], schedule[i+1]

		universe, err := SelectUniverse(ctx, e.repo, contracts.UniverseQuery{
			Date:            current,
			MaxUniverseSize: cfg.MaxUniverseSize,
			Metric:          cfg.Metric,
			SmoothingDays:   cfg.SmoothingDays,
		}, cfg.PortfolioSize)
		if err != nil {
			return nil, err
		}

		if len(universe.Members) == 0 {
			e.skipPeriod(result, current, next, "empty universe")
			continue
		}

		seg, err := BuildSegment(ctx, e.repo, universe.Symbols(), current, next, cfg.KeepAnchorRow)
		if err != nil {
			var missing *contracts.MissingPriceError
			if errors.As(err, &missing) {
				e.skipPeriod(result, current, next, missing.Error())
				continue
			}
			return nil, err
		}

		last, ok := seg.LastValid()
		if !ok {
			e.skipPeriod(result, current, next, "no valid portfolio value inside period")
			continue
		}

		acc.Append(seg)

		periodReturn := (last.Value/seg.AnchorTotal - 1) * 100
		result.Periods = append(result.Periods, contracts.PeriodResult{
			Start:         current,
			End:           next,
			Symbols:       universe.Symbols(),
			ReturnPct:     periodReturn,
			SymbolReturns: seg.SymbolReturns,
		})

		e.logger.WithFields(map[string]interface{}{
			"period":     fmt.Sprintf("%d/%d", i+1, len(schedule)-1),
			"start":      current.Format("2006-01-02"),
			"end":        next.Format("2006-01-02"),
			"symbols":    len(universe.Members),
			"return_pct": fmt.Sprintf("%.2f", periodReturn),
		}).Debug("Period processed")
	}

	result.Series = acc.Series()
	result.Duration = time.Since(startTime)

	summary, err := Summarize(result.Series)
	if err != nil {
		return nil, fmt.Errorf("backtest %d-%d produced no usable series: %w",
			cfg.FromYear, cfg.ToYear, err)
	}
	result.Summary = summary

	e.logger.WithFields(map[string]interface{}{
		"duration":         result.Duration.Seconds(),
		"periods":          len(result.Periods),
		"skipped":          len(result.Skipped),
		"total_return_pct": fmt.Sprintf("%.2f", summary.TotalReturnPct),
		"cagr_pct":         fmt.Sprintf("%.2f", summary.CAGRPct),
		"max_drawdown_pct": fmt.Sprintf("%.2f", summary.MaxDrawdownPct),
	}).Info("Backtest completed")

	return result, nil
}

func (e *Engine) skipPeriod(result *Result, start, end time.Time, reason string) {
	result.Skipped = append(result.Skipped, contracts.SkippedPeriod{
		Start:  start,
		End:    end,
		Reason: reason,
	})

	e.logger.WithFields(map[string]interface{}{
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
		"reason": reason,
	}).Warn("Period skipped")
}
