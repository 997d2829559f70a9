package contracts

import "time"

// ⭐ SSOT: shared backtest types are defined here only

// RankMetric identifies the trailing risk-adjusted return column used to
// order the universe at a rebalance date.
type RankMetric string

const (
	MetricSharpe30  RankMetric = "sharpe_30"
	MetricSharpe90  RankMetric = "sharpe_90"
	MetricSharpe180 RankMetric = "sharpe_180"
	MetricSharpe365 RankMetric = "sharpe_365"
)

// Valid reports whether the metric names a known ranking column.
func (m RankMetric) Valid() bool {
	switch m {
	case MetricSharpe30, MetricSharpe90, MetricSharpe180, MetricSharpe365:
		return true
	}
	return false
}

// Candidate is one symbol in the size-bounded universe snapshot at a
// rebalance date. MarketCap is the liquidity/size weighting field (crores),
// Metric the rank metric value. Metric is never null: rows without it are
// excluded at the source.
type Candidate struct {
	Symbol    string  `json:"symbol"`
	MarketCap float64 `json:"market_cap"`
	Metric    float64 `json:"metric"`
}

// UniverseQuery describes a universe snapshot request.
type UniverseQuery struct {
	Date            time.Time
	MaxUniverseSize int
	Metric          RankMetric
	// SmoothingDays > 1 averages the metric over the trailing N calendar
	// days ending at Date instead of using the point value.
	SmoothingDays int
}

// RankedUniverse is the portfolio selected at a rebalance date: at most
// portfolio-size candidates, ordered descending by Metric with the size
// ordering breaking ties. A short or empty member list is valid.
type RankedUniverse struct {
	Date    time.Time   `json:"date"`
	Members []Candidate `json:"members"`
}

// Symbols returns the member symbols in rank order.
func (u *RankedUniverse) Symbols() []string {
	syms := make([]string, len(u.Members))
	for i, m := range u.Members {
		syms[i] = m.Symbol
	}
	return syms
}

// Quote is one daily closing price cell. Valid is false when the source
// row exists but the close is null.
type Quote struct {
	Symbol string
	Date   time.Time
	Close  float64
	Valid  bool
}

// SeriesPoint is one dated value of a portfolio series. An invalid point
// marks a date where at least one held symbol had no price; its Value is
// meaningless and must never be read as zero.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Valid bool      `json:"valid"`
}

// SegmentSeries is one holding period's normalized portfolio value series.
// Each symbol column was divided by its close on the anchor date, so the
// period starts at one unit per holding; AnchorTotal is the unit count of
// starting positions. Points begin the day after the anchor unless the
// builder was asked to keep the anchor row.
type SegmentSeries struct {
	Start       time.Time
	End         time.Time
	Symbols     []string
	AnchorTotal float64
	Points      []SeriesPoint
	// SymbolReturns maps each symbol to its point-to-point percentage
	// change between the first and last available close in the segment.
	SymbolReturns map[string]float64
}

// FirstValid returns the first valid point, if any.
func (s *SegmentSeries) FirstValid() (SeriesPoint, bool) {
	for _, p := range s.Points {
		if p.Valid {
			return p, true
		}
	}
	return SeriesPoint{}, false
}

// LastValid returns the last valid point, if any.
func (s *SegmentSeries) LastValid() (SeriesPoint, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Valid {
			return s.Points[i], true
		}
	}
	return SeriesPoint{}, false
}

// PeriodResult is one completed holding period.
type PeriodResult struct {
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	Symbols       []string           `json:"symbols"`
	ReturnPct     float64            `json:"return_pct"`
	SymbolReturns map[string]float64 `json:"symbol_returns,omitempty"`
}

// SkippedPeriod records a holding period excluded from the chained series.
type SkippedPeriod struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// Summary holds the statistics derived from a continuous portfolio series.
type Summary struct {
	TotalReturnPct float64 `json:"total_return_pct"`
	CAGRPct        float64 `json:"cagr_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

// BacktestRun is the persisted form of a completed backtest: the
// two-column (date, value) series, the per-period symbol lists, the
// skipped periods and the summary statistics.
type BacktestRun struct {
	ID              int64           `json:"id"`
	FromYear        int             `json:"from_year"`
	ToYear          int             `json:"to_year"`
	Metric          RankMetric      `json:"metric"`
	MaxUniverseSize int             `json:"max_universe_size"`
	PortfolioSize   int             `json:"portfolio_size"`
	ConfigHash      string          `json:"config_hash,omitempty"`
	Summary         Summary         `json:"summary"`
	Series          []SeriesPoint   `json:"series"`
	Periods         []PeriodResult  `json:"periods"`
	Skipped         []SkippedPeriod `json:"skipped"`
	CreatedAt       time.Time       `json:"created_at"`
}
