package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: repository interfaces are defined here only

// MarketDataRepository is the read-only view of the daily equity data
// source the engine runs against. Implementations own retry/backoff; the
// engine propagates any returned error for the affected query.
type MarketDataRepository interface {
	// GetMonthEndDates returns the last trading date of each calendar
	// month with records in [from, to], sorted ascending.
	GetMonthEndDates(ctx context.Context, from, to time.Time) ([]time.Time, error)

	// GetRankedCandidates returns the top MaxUniverseSize symbols by
	// market cap on the query date, ordered by market cap descending
	// (symbol ascending on equal cap). Rows with a null rank metric are
	// excluded before the size cut.
	GetRankedCandidates(ctx context.Context, q UniverseQuery) ([]Candidate, error)

	// GetClosingPrices returns daily closes for symbols over [from, to],
	// ordered by date then symbol. A quote with Valid=false marks a null
	// close cell; a symbol/date with no row is simply absent.
	GetClosingPrices(ctx context.Context, symbols []string, from, to time.Time) ([]Quote, error)
}

// RunRepository persists completed backtest runs for downstream reporting.
type RunRepository interface {
	SaveRun(ctx context.Context, run *BacktestRun) (int64, error)
	GetRun(ctx context.Context, id int64) (*BacktestRun, error)
	ListRuns(ctx context.Context, limit int) ([]*BacktestRun, error)
}
