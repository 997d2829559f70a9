package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/harshul/nsequant/internal/contracts"
)

// ResolveMonthEnds returns the ordered month-end trading dates that bound
// the holding periods of a backtest over [fromYear, toYear]. The query
// window carries a one-month buffer on each side so that the final period
// of the prior year and the first of the next can be formed.
//
// Fails with contracts.ErrNoData when fewer than two dates resolve: a
// backtest needs at least one start and one end boundary.
func ResolveMonthEnds(ctx context.Context, repo contracts.MarketDataRepository, fromYear, toYear int) ([]time.Time, error) {
	if toYear < fromYear {
		return nil, fmt.Errorf("invalid year range %d-%d", fromYear, toYear)
	}

	from := time.Date(fromYear-1, time.December, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(toYear+1, time.January, 31, 0, 0, 0, 0, time.UTC)

	dates, err := repo.GetMonthEndDates(ctx, from, to)
	if err != nil {
		return nil, &contracts.DataSourceError{Op: "month-end dates", Err: err}
	}

	// The source query groups by month, so dates arrive unique and sorted.
	// Verify anyway: a schedule that is not strictly increasing would break
	// every downstream holding period.
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("month-end dates not strictly increasing at %s",
				dates[i].Format("2006-01-02"))
		}
	}

	if len(dates) < 2 {
		return nil, fmt.Errorf("%d-%d: %w", fromYear, toYear, contracts.ErrNoData)
	}

	return dates, nil
}
