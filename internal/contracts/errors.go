package contracts

import (
	"errors"
	"fmt"
	"time"
)

// ⭐ SSOT: backtest error taxonomy is defined here only

// ErrNoData is returned when calendar resolution yields fewer than two
// month-end dates: a backtest needs at least one start and one end boundary.
var ErrNoData = errors.New("fewer than 2 month-end dates resolved")

// ErrDegenerateRange is returned when a series spans zero or negative
// elapsed time, making CAGR undefined.
var ErrDegenerateRange = errors.New("series elapsed time is zero or negative")

// ErrEmptySeries is returned when a series has fewer than 2 valid points,
// so none of the summary statistics is computable.
var ErrEmptySeries = errors.New("series has fewer than 2 valid points")

// MissingPriceError reports a held symbol without a closing price on the
// normalization anchor date. The affected period cannot be normalized and
// is skipped; the run continues.
type MissingPriceError struct {
	Symbol string
	Date   time.Time
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no closing price for %s on anchor date %s",
		e.Symbol, e.Date.Format("2006-01-02"))
}

// DataSourceError wraps a failure of the external data source. These are
// structural: no valid output can be produced, so the run aborts.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source: %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}
