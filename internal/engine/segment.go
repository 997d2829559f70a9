package engine

import (
	"context"
	"sort"
	"time"

	"github.com/harshul/nsequant/internal/contracts"
)

// BuildSegment produces one holding period's normalized value series for
// the given symbols over [start, end]. The close on the start date is the
// normalization anchor: every symbol column is divided by it, so each
// holding begins at exactly one unit and the Total Value row sum begins at
// len(symbols) units.
//
// A symbol without a valid close on the anchor date makes the period
// un-normalizable and returns *contracts.MissingPriceError. A symbol
// missing a close on a later date inside the period marks that date's
// Total Value invalid; the gap propagates, it is never summed as zero.
//
// When keepAnchor is false the anchor row is dropped from the emitted
// points: the holding period's realized path begins the day after
// rebalancing.
func BuildSegment(ctx context.Context, repo contracts.MarketDataRepository, symbols []string, start, end time.Time, keepAnchor bool) (*contracts.SegmentSeries, error) {
	quotes, err := repo.GetClosingPrices(ctx, symbols, start, end)
	if err != nil {
		return nil, &contracts.DataSourceError{Op: "closing prices", Err: err}
	}

	// Pivot into a date-indexed matrix with one column per symbol.
	matrix := make(map[time.Time]map[string]float64)
	for _, q := range quotes {
		if !q.Valid {
			continue
		}
		row, ok := matrix[q.Date]
		if !ok {
			row = make(map[string]float64, len(symbols))
			matrix[q.Date] = row
		}
		row[q.Symbol] = q.Close
	}

	// Anchor row: every held symbol must have a usable price on the start
	// date. A zero close cannot serve as a divisor, so it counts as missing.
	anchor := matrix[start]
	for _, sym := range symbols {
		if close, ok := anchor[sym]; !ok || close == 0 {
			return nil, &contracts.MissingPriceError{Symbol: sym, Date: start}
		}
	}

	dates := make([]time.Time, 0, len(matrix))
	for d := range matrix {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	seg := &contracts.SegmentSeries{
		Start:       start,
		End:         end,
		Symbols:     append([]string(nil), symbols...),
		AnchorTotal: float64(len(symbols)),
		Points:      make([]contracts.SeriesPoint, 0, len(dates)),
	}

	for _, d := range dates {
		if !keepAnchor && d.Equal(start) {
			continue
		}
		row := matrix[d]
		point := contracts.SeriesPoint{Date: d, Valid: true}
		for _, sym := range symbols {
			close, ok := row[sym]
			if !ok {
				// Gap: the portfolio value on this date is unknown.
				point.Valid = false
				point.Value = 0
				break
			}
			point.Value += close / anchor[sym]
		}
		seg.Points = append(seg.Points, point)
	}

	seg.SymbolReturns = symbolReturns(symbols, dates, matrix)

	return seg, nil
}

// symbolReturns computes each symbol's point-to-point percentage change
// between its first and last available close inside the segment. This is
// reporting data, independent of the normalized series.
func symbolReturns(symbols []string, dates []time.Time, matrix map[time.Time]map[string]float64) map[string]float64 {
	returns := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		var first, last float64
		var seen bool
		for _, d := range dates {
			close, ok := matrix[d][sym]
			if !ok {
				continue
			}
			if !seen {
				first = close
				seen = true
			}
			last = close
		}
		if seen && first != 0 {
			returns[sym] = (last - first) / first * 100
		}
	}
	return returns
}
