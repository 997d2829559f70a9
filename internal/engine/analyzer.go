package engine

import (
	"math"

	"github.com/harshul/nsequant/internal/contracts"
)

// daysPerYear is the divisor used to annualize returns.
const daysPerYear = 365.25

// Summarize derives total return, CAGR and maximum drawdown from a
// continuous portfolio value series. Invalid points are ignored.
//
// Fails with contracts.ErrEmptySeries below two valid points and with
// contracts.ErrDegenerateRange when the valid span covers zero or
// negative elapsed time.
func Summarize(series []contracts.SeriesPoint) (contracts.Summary, error) {
	valid := make([]contracts.SeriesPoint, 0, len(series))
	for _, p := range series {
		if p.Valid {
			valid = append(valid, p)
		}
	}

	if len(valid) < 2 {
		return contracts.Summary{}, contracts.ErrEmptySeries
	}

	first, last := valid[0], valid[len(valid)-1]

	elapsedDays := last.Date.Sub(first.Date).Hours() / 24
	if elapsedDays <= 0 {
		return contracts.Summary{}, contracts.ErrDegenerateRange
	}

	growth := last.Value / first.Value

	return contracts.Summary{
		TotalReturnPct: (growth - 1) * 100,
		CAGRPct:        (math.Pow(growth, daysPerYear/elapsedDays) - 1) * 100,
		MaxDrawdownPct: maxDrawdown(valid),
	}, nil
}

// maxDrawdown returns the worst percentage decline from the running
// maximum, as a non-positive number. The running maximum includes the
// current point: a series at a new high has a drawdown of exactly 0.
func maxDrawdown(series []contracts.SeriesPoint) float64 {
	peak := series[0].Value
	worst := 0.0

	for _, p := range series {
		if p.Value > peak {
			peak = p.Value
		}
		dd := (p.Value - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}

	return worst
}
