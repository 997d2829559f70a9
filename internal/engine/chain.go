package engine

import (
	"github.com/harshul/nsequant/internal/contracts"
)

// Accumulator stitches consecutive segment series into one continuous,
// scale-consistent portfolio value series. It is a strict left fold: the
// scale applied to a segment depends only on the carry left by the
// previous one, never on absolute price levels, which is what makes
// portfolios with different constituents each month composable into a
// single return series.
//
// The carry is the only piece of state threaded between periods. An
// Accumulator is local to one backtest run; independent runs never share
// one.
type Accumulator struct {
	carry  float64
	series []contracts.SeriesPoint
}

// NewAccumulator creates an accumulator starting at initialValue
// (typically 1.0, one unit of portfolio value).
func NewAccumulator(initialValue float64) *Accumulator {
	return &Accumulator{carry: initialValue}
}

// Append scales a segment's Total Value points by carry divided by the
// segment's anchor total (the unit count of starting positions, so the
// segment resumes exactly at the carried value) and advances the carry to
// the last valid scaled point.
//
// A nil or empty segment is omitted entirely and leaves the carry
// unchanged, so the next segment continues compounding from the last
// valid value. Invalid points are carried through unscaled-invalid and
// never advance the carry.
func (a *Accumulator) Append(seg *contracts.SegmentSeries) {
	if seg == nil || len(seg.Points) == 0 || seg.AnchorTotal == 0 {
		return
	}

	scale := a.carry / seg.AnchorTotal
	for _, p := range seg.Points {
		if !p.Valid {
			a.series = append(a.series, contracts.SeriesPoint{Date: p.Date})
			continue
		}
		v := p.Value * scale
		a.series = append(a.series, contracts.SeriesPoint{Date: p.Date, Value: v, Valid: true})
		a.carry = v
	}
}

// Carry returns the current cumulative portfolio value.
func (a *Accumulator) Carry() float64 {
	return a.carry
}

// Series returns the continuous portfolio value series accumulated so far.
func (a *Accumulator) Series() []contracts.SeriesPoint {
	return a.series
}
