package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/nsequant/internal/contracts"
)

func seriesOf(start time.Time, values ...float64) []contracts.SeriesPoint {
	out := make([]contracts.SeriesPoint, len(values))
	for i, v := range values {
		out[i] = contracts.SeriesPoint{
			Date:  start.AddDate(0, 0, i),
			Value: v,
			Valid: true,
		}
	}
	return out
}

func TestSummarize(t *testing.T) {
	start := day(2019, time.January, 31)
	series := seriesOf(start, 1.0, 1.2, 0.9, 1.1)

	summary, err := Summarize(series)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, summary.TotalReturnPct, 1e-9)
	// Worst decline: 1.2 → 0.9 = -25%.
	assert.InDelta(t, -25.0, summary.MaxDrawdownPct, 1e-9)
	assert.Positive(t, summary.CAGRPct)
}

func TestSummarize_CAGRDoublingOverOneYear(t *testing.T) {
	// Doubling over exactly 365.25 days is a CAGR of 100%.
	start := day(2019, time.January, 1)
	series := []contracts.SeriesPoint{
		{Date: start, Value: 1.0, Valid: true},
		{Date: start.Add(time.Duration(365.25 * 24 * float64(time.Hour))), Value: 2.0, Valid: true},
	}

	summary, err := Summarize(series)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, summary.CAGRPct, 1e-6)
	assert.InDelta(t, 100.0, summary.TotalReturnPct, 1e-9)
}

func TestSummarize_DrawdownZeroWhenNonDecreasing(t *testing.T) {
	series := seriesOf(day(2019, time.January, 31), 1.0, 1.0, 1.1, 1.3, 1.3, 1.5)

	summary, err := Summarize(series)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.MaxDrawdownPct)
}

func TestSummarize_DrawdownNeverPositive(t *testing.T) {
	cases := [][]float64{
		{1.0, 2.0, 1.5, 3.0},
		{1.0, 0.5, 0.25},
		{1.0, 1.0, 1.0},
		{2.0, 1.0, 2.0, 1.0},
	}

	for _, values := range cases {
		summary, err := Summarize(seriesOf(day(2019, time.January, 31), values...))
		require.NoError(t, err)
		assert.LessOrEqual(t, summary.MaxDrawdownPct, 0.0, "values %v", values)
	}
}

func TestSummarize_ReturnAndCAGRAgreeInSign(t *testing.T) {
	cases := []struct {
		values []float64
		sign   int
	}{
		{[]float64{1.0, 1.4}, 1},
		{[]float64{1.0, 0.6}, -1},
		{[]float64{1.0, 1.2, 1.0}, 0},
	}

	for _, tc := range cases {
		summary, err := Summarize(seriesOf(day(2019, time.January, 31), tc.values...))
		require.NoError(t, err)

		switch tc.sign {
		case 1:
			assert.Positive(t, summary.TotalReturnPct)
			assert.Positive(t, summary.CAGRPct)
		case -1:
			assert.Negative(t, summary.TotalReturnPct)
			assert.Negative(t, summary.CAGRPct)
		default:
			assert.InDelta(t, 0.0, summary.TotalReturnPct, 1e-9)
			assert.InDelta(t, 0.0, summary.CAGRPct, 1e-9)
		}
	}
}

func TestSummarize_EmptySeries(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, contracts.ErrEmptySeries)

	_, err = Summarize(seriesOf(day(2019, time.January, 31), 1.0))
	assert.ErrorIs(t, err, contracts.ErrEmptySeries)
}

func TestSummarize_IgnoresInvalidPoints(t *testing.T) {
	start := day(2019, time.January, 31)
	series := []contracts.SeriesPoint{
		{Date: start, Value: 1.0, Valid: true},
		{Date: start.AddDate(0, 0, 1)}, // gap: value unknown
		{Date: start.AddDate(0, 0, 2), Value: 1.5, Valid: true},
	}

	summary, err := Summarize(series)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, summary.TotalReturnPct, 1e-9)
	assert.Equal(t, 0.0, summary.MaxDrawdownPct)
}

func TestSummarize_DegenerateRange(t *testing.T) {
	d := day(2019, time.January, 31)
	series := []contracts.SeriesPoint{
		{Date: d, Value: 1.0, Valid: true},
		{Date: d, Value: 1.1, Valid: true},
	}

	_, err := Summarize(series)
	assert.ErrorIs(t, err, contracts.ErrDegenerateRange)
}
