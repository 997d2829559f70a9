package contracts

import (
	"testing"
	"time"
)

func TestRankMetric_Valid(t *testing.T) {
	tests := []struct {
		metric RankMetric
		want   bool
	}{
		{MetricSharpe30, true},
		{MetricSharpe90, true},
		{MetricSharpe180, true},
		{MetricSharpe365, true},
		{"sharpe_7", false},
		{"sortino_365", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			if got := tt.metric.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankedUniverse_Symbols(t *testing.T) {
	u := RankedUniverse{
		Members: []Candidate{
			{Symbol: "TCS", Metric: 2.1},
			{Symbol: "INFY", Metric: 1.8},
		},
	}

	syms := u.Symbols()
	if len(syms) != 2 || syms[0] != "TCS" || syms[1] != "INFY" {
		t.Errorf("Symbols() = %v, want [TCS INFY]", syms)
	}

	empty := RankedUniverse{}
	if got := empty.Symbols(); len(got) != 0 {
		t.Errorf("Symbols() on empty universe = %v, want empty", got)
	}
}

func TestSegmentSeries_FirstLastValid(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2019, time.February, d, 0, 0, 0, 0, time.UTC)
	}

	s := SegmentSeries{
		Points: []SeriesPoint{
			{Date: day(1)},
			{Date: day(2), Value: 2.0, Valid: true},
			{Date: day(3)},
			{Date: day(4), Value: 2.1, Valid: true},
			{Date: day(5)},
		},
	}

	first, ok := s.FirstValid()
	if !ok || !first.Date.Equal(day(2)) {
		t.Errorf("FirstValid() = %v, %v; want Feb 2", first, ok)
	}

	last, ok := s.LastValid()
	if !ok || !last.Date.Equal(day(4)) {
		t.Errorf("LastValid() = %v, %v; want Feb 4", last, ok)
	}

	gaps := SegmentSeries{Points: []SeriesPoint{{Date: day(1)}, {Date: day(2)}}}
	if _, ok := gaps.FirstValid(); ok {
		t.Error("FirstValid() on all-gap segment should report no point")
	}
	if _, ok := gaps.LastValid(); ok {
		t.Error("LastValid() on all-gap segment should report no point")
	}
}
