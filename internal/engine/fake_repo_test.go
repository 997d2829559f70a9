package engine

import (
	"context"
	"time"

	"github.com/harshul/nsequant/internal/contracts"
)

// fakeRepo is an in-memory contracts.MarketDataRepository for engine tests.
type fakeRepo struct {
	monthEnds  []time.Time
	candidates map[string][]contracts.Candidate // keyed by date
	quotes     []contracts.Quote

	monthEndsErr  error
	candidatesErr error
	quotesErr     error
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fakeRepo) GetMonthEndDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	if f.monthEndsErr != nil {
		return nil, f.monthEndsErr
	}
	var out []time.Time
	for _, d := range f.monthEnds {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetRankedCandidates(ctx context.Context, q contracts.UniverseQuery) ([]contracts.Candidate, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	cands := f.candidates[dateKey(q.Date)]
	if len(cands) > q.MaxUniverseSize {
		cands = cands[:q.MaxUniverseSize]
	}
	return append([]contracts.Candidate(nil), cands...), nil
}

func (f *fakeRepo) GetClosingPrices(ctx context.Context, symbols []string, from, to time.Time) ([]contracts.Quote, error) {
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	var out []contracts.Quote
	for _, q := range f.quotes {
		if want[q.Symbol] && !q.Date.Before(from) && !q.Date.After(to) {
			out = append(out, q)
		}
	}
	return out, nil
}

// addQuote appends a valid close.
func (f *fakeRepo) addQuote(sym string, d time.Time, close float64) {
	f.quotes = append(f.quotes, contracts.Quote{Symbol: sym, Date: d, Close: close, Valid: true})
}

// addNullQuote appends a row whose close cell is null.
func (f *fakeRepo) addNullQuote(sym string, d time.Time) {
	f.quotes = append(f.quotes, contracts.Quote{Symbol: sym, Date: d})
}
