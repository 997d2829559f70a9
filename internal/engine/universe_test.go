package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/nsequant/internal/contracts"
)

func universeQuery(date time.Time) contracts.UniverseQuery {
	return contracts.UniverseQuery{
		Date:            date,
		MaxUniverseSize: 500,
		Metric:          contracts.MetricSharpe365,
	}
}

func TestSelectUniverse_RanksByMetricAndTruncates(t *testing.T) {
	date := day(2019, time.January, 31)
	repo := &fakeRepo{
		candidates: map[string][]contracts.Candidate{
			// Arrives in market cap order.
			dateKey(date): {
				{Symbol: "RELIANCE", MarketCap: 1500, Metric: 1.2},
				{Symbol: "TCS", MarketCap: 1200, Metric: 2.1},
				{Symbol: "HDFCBANK", MarketCap: 900, Metric: 0.4},
				{Symbol: "INFY", MarketCap: 700, Metric: 1.8},
			},
		},
	}

	universe, err := SelectUniverse(context.Background(), repo, universeQuery(date), 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"TCS", "INFY", "RELIANCE"}, universe.Symbols())
	assert.Equal(t, date, universe.Date)
}

func TestSelectUniverse_StableTieBreak(t *testing.T) {
	// Equal metrics keep the size ordering from the source.
	date := day(2019, time.January, 31)
	repo := &fakeRepo{
		candidates: map[string][]contracts.Candidate{
			dateKey(date): {
				{Symbol: "BIGCAP", MarketCap: 2000, Metric: 1.0},
				{Symbol: "MIDCAP", MarketCap: 1000, Metric: 1.0},
				{Symbol: "SMALLCAP", MarketCap: 500, Metric: 1.0},
			},
		},
	}

	universe, err := SelectUniverse(context.Background(), repo, universeQuery(date), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIGCAP", "MIDCAP"}, universe.Symbols())
}

func TestSelectUniverse_Deterministic(t *testing.T) {
	date := day(2019, time.June, 28)
	repo := &fakeRepo{
		candidates: map[string][]contracts.Candidate{
			dateKey(date): {
				{Symbol: "A", MarketCap: 500, Metric: 0.9},
				{Symbol: "B", MarketCap: 400, Metric: 0.9},
				{Symbol: "C", MarketCap: 300, Metric: 1.4},
				{Symbol: "D", MarketCap: 200, Metric: 0.1},
			},
		},
	}

	first, err := SelectUniverse(context.Background(), repo, universeQuery(date), 3)
	require.NoError(t, err)
	second, err := SelectUniverse(context.Background(), repo, universeQuery(date), 3)
	require.NoError(t, err)

	assert.Equal(t, first.Members, second.Members)
}

func TestSelectUniverse_ShortList(t *testing.T) {
	// Fewer qualifying symbols than portfolio size is valid, not an error.
	date := day(2019, time.January, 31)
	repo := &fakeRepo{
		candidates: map[string][]contracts.Candidate{
			dateKey(date): {
				{Symbol: "ONLY", MarketCap: 100, Metric: 0.5},
			},
		},
	}

	universe, err := SelectUniverse(context.Background(), repo, universeQuery(date), 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"ONLY"}, universe.Symbols())
}

func TestSelectUniverse_Empty(t *testing.T) {
	universe, err := SelectUniverse(context.Background(), &fakeRepo{},
		universeQuery(day(2019, time.January, 31)), 15)
	require.NoError(t, err)
	assert.Empty(t, universe.Members)
}

func TestSelectUniverse_DropsDuplicates(t *testing.T) {
	date := day(2019, time.January, 31)
	repo := &fakeRepo{
		candidates: map[string][]contracts.Candidate{
			dateKey(date): {
				{Symbol: "A", MarketCap: 900, Metric: 1.0},
				{Symbol: "A", MarketCap: 900, Metric: 1.0},
				{Symbol: "B", MarketCap: 800, Metric: 0.5},
			},
		},
	}

	universe, err := SelectUniverse(context.Background(), repo, universeQuery(date), 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, universe.Symbols())
}
