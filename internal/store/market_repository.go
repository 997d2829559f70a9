package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/pkg/redis"
)

// metricColumns whitelists the rank metric columns. The metric reaches the
// SQL text via string formatting, so anything outside this map is rejected
// before a query is built.
var metricColumns = map[contracts.RankMetric]string{
	contracts.MetricSharpe30:  "sharpe_30",
	contracts.MetricSharpe90:  "sharpe_90",
	contracts.MetricSharpe180: "sharpe_180",
	contracts.MetricSharpe365: "sharpe_365",
}

// MarketRepository implements contracts.MarketDataRepository over the
// daily metrics table.
// ⭐ SSOT: market data access lives here only
type MarketRepository struct {
	pool    *pgxpool.Pool
	limiter *rate.Limiter
	cache   *redis.Cache
}

// NewMarketRepository creates a market data repository. queryRate caps
// queries per second against the shared warehouse; zero or negative
// disables pacing. cache may be nil.
func NewMarketRepository(pool *pgxpool.Pool, queryRate float64, cache *redis.Cache) *MarketRepository {
	limit := rate.Inf
	if queryRate > 0 {
		limit = rate.Limit(queryRate)
	}
	return &MarketRepository{
		pool:    pool,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
	}
}

// GetMonthEndDates returns the last trading date of each calendar month
// with records in [from, to], sorted ascending.
func (r *MarketRepository) GetMonthEndDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	cacheKey := redis.MonthEndsKey(from.Format("2006-01-02"), to.Format("2006-01-02"))
	if r.cache != nil {
		var cached []time.Time
		hit, err := r.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
		if err != nil {
			// Corrupt entry, drop it and fall through to the query.
			_ = r.cache.Delete(ctx, cacheKey)
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT MAX(trade_date)
		FROM market.daily_metrics
		WHERE trade_date BETWEEN $1 AND $2
		GROUP BY EXTRACT(YEAR FROM trade_date), EXTRACT(MONTH FROM trade_date)
		ORDER BY MAX(trade_date) ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query month ends: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, cacheKey, dates, monthEndsTTL(to, time.Now()))
	}
	return dates, nil
}

// monthEndsTTL picks the cache lifetime for a month-end window. A window
// ending before the current month is closed history and never changes;
// one reaching into the current month gains a new latest date as trading
// days land.
func monthEndsTTL(to, now time.Time) time.Duration {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if to.Before(monthStart) {
		return redis.TTLWeek
	}
	return redis.TTLDaily
}

// candidatesQuery builds the ranked-candidates SQL for an already
// whitelisted metric column. Both shapes require a non-null metric on the
// rebalance date itself: a symbol that stopped reporting must not ride in
// on its trailing average.
func candidatesQuery(column string, smoothed bool) string {
	if smoothed {
		return fmt.Sprintf(`
			WITH smoothed AS (
				SELECT symbol, AVG(%[1]s) AS metric
				FROM market.daily_metrics
				WHERE trade_date BETWEEN $1::date - ($3 - 1) * INTERVAL '1 day' AND $1
					AND %[1]s IS NOT NULL
				GROUP BY symbol
			)
			SELECT d.symbol, d.market_cap_crs, s.metric
			FROM market.daily_metrics d
			JOIN smoothed s ON s.symbol = d.symbol
			WHERE d.trade_date = $1 AND d.%[1]s IS NOT NULL
			ORDER BY d.market_cap_crs DESC, d.symbol ASC
			LIMIT $2
		`, column)
	}
	return fmt.Sprintf(`
		SELECT symbol, market_cap_crs, %[1]s
		FROM market.daily_metrics
		WHERE trade_date = $1 AND %[1]s IS NOT NULL
		ORDER BY market_cap_crs DESC, symbol ASC
		LIMIT $2
	`, column)
}

// GetRankedCandidates returns the top MaxUniverseSize symbols by market
// cap on the query date. Rows with a null rank metric are excluded before
// the size cut. SmoothingDays > 1 replaces the point metric with its
// trailing average over the window ending at the query date.
func (r *MarketRepository) GetRankedCandidates(ctx context.Context, q contracts.UniverseQuery) ([]contracts.Candidate, error) {
	column, ok := metricColumns[q.Metric]
	if !ok {
		return nil, fmt.Errorf("unknown rank metric %q", q.Metric)
	}

	cacheKey := redis.CandidatesKey(q.Date.Format("2006-01-02"), string(q.Metric), q.MaxUniverseSize)
	useCache := r.cache != nil && q.SmoothingDays <= 1
	if useCache {
		var cached []contracts.Candidate
		hit, err := r.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
		if err != nil {
			_ = r.cache.Delete(ctx, cacheKey)
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := candidatesQuery(column, q.SmoothingDays > 1)
	args := []interface{}{q.Date, q.MaxUniverseSize}
	if q.SmoothingDays > 1 {
		args = append(args, q.SmoothingDays)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []contracts.Candidate
	for rows.Next() {
		var c contracts.Candidate
		if err := rows.Scan(&c.Symbol, &c.MarketCap, &c.Metric); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if useCache {
		_ = r.cache.Set(ctx, cacheKey, candidates, redis.TTLDaily)
	}
	return candidates, nil
}

// GetClosingPrices returns daily closes for symbols over [from, to],
// ordered by date then symbol. A null close comes back as Valid=false.
func (r *MarketRepository) GetClosingPrices(ctx context.Context, symbols []string, from, to time.Time) ([]contracts.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT symbol, trade_date, close_price
		FROM market.daily_metrics
		WHERE symbol = ANY($1) AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, symbols, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query closing prices: %w", err)
	}
	defer rows.Close()

	var quotes []contracts.Quote
	for rows.Next() {
		var q contracts.Quote
		var close *float64
		if err := rows.Scan(&q.Symbol, &q.Date, &close); err != nil {
			return nil, err
		}
		if close != nil {
			q.Close = *close
			q.Valid = true
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
