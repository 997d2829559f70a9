package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harshul/nsequant/internal/contracts"
)

// RunRepository implements contracts.RunRepository.
// ⭐ SSOT: backtest run persistence lives here only
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a run repository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveRun persists a completed backtest run and returns its id.
func (r *RunRepository) SaveRun(ctx context.Context, run *contracts.BacktestRun) (int64, error) {
	seriesJSON, err := json.Marshal(run.Series)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal series: %w", err)
	}
	periodsJSON, err := json.Marshal(run.Periods)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal periods: %w", err)
	}
	skippedJSON, err := json.Marshal(run.Skipped)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal skipped periods: %w", err)
	}

	query := `
		INSERT INTO backtest.runs (
			from_year, to_year, metric, max_universe_size, portfolio_size, config_hash,
			total_return_pct, cagr_pct, max_drawdown_pct,
			series, periods, skipped
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err = r.pool.QueryRow(ctx, query,
		run.FromYear, run.ToYear, string(run.Metric), run.MaxUniverseSize, run.PortfolioSize, run.ConfigHash,
		run.Summary.TotalReturnPct, run.Summary.CAGRPct, run.Summary.MaxDrawdownPct,
		seriesJSON, periodsJSON, skippedJSON,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return run.ID, nil
}

// GetRun retrieves a run by id.
func (r *RunRepository) GetRun(ctx context.Context, id int64) (*contracts.BacktestRun, error) {
	query := `
		SELECT id, from_year, to_year, metric, max_universe_size, portfolio_size, config_hash,
			total_return_pct, cagr_pct, max_drawdown_pct,
			series, periods, skipped, created_at
		FROM backtest.runs
		WHERE id = $1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*contracts.BacktestRun, error) {
	query := `
		SELECT id, from_year, to_year, metric, max_universe_size, portfolio_size, config_hash,
			total_return_pct, cagr_pct, max_drawdown_pct,
			series, periods, skipped, created_at
		FROM backtest.runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*contracts.BacktestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*contracts.BacktestRun, error) {
	var run contracts.BacktestRun
	var metric string
	var seriesJSON, periodsJSON, skippedJSON []byte

	err := row.Scan(
		&run.ID, &run.FromYear, &run.ToYear, &metric, &run.MaxUniverseSize, &run.PortfolioSize, &run.ConfigHash,
		&run.Summary.TotalReturnPct, &run.Summary.CAGRPct, &run.Summary.MaxDrawdownPct,
		&seriesJSON, &periodsJSON, &skippedJSON, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Metric = contracts.RankMetric(metric)

	if err := json.Unmarshal(seriesJSON, &run.Series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series: %w", err)
	}
	if err := json.Unmarshal(periodsJSON, &run.Periods); err != nil {
		return nil, fmt.Errorf("failed to unmarshal periods: %w", err)
	}
	if err := json.Unmarshal(skippedJSON, &run.Skipped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skipped periods: %w", err)
	}

	return &run, nil
}
