package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
	"github.com/harshul/nsequant/internal/strategyconfig"
	"github.com/harshul/nsequant/pkg/logger"
)

// RebalanceJob selects the next month's portfolio at the latest month-end.
// It runs nightly after the data warehouse refresh; the selection only
// changes when a new month-end appears.
type RebalanceJob struct {
	repo     contracts.MarketDataRepository
	strategy *strategyconfig.Config
	logger   *logger.Logger

	lastSelected time.Time
}

// NewRebalanceJob creates a rebalance selection job.
func NewRebalanceJob(repo contracts.MarketDataRepository, strategy *strategyconfig.Config, log *logger.Logger) *RebalanceJob {
	return &RebalanceJob{
		repo:     repo,
		strategy: strategy,
		logger:   log,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance_selection"
}

// Schedule runs nightly at 7 PM, after the daily metrics load.
func (j *RebalanceJob) Schedule() string {
	return "0 0 19 * * *"
}

// Run resolves the latest month-end and selects the portfolio for it.
func (j *RebalanceJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	from := now.AddDate(0, -2, 0)

	dates, err := j.repo.GetMonthEndDates(ctx, from, now)
	if err != nil {
		return fmt.Errorf("failed to resolve month ends: %w", err)
	}
	if len(dates) == 0 {
		return fmt.Errorf("no month-end dates in %s..%s",
			from.Format("2006-01-02"), now.Format("2006-01-02"))
	}

	latest := dates[len(dates)-1]
	if latest.Equal(j.lastSelected) {
		j.logger.WithField("month_end", latest.Format("2006-01-02")).
			Debug("No new month-end, selection unchanged")
		return nil
	}

	universe, err := engine.SelectUniverse(ctx, j.repo, contracts.UniverseQuery{
		Date:            latest,
		MaxUniverseSize: j.strategy.Universe.MaxSize,
		Metric:          j.strategy.Ranking.Metric,
		SmoothingDays:   j.strategy.Ranking.SmoothingDays,
	}, j.strategy.Portfolio.Size)
	if err != nil {
		return fmt.Errorf("failed to select universe: %w", err)
	}
	if len(universe.Members) == 0 {
		return fmt.Errorf("empty universe at %s", latest.Format("2006-01-02"))
	}

	j.logger.WithFields(map[string]interface{}{
		"month_end": latest.Format("2006-01-02"),
		"metric":    string(j.strategy.Ranking.Metric),
		"symbols":   universe.Symbols(),
	}).Info("Monthly portfolio selected")

	j.lastSelected = latest
	return nil
}
