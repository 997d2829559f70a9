package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
	"github.com/harshul/nsequant/internal/report"
	"github.com/harshul/nsequant/internal/strategyconfig"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Monthly rebalance backtester",
	Long: `Simulates the monthly rebalanced strategy over historical data.

Each month-end the top-N symbols by trailing Sharpe are selected from the
500 largest names, held one month at one unit each, and the portfolio
value is chained across months.

Example:
  go run ./cmd/nsequant backtest run --from-year 2011 --to-year 2023
  go run ./cmd/nsequant backtest run --from-year 2019 --to-year 2019 --metric sharpe_90`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a backtest",
		Long: `Runs the backtest over the given year range.

Flags:
  --from-year   first year (required)
  --to-year     last year (default: from-year)
  --universe    size cut before ranking (default: strategy file)
  --portfolio   symbols held per month (default: strategy file)
  --metric      rank metric: sharpe_30|sharpe_90|sharpe_180|sharpe_365
  --smoothing   trailing metric average window in days (0 = point value)
  --save        persist the run to the database
  --csv         also write series.csv and periods.csv

Example:
  go run ./cmd/nsequant backtest run --from-year 2011 --to-year 2023
  go run ./cmd/nsequant backtest run --from-year 2019 --portfolio 10 --smoothing 5`,
		RunE: runBacktest,
	}

	// Flags
	backtestFromYear  int
	backtestToYear    int
	backtestUniverse  int
	backtestPortfolio int
	backtestMetric    string
	backtestSmoothing int
	backtestSave      bool
	backtestCSV       bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().IntVar(&backtestFromYear, "from-year", 0, "first year (required)")
	backtestRunCmd.Flags().IntVar(&backtestToYear, "to-year", 0, "last year (default: from-year)")
	backtestRunCmd.Flags().IntVar(&backtestUniverse, "universe", 0, "universe size cut")
	backtestRunCmd.Flags().IntVar(&backtestPortfolio, "portfolio", 0, "portfolio size")
	backtestRunCmd.Flags().StringVar(&backtestMetric, "metric", "", "rank metric")
	backtestRunCmd.Flags().IntVar(&backtestSmoothing, "smoothing", -1, "metric smoothing window (days)")
	backtestRunCmd.Flags().BoolVar(&backtestSave, "save", false, "persist the run")
	backtestRunCmd.Flags().BoolVar(&backtestCSV, "csv", false, "write CSV exports")

	backtestRunCmd.MarkFlagRequired("from-year")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== nsequant Backtest Engine ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if backtestToYear == 0 {
		backtestToYear = backtestFromYear
	}

	// Strategy file values, overridable per flag.
	cfg := engine.Config{
		FromYear:        backtestFromYear,
		ToYear:          backtestToYear,
		MaxUniverseSize: d.strategy.Universe.MaxSize,
		PortfolioSize:   d.strategy.Portfolio.Size,
		Metric:          d.strategy.Ranking.Metric,
		SmoothingDays:   d.strategy.Ranking.SmoothingDays,
		InitialValue:    d.strategy.Portfolio.InitialValue,
		KeepAnchorRow:   d.strategy.Calendar.KeepAnchorRow,
	}
	if backtestUniverse > 0 {
		cfg.MaxUniverseSize = backtestUniverse
	}
	if backtestPortfolio > 0 {
		cfg.PortfolioSize = backtestPortfolio
	}
	if backtestMetric != "" {
		cfg.Metric = contracts.RankMetric(backtestMetric)
	}
	if backtestSmoothing >= 0 {
		cfg.SmoothingDays = backtestSmoothing
	}

	fmt.Printf("\nPeriod:    %d ~ %d\n", cfg.FromYear, cfg.ToYear)
	fmt.Printf("Universe:  top %d by market cap\n", cfg.MaxUniverseSize)
	fmt.Printf("Portfolio: top %d by %s", cfg.PortfolioSize, cfg.Metric)
	if cfg.SmoothingDays > 1 {
		fmt.Printf(" (%d-day average)", cfg.SmoothingDays)
	}
	fmt.Println()
	fmt.Println("\nRunning backtest...")

	eng := engine.New(d.marketRepo, d.log)
	result, err := eng.Run(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)

	writer := report.NewWriter(d.cfg.ResultsDir, d.log)
	if err := writer.WriteYearly(result); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Printf("Yearly results written to %s/\n", d.cfg.ResultsDir)

	if backtestCSV {
		if err := writeCSVExports(d.cfg.ResultsDir, result); err != nil {
			return fmt.Errorf("write CSV exports: %w", err)
		}
		fmt.Printf("CSV exports written to %s/\n", d.cfg.ResultsDir)
	}

	if backtestSave {
		run := result.ToRun()
		run.ConfigHash, err = strategyconfig.Hash(d.strategy.EffectiveFor(cfg))
		if err != nil {
			return fmt.Errorf("hash run config: %w", err)
		}
		id, err := d.runRepo.SaveRun(cmd.Context(), run)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Printf("Run saved with id %d\n", id)
	}

	return nil
}

func writeCSVExports(dir string, result *engine.Result) error {
	seriesFile, err := os.Create(filepath.Join(dir, "series.csv"))
	if err != nil {
		return err
	}
	defer seriesFile.Close()
	if err := report.WriteSeriesCSV(seriesFile, result.Series); err != nil {
		return err
	}

	periodsFile, err := os.Create(filepath.Join(dir, "periods.csv"))
	if err != nil {
		return err
	}
	defer periodsFile.Close()
	return report.WritePeriodsCSV(periodsFile, result.Periods)
}

func printBacktestResult(result *engine.Result) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Println("Summary")
	fmt.Printf("Periods:   %d processed, %d skipped\n", len(result.Periods), len(result.Skipped))
	fmt.Printf("Duration:  %.2f seconds\n", result.Duration.Seconds())
	fmt.Println()

	fmt.Println("Performance")
	fmt.Printf("Total Return:     %+.2f%%\n", result.Summary.TotalReturnPct)
	fmt.Printf("CAGR:             %+.2f%%\n", result.Summary.CAGRPct)
	fmt.Printf("Maximum Drawdown: %.2f%%\n", result.Summary.MaxDrawdownPct)
	fmt.Println()

	if len(result.Skipped) > 0 {
		fmt.Println("Skipped Periods")
		for _, s := range result.Skipped {
			fmt.Printf("  %s ~ %s: %s\n",
				s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Reason)
		}
		fmt.Println()
	}

	// Last few months of the chained series.
	fmt.Println("Portfolio Value (last 6 points)")
	startIdx := len(result.Series) - 6
	if startIdx < 0 {
		startIdx = 0
	}
	for _, point := range result.Series[startIdx:] {
		if !point.Valid {
			fmt.Printf("  %s: (gap)\n", point.Date.Format("2006-01-02"))
			continue
		}
		fmt.Printf("  %s: %.4f\n", point.Date.Format("2006-01-02"), point.Value)
	}
	fmt.Println()
}
