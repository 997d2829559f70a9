package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the current monthly portfolio",
	Long: `Selects the portfolio at the most recent month-end.

Resolves the latest month-end in the warehouse, ranks the size-cut
universe by the strategy's metric and prints the top-N selection.

Example:
  go run ./cmd/nsequant select
  go run ./cmd/nsequant select --date 2023-12-29`,
	RunE: runSelect,
}

var selectDate string

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectDate, "date", "", "rebalance date (YYYY-MM-DD, default: latest month-end)")
}

func runSelect(cmd *cobra.Command, args []string) error {
	fmt.Println("=== nsequant Portfolio Selection ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()

	var date time.Time
	if selectDate != "" {
		date, err = time.Parse("2006-01-02", selectDate)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
	} else {
		now := time.Now().UTC()
		dates, err := d.marketRepo.GetMonthEndDates(ctx, now.AddDate(0, -2, 0), now)
		if err != nil {
			return fmt.Errorf("resolve month ends: %w", err)
		}
		if len(dates) == 0 {
			return fmt.Errorf("no month-end dates in the last two months")
		}
		date = dates[len(dates)-1]
	}

	universe, err := engine.SelectUniverse(ctx, d.marketRepo, contracts.UniverseQuery{
		Date:            date,
		MaxUniverseSize: d.strategy.Universe.MaxSize,
		Metric:          d.strategy.Ranking.Metric,
		SmoothingDays:   d.strategy.Ranking.SmoothingDays,
	}, d.strategy.Portfolio.Size)
	if err != nil {
		return fmt.Errorf("select universe: %w", err)
	}

	fmt.Printf("\nRebalance date: %s\n", date.Format("2006-01-02"))
	fmt.Printf("Metric:         %s\n\n", d.strategy.Ranking.Metric)

	if len(universe.Members) == 0 {
		fmt.Println("⚠️  No symbols selected (empty universe)")
		return nil
	}

	fmt.Printf("%-4s  %-16s  %12s  %10s\n", "Rank", "Symbol", "MarketCap", "Metric")
	fmt.Println(separator(48))
	for i, m := range universe.Members {
		fmt.Printf("%-4d  %-16s  %12.1f  %10.4f\n", i+1, m.Symbol, m.MarketCap, m.Metric)
	}

	return nil
}
