package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harshul/nsequant/internal/engine"
)

// calendarCmd represents the calendar command
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the rebalance schedule",
	Long: `Resolves the month-end trading dates for a year range.

The schedule includes the December month-end before the range and the
January month-end after it, so the first and last in-range months have a
full holding period on both sides.

Example:
  go run ./cmd/nsequant calendar --from-year 2019 --to-year 2020`,
	RunE: runCalendar,
}

var (
	calendarFromYear int
	calendarToYear   int
)

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().IntVar(&calendarFromYear, "from-year", 0, "first year (required)")
	calendarCmd.Flags().IntVar(&calendarToYear, "to-year", 0, "last year (default: from-year)")
	calendarCmd.MarkFlagRequired("from-year")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if calendarToYear == 0 {
		calendarToYear = calendarFromYear
	}

	schedule, err := engine.ResolveMonthEnds(cmd.Context(), d.marketRepo, calendarFromYear, calendarToYear)
	if err != nil {
		return fmt.Errorf("resolve month ends: %w", err)
	}

	fmt.Printf("Rebalance schedule %d-%d (%d dates, %d holding periods)\n\n",
		calendarFromYear, calendarToYear, len(schedule), len(schedule)-1)
	for _, date := range schedule {
		fmt.Printf("  %s\n", date.Format("2006-01-02 Mon"))
	}

	return nil
}
