package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nsequant",
	Short: "nsequant - monthly rebalanced NSE equity backtester",
	Long: `nsequant Unified CLI

Monthly rebalanced equity strategy over the NSE daily metrics warehouse:
top-500 by market cap, top-N by trailing Sharpe, equal-unit positions,
chained month over month.

Usage:
  go run ./cmd/nsequant [command]

Examples:
  go run ./cmd/nsequant backtest run --from-year 2011 --to-year 2023
  go run ./cmd/nsequant select
  go run ./cmd/nsequant calendar --from-year 2019 --to-year 2019
  go run ./cmd/nsequant api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default from STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
