package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harshul/nsequant/internal/api"
	"github.com/harshul/nsequant/internal/api/handlers"
	"github.com/harshul/nsequant/internal/engine"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                         - Health check
  POST /api/backtests                  - Run a backtest
  GET  /api/backtests                  - List saved runs
  GET  /api/backtests/{id}             - Get a saved run
  GET  /api/backtests/{id}/series.csv  - Stream a run's series as CSV

Example:
  go run ./cmd/nsequant api
  go run ./cmd/nsequant api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== nsequant API Server ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	eng := engine.New(d.marketRepo, d.log)
	backtestHandler := handlers.NewBacktestHandler(eng, d.runRepo, d.strategy, d.log)
	router := api.NewRouter(backtestHandler, d.db, d.log)
	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
