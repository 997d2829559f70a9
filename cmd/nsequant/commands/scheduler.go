package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harshul/nsequant/internal/scheduler"
	"github.com/harshul/nsequant/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler management",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- rebalance_selection: nightly at 7 PM, selects the portfolio at the
  latest month-end once the daily metrics load has landed

Example:
  go run ./cmd/nsequant scheduler start
  go run ./cmd/nsequant scheduler run rebalance_selection`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, *deps, error) {
	d, err := initDeps()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(d.log)
	if err := sched.AddJob(jobs.NewRebalanceJob(d.marketRepo, d.strategy, d.log)); err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("register rebalance job: %w", err)
	}

	return sched, d, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== nsequant Scheduler ===")

	sched, d, err := initScheduler()
	if err != nil {
		return err
	}
	defer d.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()

	// Shutdown summary over the in-memory history.
	fmt.Println("\nJob history:")
	for _, jobName := range sched.GetAllJobs() {
		history, err := sched.GetJobHistory(jobName)
		if err != nil || len(history.Results) == 0 {
			fmt.Printf("  - %s: no runs\n", jobName)
			continue
		}
		fmt.Printf("  - %s: %d runs, %.0f%% success\n",
			jobName, len(history.Results), history.GetSuccessRate()*100)
	}
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return err
	}
	defer d.Close()

	jobName := args[0]
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	fmt.Printf("✅ Job %s triggered\n", jobName)

	// The job runs asynchronously; give it a moment and show the outcome.
	history, err := waitForResult(sched, jobName)
	if err != nil {
		return err
	}
	last := history.GetLatestResults(1)
	if len(last) == 1 && !last[0].Success {
		return fmt.Errorf("job failed: %s", last[0].Error)
	}
	return nil
}

func waitForResult(sched *scheduler.Scheduler, jobName string) (*scheduler.JobHistory, error) {
	deadline := time.Now().Add(5 * time.Minute)
	for time.Now().Before(deadline) {
		history, err := sched.GetJobHistory(jobName)
		if err != nil {
			return nil, err
		}
		if len(history.Results) > 0 {
			return history, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("timed out waiting for job %s", jobName)
}
