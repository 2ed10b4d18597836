package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alphagen/alphagen/internal/scheduler"
	"github.com/alphagen/alphagen/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the job scheduler",
	Long: `Start the cron scheduler.

Jobs:
  data_collection  - weekdays after market close, collects prices,
                     fundamentals, and news
  daily_analysis   - weekdays after collection, runs the full pipeline
  maintenance      - weekly, prunes old articles and run reports

Example:
  go run ./cmd/alphagen scheduler
  go run ./cmd/alphagen scheduler --run-now daily_analysis`,
	RunE: runScheduler,
}

var runNow string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&runNow, "run-now", "", "run one job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	orchestrator, err := a.newOrchestrator(ctx)
	if err != nil {
		return err
	}

	charts, fundamentals, news := a.newCollectors()

	sched := scheduler.New(a.log)

	jobList := []scheduler.Job{
		jobs.NewCollectionJob(charts, fundamentals, news, a.cfg.Collector, a.log),
		jobs.NewAnalysisJob(orchestrator, a.log),
		jobs.NewMaintenanceJob(a.db.Pool, a.log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name(), err)
		}
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("Scheduler running with jobs: %v\n", sched.JobNames())

	if runNow != "" {
		if err := sched.RunJob(runNow); err != nil {
			return fmt.Errorf("run job %s: %w", runNow, err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
