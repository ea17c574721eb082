package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/scheduler"
	"github.com/dmoraes/brewlake/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Start the scheduler daemon or manage its jobs.

Registered jobs:
- pipeline_run:      daily at 6 AM (full pipeline)
- retention_cleanup: daily at 3 AM (purge old bronze/gold data)

Example:
  go run ./cmd/brewlake scheduler start
  go run ./cmd/brewlake scheduler list
  go run ./cmd/brewlake scheduler run pipeline_run`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the scheduler with its jobs
func initScheduler() (*scheduler.Scheduler, *deps, error) {
	d, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(d.log)

	pipelineJob := jobs.NewPipelineRunJob(d.orchestrator, d.log)
	if err := sched.AddJob(pipelineJob); err != nil {
		d.close()
		return nil, nil, fmt.Errorf("add pipeline job: %w", err)
	}

	cleanupJob := jobs.NewRetentionCleanupJob(
		d.bronzeRepo, d.goldRepo, d.cfg.Pipeline.RetentionDays, d.log)
	if err := sched.AddJob(cleanupJob); err != nil {
		d.close()
		return nil, nil, fmt.Errorf("add cleanup job: %w", err)
	}

	return sched, d, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake scheduler ===")

	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	available := []scheduler.Job{
		jobs.NewPipelineRunJob(d.orchestrator, d.log),
		jobs.NewRetentionCleanupJob(d.bronzeRepo, d.goldRepo, d.cfg.Pipeline.RetentionDays, d.log),
	}

	jobName := args[0]
	for _, job := range available {
		if job.Name() != jobName {
			continue
		}
		fmt.Printf("Running job %s...\n", jobName)
		if err := job.Run(cmd.Context()); err != nil {
			return fmt.Errorf("job %s failed: %w", jobName, err)
		}
		fmt.Printf("✅ Job %s completed\n", jobName)
		return nil
	}

	return fmt.Errorf("job %s not found", jobName)
}
