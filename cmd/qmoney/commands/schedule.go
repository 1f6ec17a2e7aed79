package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/qmoney/internal/scheduler"
	"github.com/wonny/qmoney/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "정기 수익률 재계산",
	Long: `RETURNS_TRADES_FILE 포트폴리오를 RETURNS_CRON 주기로 재계산합니다.
매 실행은 오늘(UTC)을 종료일로 사용하고 결과를 PostgreSQL/Redis에 저장합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/qmoney schedule start
  go run ./cmd/qmoney schedule run returns`,
}

var (
	scheduleStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runSchedule,
	}

	scheduleListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listScheduledJobs,
	}

	scheduleRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runScheduledJob,
	}

	scheduleStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showScheduleStatus,
	}
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleStatusCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== qmoney Scheduler ===")

	a, sched, err := initScheduler(cmd.Context(), true)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Fprintln(out, "\n✅ Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %s\n", jobName)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listScheduledJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context(), false)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %s\n", jobName)
	}

	return nil
}

func runScheduledJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, err := initScheduler(ctx, true)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Running job: %s\n", jobName)

	if err := sched.RunNow(ctx, jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ Job completed")
	return nil
}

func showScheduleStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context(), false)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	// next-run times are only known once entries are in the cron table
	sched.Start()
	defer sched.Stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Job Statistics:")
	fmt.Fprintln(out)

	stats := sched.GetJobStats()
	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Fprintf(out, "📊 %s\n", jobName)
		fmt.Fprintf(out, "   Schedule: %s\n", stat.Schedule)
		fmt.Fprintf(out, "   Total Runs: %d\n", stat.TotalRuns)
		if stat.TotalRuns > 0 {
			fmt.Fprintf(out, "   Success: %.1f%%\n", stat.SuccessRate*100)
		}
		if stat.LastRun != nil {
			fmt.Fprintf(out, "   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.NextRun != nil {
			fmt.Fprintf(out, "   Next Run: %s\n", stat.NextRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(out)
	}

	return nil
}

// initScheduler wires the app and registers the returns job
func initScheduler(ctx context.Context, persistence bool) (*app, *scheduler.Scheduler, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, appOptions{persistence: persistence})
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log)

	// list and status never run the job, so they skip the stores
	job := jobs.NewReturnsJob(
		a.engine,
		a.publisher,
		a.cfg.Schedule.TradesFile,
		a.cfg.Engine.Workers,
		a.cfg.Schedule.Cron,
		a.log,
	)
	if err := sched.AddJob(job); err != nil {
		a.Close()
		return nil, nil, err
	}

	return a, sched, nil
}
