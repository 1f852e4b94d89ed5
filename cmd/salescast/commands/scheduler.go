package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
	"github.com/wonny/salescast/internal/scheduler"
	"github.com/wonny/salescast/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "정기 작업 스케줄러",
	Long: `재학습, 모델 상태 점검, 데이터 품질 리포트를 cron 일정으로 실행합니다.

Jobs:
  retrain         SCHEDULER_RETRAIN_CRON (기본: 매월 1일 03:00)
  model_check     매시 정각
  quality_report  매일 02:00 (DB 설정 시)

Example:
  go run ./cmd/salescast scheduler start
  go run ./cmd/salescast scheduler run retrain
  go run ./cmd/salescast scheduler list`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 실행 (Ctrl+C로 종료)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			s, err := a.scheduler()
			if err != nil {
				return err
			}
			s.Start()
			for _, name := range s.GetAllJobs() {
				next, _ := s.NextRun(name)
				a.log.Info().Str("job", name).Time("next", next).Msg("job scheduled")
			}

			<-ctx.Done()
			s.Stop()
			return nil
		})
	},
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run <job>",
	Short: "작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			s, err := a.scheduler()
			if err != nil {
				return err
			}
			res, err := s.RunJob(ctx, args[0])
			if err != nil {
				return err
			}
			PrintKeyValue("Job", res.JobName, 10)
			PrintKeyValue("Attempts", fmt.Sprint(res.Attempts), 10)
			PrintKeyValue("Duration", res.Duration.String(), 10)
			if !res.Success {
				return fmt.Errorf("job %s failed: %s", res.JobName, res.Error)
			}
			PrintSuccess("job completed")
			return nil
		})
	},
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "등록된 작업 목록",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			s, err := a.scheduler()
			if err != nil {
				return err
			}
			stats := s.GetJobStats()

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Job", "Schedule", "Next Run"})
			table.SetBorder(false)
			for _, name := range s.GetAllJobs() {
				next := "-"
				if t, err := s.NextRun(name); err == nil {
					next = t.Format("2006-01-02 15:04:05")
				}
				table.Append([]string{name, stats[name].Schedule, next})
			}
			table.Render()
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd, schedulerRunCmd, schedulerListCmd)
}

// scheduler registers every job the current configuration supports.
func (a *app) scheduler() (*scheduler.Scheduler, error) {
	m, err := a.manager()
	if err != nil {
		return nil, err
	}

	s := scheduler.New(a.log, scheduler.WithRetries(a.cfg.Scheduler.MaxRetries, a.cfg.Scheduler.RetryDelay))
	toAdd := []scheduler.Job{
		jobs.NewRetrainJob(m, a.cache(), a.cfg.Scheduler.RetrainCron, a.log),
		jobs.NewModelCheckJob(m, a.store, a.log),
	}
	if a.db != nil {
		raw := s0_data.NewRawCSVSource(a.cfg.Paths.RawCSV, s0_data.NewCleaner(a.log))
		gate := quality.NewQualityGate(quality.DefaultConfig(), a.log)
		toAdd = append(toAdd, jobs.NewQualityReportJob(raw, gate, quality.NewRepository(a.db.Pool), a.log))
	}

	for _, job := range toAdd {
		if err := s.AddJob(job); err != nil {
			return nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}
	return s, nil
}
