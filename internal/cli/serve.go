package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hytyads/worklog-tools-form-luc/internal/scheduler"
	"github.com/hytyads/worklog-tools-form-luc/internal/tasks"
)

// stopTimeout 等待运行中的任务结束的最长时间
const stopTimeout = 30 * time.Second

// newServeCmd 常驻服务，定时生成每日/每周总结
func newServeCmd(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动定时总结服务",
		Long:  `按配置中的 cron 表达式定时生成每日（前一天）和每周（上周一至周日）总结，并导出 markdown 文件。`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status {
				return a.printTaskStatus(cmd)
			}

			if err := CheckAndAcquireLock(a.cfg.RunDir, a.logger); err != nil {
				return err
			}
			defer ReleaseLock(a.cfg.RunDir, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched, err := a.newScheduler()
			if err != nil {
				return err
			}

			sched.Start()
			a.logger.Infow("Worklog service is now running", "data_dir", a.cfg.DataDir, "export_dir", a.cfg.ExportDir)
			fmt.Fprintln(cmd.OutOrStdout(), "Worklog service is now running. Press Ctrl+C to stop.")

			<-ctx.Done()
			a.logger.Info("Shutting down...")

			select {
			case <-sched.Stop().Done():
			case <-time.After(stopTimeout):
				a.logger.Warn("Timed out waiting for running tasks")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "只显示定时任务的运行状态")
	return cmd
}

// printTaskStatus 输出 tasks.json 中记录的任务运行状态
func (a *app) printTaskStatus(cmd *cobra.Command) error {
	registry := scheduler.NewRegistry(a.cfg.RunDir)
	if err := registry.Load(); err != nil {
		return fmt.Errorf("failed to load task registry: %w", err)
	}

	configs := registry.GetAllTasks()
	out := cmd.OutOrStdout()
	if len(configs) == 0 {
		fmt.Fprintln(out, "暂无定时任务记录（服务尚未启动过）")
		return nil
	}

	rows := make([][]string, 0, len(configs))
	for _, c := range configs {
		rows = append(rows, []string{
			c.ID, c.Spec, formatTime(c.LastRun), formatTime(c.LastSuccess), formatTime(c.NextRun), c.LastError,
		})
	}
	printTable(out, []string{"Task", "Schedule", "Last Run", "Last Success", "Next Run", "Last Error"}, rows)
	return nil
}

// newScheduler 注册已启用的定时任务
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.NewScheduler(a.cfg.RunDir, a.logger)
	if err := sched.Load(); err != nil {
		return nil, fmt.Errorf("failed to load task registry: %w", err)
	}

	gen := a.generator()
	jobs := []struct {
		spec   string
		period tasks.Period
	}{
		{a.cfg.DailySummaryCron, tasks.PeriodDaily},
		{a.cfg.WeeklySummaryCron, tasks.PeriodWeekly},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		task := tasks.NewSummaryTask(job.period, a.store, gen, a.cfg.ExportDir, a.logger)
		if err := sched.RegisterTask(job.spec, task); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
