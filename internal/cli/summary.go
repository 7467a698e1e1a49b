package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hytyads/worklog-tools-form-luc/internal/export"
	"github.com/hytyads/worklog-tools-form-luc/internal/summary"
)

// errSummaryFailed 总结生成失败，具体信息已输出
var errSummaryFailed = errors.New("summary generation failed")

// newSummarizeCmd 生成日期范围内的总结
func newSummarizeCmd(a *app) *cobra.Command {
	var (
		exportFile bool
		lastDays   int
	)

	cmd := &cobra.Command{
		Use:   "summarize <start> <end> | --last N",
		Short: "生成日期范围内的 AI 总结",
		Long: `读取起止日期（含）内的全部记录，调用当前设置的 AI 提供商生成总结，成功后写入总结历史。
--last N 表示从 N 天前到今天：0 为今天，1 为最近两天，6 为最近一周。`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("last") {
				if lastDays < 0 {
					return fmt.Errorf("--last must not be negative: %d", lastDays)
				}
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var start, end string
			if cmd.Flags().Changed("last") {
				start, end = a.lastDays(lastDays)
			} else {
				start, end = args[0], args[1]
			}
			if err := validateRange(start, end); err != nil {
				return err
			}

			settings, err := a.store.GetUserSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			result := a.generator().Generate(cmd.Context(), settings, start, end)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Text)

			switch result.Status {
			case summary.StatusOK:
			case summary.StatusFailed:
				return errSummaryFailed
			default:
				return nil
			}

			if result.Record != nil {
				fmt.Fprintf(out, "\n✓ 已保存到总结历史 (ID: %s)\n", result.Record.ID)
			} else if result.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "总结历史保存失败: %v\n", result.Err)
			}

			if exportFile && result.Record != nil {
				path, err := export.WriteSummary(a.cfg.ExportDir, *result.Record)
				if err != nil {
					return fmt.Errorf("failed to export summary: %w", err)
				}
				fmt.Fprintf(out, "✓ 已导出：%s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&exportFile, "export", "e", false, "同时导出为 markdown 文件")
	cmd.Flags().IntVar(&lastDays, "last", 0, "总结最近 N 天到今天（0 为今天）")
	return cmd
}

// newHistoryCmd 总结历史命令组
func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "管理总结历史",
		Long:  `查看、删除、导出已保存的 AI 总结（最多保留最近 50 条）。`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "列出总结历史",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				history, err := a.store.GetSummaryHistory(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get summary history: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(history) == 0 {
					fmt.Fprintln(out, "暂无总结历史")
					return nil
				}

				rows := make([][]string, 0, len(history))
				for _, record := range history {
					rows = append(rows, []string{
						record.ID,
						record.StartDate + " ~ " + record.EndDate,
						formatMillis(record.Timestamp, "2006-01-02 15:04"),
						preview(record.Content, 40),
					})
				}
				printTable(out, []string{"ID", "Range", "Created", "Preview"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "查看总结内容",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				record, err := a.store.GetSummaryRecord(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "# %s ~ %s\n\n", record.StartDate, record.EndDate)
				fmt.Fprintln(out, record.Content)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "删除总结",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.DeleteSummaryRecord(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete summary: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ 已删除：%s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "export <id>",
			Short: "导出总结为 markdown 文件",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				record, err := a.store.GetSummaryRecord(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				path, err := export.WriteSummary(a.cfg.ExportDir, record)
				if err != nil {
					return fmt.Errorf("failed to export summary: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ 已导出：%s\n", path)
				return nil
			},
		},
	)

	return cmd
}
