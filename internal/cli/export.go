package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hytyads/worklog-tools-form-luc/internal/export"
	"github.com/hytyads/worklog-tools-form-luc/internal/storage"
)

// newExportCmd 导出命令组
func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出工作记录",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "day <date>",
		Short: "导出某天的工作记录为文本文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			if err := storage.ValidateDate(date); err != nil {
				return err
			}

			records, err := a.store.GetRecordsByDate(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("failed to get records: %w", err)
			}

			path, err := export.WriteDayLog(a.cfg.ExportDir, date, records)
			if errors.Is(err, export.ErrNothingToExport) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s 暂无记录，无需导出\n", date)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to export day log: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ 已导出：%s\n", path)
			return nil
		},
	})

	return cmd
}
