package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hytyads/worklog-tools-form-luc/internal/storage"
)

// newAddCmd 添加工作记录
func newAddCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <content...>",
		Short: "添加工作记录",
		Long:  `在指定日期（默认今天）添加一条工作记录，每天最多 100 条。`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = a.today()
			}
			content := strings.Join(args, " ")

			record, err := a.store.AddRecord(cmd.Context(), date, content)
			if errors.Is(err, storage.ErrDailyLimitReached) {
				return fmt.Errorf("%s 已达到每日 %d 条记录上限", date, storage.MaxRecordsPerDay)
			}
			if err != nil {
				return fmt.Errorf("failed to save record: %w", err)
			}

			a.logger.Infow("Work record added", "date", date, "id", record.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ 已记录：%s (%s %s)\n", record.Content, date, formatMillis(record.Timestamp, "15:04"))
			fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", record.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "记录日期 (YYYY-MM-DD)，默认今天")
	return cmd
}

// newListCmd 列出某天的记录
func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [date]",
		Short: "列出某天的工作记录",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := a.today()
			if len(args) == 1 {
				date = args[0]
			}
			if err := storage.ValidateDate(date); err != nil {
				return err
			}

			records, err := a.store.GetRecordsByDate(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("failed to get records: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "%s 暂无记录\n", date)
				return nil
			}

			fmt.Fprintf(out, "📝 工作记录 (%s)：\n", date)
			printRecords(out, records, false)
			fmt.Fprintf(out, "共 %d 条记录\n", len(records))
			return nil
		},
	}
}

// newEditCmd 修改记录内容
func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <date> <id> <content...>",
		Short: "修改工作记录内容",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, id := args[0], args[1]
			content := strings.Join(args[2:], " ")

			if err := a.requireRecord(cmd.Context(), date, id); err != nil {
				return err
			}
			if err := a.store.UpdateRecord(cmd.Context(), date, id, content); err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ 已更新：%s\n", id)
			return nil
		},
	}
}

// newRmCmd 删除记录
func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <date> <id>",
		Short: "删除工作记录",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRecord(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if err := a.store.DeleteRecord(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ 已删除：%s\n", args[1])
			return nil
		},
	}
}

// newDatesCmd 列出有记录的日期
func newDatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "列出有记录的日期",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := a.store.GetDatesWithData(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get dates: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(dates) == 0 {
				fmt.Fprintln(out, "暂无记录")
				return nil
			}
			for _, date := range dates {
				fmt.Fprintln(out, date)
			}
			return nil
		},
	}
}

// newRangeCmd 列出日期范围内的记录
func newRangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range <start> <end>",
		Short: "列出日期范围内的工作记录",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end := args[0], args[1]
			if err := validateRange(start, end); err != nil {
				return err
			}

			records, err := a.store.GetRecordsInRange(cmd.Context(), start, end)
			if err != nil {
				return fmt.Errorf("failed to get records: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "%s 至 %s 暂无记录\n", start, end)
				return nil
			}

			printRecords(out, records, true)
			fmt.Fprintf(out, "共 %d 条记录\n", len(records))
			return nil
		},
	}
}

// requireRecord 确认记录存在，存储层对不存在的记录静默忽略
func (a *app) requireRecord(ctx context.Context, date, id string) error {
	if err := storage.ValidateDate(date); err != nil {
		return err
	}
	records, err := a.store.GetRecordsByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to get records: %w", err)
	}
	for _, record := range records {
		if record.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", storage.ErrRecordNotFound, date, id)
}

// validateRange 校验日期范围格式
func validateRange(start, end string) error {
	if err := storage.ValidateDate(start); err != nil {
		return err
	}
	return storage.ValidateDate(end)
}
