package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hytyads/worklog-tools-form-luc/internal/export"
	"github.com/hytyads/worklog-tools-form-luc/internal/models"
	"github.com/hytyads/worklog-tools-form-luc/internal/summary"
)

// Period 总结周期
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

const dateFormat = "2006-01-02"

// SettingsStore 读取用户设置
type SettingsStore interface {
	GetUserSettings(ctx context.Context) (models.Settings, error)
}

// Generator 总结生成
type Generator interface {
	Generate(ctx context.Context, settings models.Settings, startDate, endDate string) *summary.Result
}

// SummaryTask 定时总结任务（每日或每周）
type SummaryTask struct {
	period    Period
	store     SettingsStore
	generator Generator
	exportDir string // 为空时不导出 markdown
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewSummaryTask 创建总结任务
func NewSummaryTask(period Period, store SettingsStore, generator Generator, exportDir string, logger *zap.SugaredLogger) *SummaryTask {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SummaryTask{
		period:    period,
		store:     store,
		generator: generator,
		exportDir: exportDir,
		logger:    logger,
		now:       time.Now,
	}
}

// ID 返回任务 ID
func (t *SummaryTask) ID() string {
	return string(t.period) + "-summary"
}

// Name 返回任务名称
func (t *SummaryTask) Name() string {
	if t.period == PeriodWeekly {
		return "周度总结生成"
	}
	return "每日总结生成"
}

// Execute 执行任务
func (t *SummaryTask) Execute(ctx context.Context) error {
	start, end := SummaryRange(t.period, t.now())

	settings, err := t.store.GetUserSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	t.logger.Infow("Generating summary", "task", t.ID(), "start", start, "end", end)

	result := t.generator.Generate(ctx, settings, start, end)
	switch result.Status {
	case summary.StatusOK:
	case summary.StatusNoRecords:
		// 没有记录，跳过
		t.logger.Infow("No records to summarize", "task", t.ID(), "start", start, "end", end)
		return nil
	default:
		if result.Err != nil {
			return fmt.Errorf("failed to generate summary (%s): %w", result.Status, result.Err)
		}
		return fmt.Errorf("failed to generate summary (%s): %s", result.Status, result.Text)
	}

	if t.exportDir != "" {
		record := models.SummaryRecord{StartDate: start, EndDate: end, Content: result.Text}
		if result.Record != nil {
			record = *result.Record
		}
		path, err := export.WriteSummary(t.exportDir, record)
		if err != nil {
			return fmt.Errorf("failed to export summary: %w", err)
		}
		t.logger.Infow("Summary exported", "task", t.ID(), "path", path)
	}

	if result.Err != nil {
		return fmt.Errorf("summary generated but not saved: %w", result.Err)
	}
	return nil
}

// SummaryRange 计算总结覆盖的日期范围（含首尾）
// 每日：昨天；每周：上一个完整的周一到周日
func SummaryRange(period Period, now time.Time) (start, end string) {
	if period == PeriodWeekly {
		days := int(now.Weekday())
		if days == 0 {
			days = 7
		}
		lastSunday := now.AddDate(0, 0, -days)
		lastMonday := lastSunday.AddDate(0, 0, -6)
		return lastMonday.Format(dateFormat), lastSunday.Format(dateFormat)
	}

	yesterday := now.AddDate(0, 0, -1).Format(dateFormat)
	return yesterday, yesterday
}
