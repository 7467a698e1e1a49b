package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// ErrNothingToExport 没有可导出的内容
var ErrNothingToExport = errors.New("nothing to export")

// DayLogFileName 单日记录导出文件名
func DayLogFileName(date string) string {
	return fmt.Sprintf("work-log-%s.txt", date)
}

// SummaryFileName 总结导出文件名
func SummaryFileName(startDate, endDate string) string {
	return fmt.Sprintf("summary-%s-to-%s.md", startDate, endDate)
}

// DayLog 生成单日记录的纯文本
func DayLog(date string, records []models.WorkRecord) string {
	lines := make([]string, 0, len(records))
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r.Content))
	}
	return fmt.Sprintf("Work Log for %s\n\n%s", date, strings.Join(lines, "\n"))
}

// WriteDayLog 导出单日记录，返回写入的文件路径
func WriteDayLog(dir, date string, records []models.WorkRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToExport
	}
	return write(dir, DayLogFileName(date), DayLog(date, records))
}

// WriteSummary 导出总结为 Markdown，返回写入的文件路径
func WriteSummary(dir string, record models.SummaryRecord) (string, error) {
	if record.Content == "" {
		return "", ErrNothingToExport
	}
	return write(dir, SummaryFileName(record.StartDate, record.EndDate), record.Content)
}

func write(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
