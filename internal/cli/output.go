package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// printTable 使用 lipgloss/table 表格输出
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// printRecords 输出工作记录表格
func printRecords(w io.Writer, records []models.WorkRecord, withDate bool) {
	headers := []string{"#", "ID", "Time", "Content"}
	if withDate {
		headers = []string{"#", "Date", "ID", "Time", "Content"}
	}

	rows := make([][]string, 0, len(records))
	for i, record := range records {
		row := []string{fmt.Sprintf("%d", i+1)}
		if withDate {
			row = append(row, record.Date)
		}
		row = append(row, record.ID, formatMillis(record.Timestamp, "15:04"), record.Content)
		rows = append(rows, row)
	}

	printTable(w, headers, rows)
}

// formatMillis 格式化毫秒时间戳
func formatMillis(ms int64, layout string) string {
	return time.UnixMilli(ms).Format(layout)
}

// formatTime 格式化时间，零值显示为 -
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// preview 取第一行并截断
func preview(content string, limit int) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return line
}

// maskKey 隐藏 API key 中间部分
func maskKey(key string) string {
	if key == "" {
		return "(未设置)"
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
