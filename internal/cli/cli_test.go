package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hytyads/worklog-tools-form-luc/config"
	"github.com/hytyads/worklog-tools-form-luc/internal/kv"
	"github.com/hytyads/worklog-tools-form-luc/internal/models"
	"github.com/hytyads/worklog-tools-form-luc/internal/scheduler"
	"github.com/hytyads/worklog-tools-form-luc/internal/storage"
)

// writeTestConfig 在临时目录写入配置，返回配置文件路径和工作目录
func writeTestConfig(t *testing.T, extra string) (string, string) {
	t.Helper()

	workDir := t.TempDir()
	content := fmt.Sprintf(`work_dir: %s
data_dir: data
export_dir: exports
run_dir: run
enable_logging: false
log_file: ""
log_level: error
%s`, workDir, extra)

	configPath := filepath.Join(workDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath, workDir
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.Execute()
	return buf.String(), err
}

// openStore 直接打开测试工作目录下的文件存储
func openStore(t *testing.T, workDir string) *storage.RecordStore {
	t.Helper()
	backend, err := kv.NewFileStore(filepath.Join(workDir, "data"))
	require.NoError(t, err)
	return storage.NewRecordStore(backend)
}

func TestAddAndList(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	out, err := run(t, configPath, "add", "--date", "2024-01-15", "完成", "API", "开发")
	require.NoError(t, err)
	assert.Contains(t, out, "已记录：完成 API 开发")

	out, err = run(t, configPath, "list", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "完成 API 开发")
	assert.Contains(t, out, "共 1 条记录")

	out, err = run(t, configPath, "list", "2024-01-16")
	require.NoError(t, err)
	assert.Contains(t, out, "暂无记录")

	out, err = run(t, configPath, "dates")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15\n", out)
}

func TestAddRejectsInvalidDate(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	_, err := run(t, configPath, "add", "--date", "2024/01/15", "x")
	assert.ErrorIs(t, err, storage.ErrInvalidDate)

	_, err = run(t, configPath, "list", "yesterday")
	assert.ErrorIs(t, err, storage.ErrInvalidDate)
}

func TestEditAndRemove(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "")
	ctx := context.Background()

	_, err := run(t, configPath, "add", "--date", "2024-01-15", "初稿")
	require.NoError(t, err)

	store := openStore(t, workDir)
	records, err := store.GetRecordsByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, records, 1)
	id := records[0].ID

	_, err = run(t, configPath, "edit", "2024-01-15", id, "终稿")
	require.NoError(t, err)

	records, err = store.GetRecordsByDate(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "终稿", records[0].Content)

	_, err = run(t, configPath, "edit", "2024-01-15", "missing", "x")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	_, err = run(t, configPath, "rm", "2024-01-15", id)
	require.NoError(t, err)

	dates, err := store.GetDatesWithData(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)

	_, err = run(t, configPath, "rm", "2024-01-15", id)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestRange(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	for _, args := range [][]string{
		{"add", "--date", "2024-01-03", "third"},
		{"add", "--date", "2024-01-01", "first"},
		{"add", "--date", "2024-02-01", "outside"},
	} {
		_, err := run(t, configPath, args...)
		require.NoError(t, err)
	}

	out, err := run(t, configPath, "range", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "third")
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "outside")
	assert.Contains(t, out, "共 2 条记录")
}

func TestSettingsSetAndShow(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "")

	_, err := run(t, configPath, "settings", "set",
		"--provider", "openai", "--api-key", "sk-1234567890abcd", "--base-url", "http://localhost:1/v1", "--language", "en")
	require.NoError(t, err)

	settings, err := openStore(t, workDir).GetUserSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, settings.Provider)
	assert.Equal(t, models.LanguageEn, settings.Language)
	assert.Equal(t, "sk-1234567890abcd", settings.APIKey)
	assert.Equal(t, "http://localhost:1/v1", settings.BaseURL)
	assert.Equal(t, "gpt-3.5-turbo", settings.ModelName)

	out, err := run(t, configPath, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "openai-compatible")
	assert.Contains(t, out, "sk-1*********abcd")
	assert.NotContains(t, out, "sk-1234567890abcd")

	_, err = run(t, configPath, "settings", "set", "--language", "fr")
	assert.Error(t, err)
	_, err = run(t, configPath, "settings", "set", "--provider", "claude")
	assert.Error(t, err)
}

func newChatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad key"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSummarizeSavesAndExports(t *testing.T) {
	server := newChatServer(t, http.StatusOK, "- Shipped the API")
	configPath, workDir := writeTestConfig(t, "")

	_, err := run(t, configPath, "settings", "set", "--provider", "openai-compatible",
		"--api-key", "sk-test", "--base-url", server.URL+"/v1/", "--language", "en")
	require.NoError(t, err)
	_, err = run(t, configPath, "add", "--date", "2024-01-15", "API work")
	require.NoError(t, err)

	out, err := run(t, configPath, "summarize", "2024-01-15", "2024-01-15", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, "- Shipped the API")

	history, err := openStore(t, workDir).GetSummaryHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2024-01-15", history[0].StartDate)

	data, err := os.ReadFile(filepath.Join(workDir, "exports", "summary-2024-01-15-to-2024-01-15.md"))
	require.NoError(t, err)
	assert.Equal(t, "- Shipped the API", string(data))

	out, err = run(t, configPath, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, history[0].ID)

	out, err = run(t, configPath, "history", "show", history[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "# 2024-01-15 ~ 2024-01-15")

	_, err = run(t, configPath, "history", "rm", history[0].ID)
	require.NoError(t, err)

	_, err = run(t, configPath, "history", "show", history[0].ID)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestSummarizeNoRecords(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "")

	out, err := run(t, configPath, "summarize", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "该时间段内没有记录。")

	history, err := openStore(t, workDir).GetSummaryHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSummarizeFailure(t *testing.T) {
	server := newChatServer(t, http.StatusUnauthorized, "")
	configPath, workDir := writeTestConfig(t, "")

	_, err := run(t, configPath, "settings", "set", "--provider", "openai-compatible",
		"--api-key", "sk-test", "--base-url", server.URL+"/v1", "--language", "en")
	require.NoError(t, err)
	_, err = run(t, configPath, "add", "--date", "2024-01-15", "API work")
	require.NoError(t, err)

	out, err := run(t, configPath, "summarize", "2024-01-15", "2024-01-15")
	assert.ErrorIs(t, err, errSummaryFailed)
	assert.Contains(t, out, "An error occurred while generating the summary: API Error 401: bad key")

	history, err := openStore(t, workDir).GetSummaryHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestExportDay(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "")

	out, err := run(t, configPath, "export", "day", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "无需导出")

	_, err = run(t, configPath, "add", "--date", "2024-01-15", "a")
	require.NoError(t, err)
	_, err = run(t, configPath, "add", "--date", "2024-01-15", "b")
	require.NoError(t, err)

	_, err = run(t, configPath, "export", "day", "2024-01-15")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(workDir, "exports", "work-log-2024-01-15.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Work Log for 2024-01-15\n\n1. a\n2. b", string(data))
}

func TestSQLiteBackend(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "store:\n  backend: sqlite\n  sqlite_path: data/worklog.db\n")

	_, err := run(t, configPath, "add", "--date", "2024-01-15", "stored in sqlite")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(workDir, "data", "worklog.db"))
	require.NoError(t, err)

	out, err := run(t, configPath, "list", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "stored in sqlite")
}

func TestNewSchedulerRegistersEnabledTasks(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "weekly_summary_cron: \"\"\n")

	a := &app{configPath: configPath, now: time.Now}
	require.NoError(t, a.open())
	defer a.close()

	sched, err := a.newScheduler()
	require.NoError(t, err)

	configs := sched.Registry().GetAllTasks()
	require.Len(t, configs, 1)
	assert.Equal(t, "daily-summary", configs[0].ID)
	assert.Equal(t, "5 0 * * *", configs[0].Spec)

	_, err = os.Stat(filepath.Join(workDir, "run", "tasks.json"))
	assert.NoError(t, err)
}

func TestProcessLock(t *testing.T) {
	runDir := t.TempDir()
	logger := zap.NewNop().Sugar()
	lockFile := filepath.Join(runDir, lockFileName)

	require.NoError(t, CheckAndAcquireLock(runDir, logger))
	data, err := os.ReadFile(lockFile)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	ReleaseLock(runDir, logger)
	_, err = os.Stat(lockFile)
	assert.True(t, os.IsNotExist(err))

	// 其他存活进程持有锁
	require.NoError(t, os.WriteFile(lockFile, []byte(strconv.Itoa(os.Getppid())), 0644))
	assert.Error(t, CheckAndAcquireLock(runDir, logger))

	// 旧进程已退出
	require.NoError(t, os.WriteFile(lockFile, []byte("999999999"), 0644))
	assert.NoError(t, CheckAndAcquireLock(runDir, logger))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "(未设置)", maskKey(""))
	assert.Equal(t, "*****", maskKey("short"))
	assert.Equal(t, "abcd****mnop", maskKey("abcdefghmnop"))

	assert.Equal(t, "first line", preview("first line\nsecond", 40))
	assert.Equal(t, "abc...", preview("abcdef", 3))
}

func TestSummarizeLastDays(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": "- recent"}}},
		})
	}))
	defer server.Close()

	configPath, workDir := writeTestConfig(t, "")
	now := time.Now()
	today := now.Format(dateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(dateFormat)
	older := now.AddDate(0, 0, -3).Format(dateFormat)

	_, err := run(t, configPath, "settings", "set", "--provider", "openai-compatible",
		"--api-key", "sk-test", "--base-url", server.URL, "--language", "en")
	require.NoError(t, err)
	for date, content := range map[string]string{today: "today work", yesterday: "yesterday work", older: "older work"} {
		_, err = run(t, configPath, "add", "--date", date, content)
		require.NoError(t, err)
	}

	out, err := run(t, configPath, "summarize", "--last", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "- recent")
	assert.Contains(t, prompt, "Time Range: "+yesterday+" to "+today)
	assert.Contains(t, prompt, "today work")
	assert.Contains(t, prompt, "yesterday work")
	assert.NotContains(t, prompt, "older work")

	history, err := openStore(t, workDir).GetSummaryHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, yesterday, history[0].StartDate)
	assert.Equal(t, today, history[0].EndDate)

	_, err = run(t, configPath, "summarize", "--last", "1", today, today)
	assert.Error(t, err)
	_, err = run(t, configPath, "summarize", "--last", "-1")
	assert.Error(t, err)
	_, err = run(t, configPath, "summarize", today)
	assert.Error(t, err)
}

func TestAppLastDays(t *testing.T) {
	a := &app{now: func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local) }}

	tests := []struct {
		days      int
		wantStart string
	}{
		{0, "2024-03-01"},
		{1, "2024-02-29"},
		{6, "2024-02-24"},
	}
	for _, tt := range tests {
		start, end := a.lastDays(tt.days)
		assert.Equal(t, tt.wantStart, start)
		assert.Equal(t, "2024-03-01", end)
	}
}

func TestConfigInit(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := run(t, configPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, configPath)

	loaded, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), loaded)

	_, err = run(t, configPath, "config", "init")
	assert.Error(t, err)

	_, err = run(t, configPath, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestServeStatus(t *testing.T) {
	configPath, workDir := writeTestConfig(t, "")

	out, err := run(t, configPath, "serve", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "暂无定时任务记录")

	registry := scheduler.NewRegistry(filepath.Join(workDir, "run"))
	registry.PutTask(scheduler.TaskConfig{
		ID:        "daily-summary",
		Spec:      "5 0 * * *",
		LastRun:   time.Date(2024, 5, 20, 0, 5, 0, 0, time.Local),
		LastError: "API Error 401: bad key",
	})
	require.NoError(t, registry.Save())

	out, err = run(t, configPath, "serve", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "daily-summary")
	assert.Contains(t, out, "2024-05-20 00:05")
	assert.Contains(t, out, "API Error 401: bad key")

	// 只读状态，不获取进程锁
	_, err = os.Stat(filepath.Join(workDir, "run", lockFileName))
	assert.True(t, os.IsNotExist(err))
}
