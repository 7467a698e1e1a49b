package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hytyads/worklog-tools-form-luc/config"
	"github.com/hytyads/worklog-tools-form-luc/internal/kv"
	"github.com/hytyads/worklog-tools-form-luc/internal/logger"
	"github.com/hytyads/worklog-tools-form-luc/internal/models"
	"github.com/hytyads/worklog-tools-form-luc/internal/storage"
	"github.com/hytyads/worklog-tools-form-luc/internal/summary"
)

const dateFormat = "2006-01-02"

// app 命令运行时依赖，在 PersistentPreRunE 中初始化
type app struct {
	configPath string

	cfg    *models.Config
	logger *zap.SugaredLogger
	kv     kv.Store
	store  *storage.RecordStore
	now    func() time.Time
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	rootCmd := &cobra.Command{
		Use:           "worklog",
		Short:         "工作日志与 AI 总结",
		Long:          `按日期记录工作内容，并通过 Gemini 或 OpenAI 兼容接口生成阶段性总结。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigPath(), "配置文件路径")

	rootCmd.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newDatesCmd(a),
		newRangeCmd(a),
		newSummarizeCmd(a),
		newHistoryCmd(a),
		newSettingsCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

// Execute 执行根命令
func Execute() error {
	return NewRootCommand().Execute()
}

// open 加载配置并打开存储
func (a *app) open() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.EnsureDirectories(cfg); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := kv.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	a.cfg = cfg
	a.logger = log
	a.kv = store
	a.store = storage.NewRecordStore(store)

	log.Debugw("store opened", "backend", cfg.Store.Backend, "data_dir", cfg.DataDir)
	return nil
}

// close 释放存储并刷新日志
func (a *app) close() error {
	var err error
	if a.kv != nil {
		err = a.kv.Close()
		a.kv = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// generator 根据配置创建总结生成器
func (a *app) generator() *summary.Generator {
	return summary.NewGenerator(a.store, a.logger, summary.Options{
		GeminiBaseURL: a.cfg.GeminiBaseURL,
		Timeout:       config.RequestTimeout(a.cfg),
	})
}

func (a *app) today() string {
	return a.now().Format(dateFormat)
}

// lastDays 返回 N 天前到今天的日期范围
func (a *app) lastDays(days int) (start, end string) {
	now := a.now()
	return now.AddDate(0, 0, -days).Format(dateFormat), now.Format(dateFormat)
}
