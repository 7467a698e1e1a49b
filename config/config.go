package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *models.Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, "worklog")
	return &models.Config{
		DataDir:           filepath.Join(baseDir, "data"),
		ExportDir:         filepath.Join(baseDir, "exports"),
		RunDir:            filepath.Join(baseDir, "run"),
		Store:             models.StoreConfig{Backend: "file"},
		DailySummaryCron:  "5 0 * * *",  // 每天 00:05 总结前一天
		WeeklySummaryCron: "10 0 * * 1", // 每周一 00:10 总结上周
		EnableLogging:     true,
		LogFile:           filepath.Join(baseDir, "logs", "app.log"),
		LogLevel:          "warn",
		LogMaxSizeMB:      10,
	}
}

// DefaultConfigPath 获取默认配置文件路径
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "worklog", "config.yaml")
}

// Load 从文件加载配置，如果不存在则使用默认配置
// 支持 YAML 和 JSON 格式，根据文件扩展名自动识别
func Load(configPath string) (*models.Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse JSON config: %w", err)
		}
	default:
		// 默认使用 YAML（.yaml、.yml 或无扩展名）
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
				return nil, fmt.Errorf("parse config (tried YAML and JSON): YAML error: %w, JSON error: %v", err, jsonErr)
			}
		}
	}

	resolvePaths(cfg)

	return cfg, nil
}

// resolvePaths 根据 WorkDir 解析配置中的相对路径
func resolvePaths(cfg *models.Config) {
	if cfg.WorkDir != "" {
		if absPath, err := filepath.Abs(cfg.WorkDir); err == nil {
			cfg.WorkDir = absPath
		}
	}

	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) || cfg.WorkDir == "" {
			return path
		}
		return filepath.Join(cfg.WorkDir, path)
	}

	cfg.DataDir = resolve(cfg.DataDir)
	cfg.ExportDir = resolve(cfg.ExportDir)
	cfg.RunDir = resolve(cfg.RunDir)
	cfg.LogFile = resolve(cfg.LogFile)
	if cfg.Store.SQLitePath != ":memory:" {
		cfg.Store.SQLitePath = resolve(cfg.Store.SQLitePath)
	}
}

// Save 保存配置到文件
// 根据文件扩展名自动选择 YAML 或 JSON 格式
func Save(cfg *models.Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON config: %w", err)
		}
	default:
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal YAML config: %w", err)
		}
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDirectories 确保必要的目录存在
func EnsureDirectories(cfg *models.Config) error {
	dirs := []string{cfg.DataDir, cfg.ExportDir, cfg.RunDir}
	if cfg.LogFile != "" {
		dirs = append(dirs, filepath.Dir(cfg.LogFile))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// RequestTimeout 单次 AI 请求超时
func RequestTimeout(cfg *models.Config) time.Duration {
	if cfg.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(cfg.RequestTimeout) * time.Second
}
