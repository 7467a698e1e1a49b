package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("kv: key not found")

// Store 本地键值存储接口
// 值为完整的 JSON 文档，调用方负责整体读取、修改、写回
type Store interface {
	// Get 读取键对应的值，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put 覆盖写入键对应的值
	Put(ctx context.Context, key string, value []byte) error

	// Delete 删除键，不存在时不报错
	Delete(ctx context.Context, key string) error

	// Close 释放底层资源
	Close() error
}

// 存储后端
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Open 根据配置打开存储后端
func Open(cfg models.StoreConfig, dataDir string) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileStore(dataDir)
	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(dataDir, "worklog.db")
		}
		return NewSQLiteStore(path)
	case BackendRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

// validateKey 键只允许字母、数字、下划线和连字符
func validateKey(key string) error {
	if key == "" {
		return errors.New("kv: empty key")
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return fmt.Errorf("kv: invalid key %q", key)
		}
	}
	return nil
}
