package summary

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider 未知的 AI 提供商
var ErrUnknownProvider = errors.New("unknown provider")

// ConfigError 调用前的配置缺失（API Key、Base URL）
type ConfigError struct {
	Field   string // 缺失的设置项
	Message string // 本地化提示
}

func (e *ConfigError) Error() string {
	return e.Message
}

// APIError 后端返回非 2xx 状态
type APIError struct {
	StatusCode int
	Message    string // 后端返回的错误信息，无法解析时为状态文本
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.StatusCode, e.Message)
}
