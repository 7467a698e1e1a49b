package summary

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// Store 总结流程依赖的存储能力
type Store interface {
	GetRecordsInRange(ctx context.Context, startDate, endDate string) ([]models.WorkRecord, error)
	SaveSummaryRecord(ctx context.Context, startDate, endDate, content string) (models.SummaryRecord, error)
}

// Status 一次生成的结果类型
type Status int

const (
	StatusOK        Status = iota // 生成成功并已保存
	StatusNoRecords               // 区间内没有记录，未调用后端
	StatusEmpty                   // 后端成功返回但内容为空
	StatusFailed                  // 配置缺失、网络错误或后端返回错误
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoRecords:
		return "no_records"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result 生成结果
// Text 总是可以直接展示给用户；只有 StatusOK 会写入总结历史
type Result struct {
	Status Status
	Text   string
	Record *models.SummaryRecord // 保存成功后的历史记录
	Err    error                 // StatusFailed 时的原始错误，或保存历史失败的错误
}

// OK 是否生成成功
func (r *Result) OK() bool {
	return r.Status == StatusOK
}

// Options 生成器选项
type Options struct {
	HTTPClient    *http.Client
	GeminiBaseURL string
	Timeout       time.Duration // 单次请求超时，0 表示不限制
}

// Generator 总结生成器
type Generator struct {
	store  Store
	logger *zap.SugaredLogger
	opts   Options
	getenv func(string) string
}

// NewGenerator 创建总结生成器
func NewGenerator(store Store, logger *zap.SugaredLogger, opts Options) *Generator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Generator{
		store:  store,
		logger: logger,
		opts:   opts,
		getenv: os.Getenv,
	}
}

// variant 提供商及其空结果提示
type variant struct {
	name   models.Provider
	client TextGenerator
	empty  messageKey
}

// newVariant 根据设置选择提供商
func (g *Generator) newVariant(settings models.Settings) (*variant, error) {
	lang := settings.Language

	switch provider := settings.Provider.Normalize(); provider {
	case models.ProviderGemini:
		key := settings.APIKey
		if key == "" {
			key = g.getenv("GEMINI_API_KEY")
		}
		if key == "" {
			key = g.getenv("API_KEY")
		}
		if key == "" {
			return nil, &ConfigError{Field: "apiKey", Message: text(lang, msgGeminiKeyMissing)}
		}
		return &variant{
			name:   provider,
			client: NewGeminiClient(key, g.opts.GeminiBaseURL, g.opts.HTTPClient, g.logger),
			empty:  msgGeminiEmpty,
		}, nil

	case models.ProviderOpenAI:
		if settings.APIKey == "" {
			return nil, &ConfigError{Field: "apiKey", Message: text(lang, msgAPIKeyMissing)}
		}
		if strings.TrimSpace(settings.BaseURL) == "" {
			return nil, &ConfigError{Field: "baseUrl", Message: text(lang, msgBaseURLMissing)}
		}
		return &variant{
			name:   provider,
			client: NewOpenAIClient(settings.APIKey, settings.BaseURL, settings.ModelName, g.opts.HTTPClient, g.logger),
			empty:  msgOpenAIEmpty,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, settings.Provider)
	}
}

// Generate 生成 [startDate, endDate] 的工作总结
// 任何错误都会被转换为本地化文本放在 Result.Text 中，不会向调用方返回 error
func (g *Generator) Generate(ctx context.Context, settings models.Settings, startDate, endDate string) *Result {
	lang := settings.Language

	records, err := g.store.GetRecordsInRange(ctx, startDate, endDate)
	if err != nil {
		return g.fail(lang, fmt.Errorf("get records: %w", err))
	}

	if len(records) == 0 {
		return &Result{Status: StatusNoRecords, Text: text(lang, msgNoRecords)}
	}

	prompt, err := BuildPrompt(settings, records, startDate, endDate)
	if err != nil {
		return g.fail(lang, err)
	}

	v, err := g.newVariant(settings)
	if err != nil {
		return g.fail(lang, err)
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	g.logger.Infow("generating summary",
		"provider", v.name, "start", startDate, "end", endDate, "records", len(records))

	output, err := v.client.Generate(ctx, prompt.System, prompt.User)
	if err != nil {
		return g.fail(lang, err)
	}

	if strings.TrimSpace(output) == "" {
		g.logger.Warnw("provider returned empty content", "provider", v.name)
		return &Result{Status: StatusEmpty, Text: text(lang, v.empty)}
	}

	result := &Result{Status: StatusOK, Text: output}

	record, err := g.store.SaveSummaryRecord(ctx, startDate, endDate, output)
	if err != nil {
		// 总结已经生成，保存失败只记录错误
		g.logger.Errorw("failed to save summary record", "error", err)
		result.Err = fmt.Errorf("save summary: %w", err)
		return result
	}
	result.Record = &record

	g.logger.Infow("summary generated", "id", record.ID, "length", len(output))
	return result
}

func (g *Generator) fail(lang models.Language, err error) *Result {
	g.logger.Errorw("summary generation failed", "error", err)
	return &Result{
		Status: StatusFailed,
		Text:   textf(lang, msgGenerationError, err.Error()),
		Err:    err,
	}
}
