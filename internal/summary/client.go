package summary

import "context"

// TextGenerator 根据系统提示词和用户提示词生成文本
// 每个 AI 提供商对应一个实现，新增提供商时在 newVariant 的分支中注册
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
