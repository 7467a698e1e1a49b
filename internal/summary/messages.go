package summary

import (
	"fmt"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

type messageKey int

const (
	msgNoRecords messageKey = iota
	msgGeminiKeyMissing
	msgGeminiEmpty
	msgAPIKeyMissing
	msgBaseURLMissing
	msgOpenAIEmpty
	msgGenerationError
)

// messages 用户可见的本地化文本，zh 以外的语言一律使用英文
var messages = map[messageKey][2]string{
	msgNoRecords:        {"该时间段内没有记录。", "No records found for this period."},
	msgGeminiKeyMissing: {"未找到 Google API Key。请在设置中配置。", "Google API Key not found. Please configure it in Settings."},
	msgGeminiEmpty:      {"未能生成总结。", "Failed to generate summary."},
	msgAPIKeyMissing:    {"未找到 API Key。", "API Key is required."},
	msgBaseURLMissing:   {"未配置 Base URL。", "Base URL is required."},
	msgOpenAIEmpty:      {"API 返回内容为空。", "API returned empty content."},
	msgGenerationError:  {"生成总结时发生错误: %s", "An error occurred while generating the summary: %s"},
}

func text(lang models.Language, key messageKey) string {
	pair := messages[key]
	if lang == models.LanguageZh {
		return pair[0]
	}
	return pair[1]
}

func textf(lang models.Language, key messageKey, args ...any) string {
	return fmt.Sprintf(text(lang, key), args...)
}
