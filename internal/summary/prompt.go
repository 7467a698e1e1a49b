package summary

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// Prompt 发送给提供商的提示词
type Prompt struct {
	System string
	User   string
}

// PromptData 模板数据结构
type PromptData struct {
	StartDate string
	EndDate   string
	Records   []models.WorkRecord
}

const logsTemplate = `{{range .Records}}- [{{.Date}}]: {{.Content}}
{{end}}`

var (
	systemPrompts = map[models.Language]string{
		models.LanguageZh: "你是一个专业的项目管理助手。请生成一份简洁、专业的工作周报/总结，使用 Markdown 格式。",
		models.LanguageEn: "You are a professional project manager assistant. Please generate a concise, professional work summary report in Markdown format.",
	}

	userTemplates = map[models.Language]*template.Template{
		models.LanguageZh: template.Must(template.New("zh").Parse(`时间范围: {{.StartDate}} 到 {{.EndDate}}
要求：
1. 使用中文回答。
2. 将相似的任务进行归类。
3. 突出主要成就。
4. 使用无序列表（Bullet points）组织内容。

工作日志:
` + logsTemplate)),
		models.LanguageEn: template.Must(template.New("en").Parse(`Time Range: {{.StartDate}} to {{.EndDate}}
Requirements:
1. Respond in English.
2. Group similar tasks if possible.
3. Highlight key achievements.
4. Organize it using bullet points.

Work Logs:
` + logsTemplate)),
	}

	// customTemplate 自定义提示词时只提供时间范围和日志，不附带语言相关要求
	customTemplate = template.Must(template.New("custom").Parse(`Time Range: {{.StartDate}} to {{.EndDate}}

Work Logs:
` + logsTemplate))
)

// BuildPrompt 构建系统提示词和用户提示词
// customPrompt 去除首尾空白后非空时作为系统提示词原样使用
func BuildPrompt(settings models.Settings, records []models.WorkRecord, startDate, endDate string) (Prompt, error) {
	data := PromptData{
		StartDate: startDate,
		EndDate:   endDate,
		Records:   records,
	}

	if custom := strings.TrimSpace(settings.CustomPrompt); custom != "" {
		user, err := execute(customTemplate, data)
		if err != nil {
			return Prompt{}, err
		}
		return Prompt{System: custom, User: user}, nil
	}

	lang := settings.Language
	if lang != models.LanguageZh {
		lang = models.LanguageEn
	}

	user, err := execute(userTemplates[lang], data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: systemPrompts[lang], User: user}, nil
}

func execute(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template: %w", err)
	}
	return buf.String(), nil
}
