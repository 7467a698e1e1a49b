package summary

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultGeminiBaseURL Gemini API 地址
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// GeminiModel 使用的 Gemini 模型
	GeminiModel = "gemini-2.5-flash"
)

type geminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiClient Google Gemini 客户端
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewGeminiClient 创建 Gemini 客户端，baseURL 为空时使用官方地址
func NewGeminiClient(apiKey, baseURL string, client *http.Client, logger *zap.SugaredLogger) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   GeminiModel,
		client:  client,
		logger:  logger,
	}
}

// Generate 将系统提示词和用户提示词合并为一条 prompt 发送
func (c *GeminiClient) Generate(ctx context.Context, system, user string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: system + "\n\n" + user}},
		}},
	}

	c.logger.Debugw("calling gemini", "model", c.model, "prompt_len", len(req.Contents[0].Parts[0].Text))

	var resp geminiResponse
	headers := map[string]string{"x-goog-api-key": c.apiKey}
	if err := postJSON(ctx, c.client, c.logger, url, headers, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
