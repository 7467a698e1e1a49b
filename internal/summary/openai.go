package summary

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel 未配置模型时使用
	DefaultOpenAIModel = "gpt-3.5-turbo"

	chatCompletionsPath = "/chat/completions"
	temperature         = 0.7
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletionsURL 规范化 Base URL
// 用户可能填 https://api.deepseek.com 或 https://api.deepseek.com/chat/completions
func ChatCompletionsURL(baseURL string) string {
	endpoint := strings.TrimSpace(baseURL)
	if strings.HasSuffix(endpoint, chatCompletionsPath) {
		return endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	return endpoint + chatCompletionsPath
}

// OpenAIClient OpenAI 兼容接口客户端（ChatGPT、DeepSeek 等）
type OpenAIClient struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewOpenAIClient 创建 OpenAI 兼容客户端
func NewOpenAIClient(apiKey, baseURL, model string, client *http.Client, logger *zap.SugaredLogger) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey:   apiKey,
		endpoint: ChatCompletionsURL(baseURL),
		model:    model,
		client:   client,
		logger:   logger,
	}
}

// Generate 发送 system + user 两条消息
func (c *OpenAIClient) Generate(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}

	c.logger.Debugw("calling chat completions", "endpoint", c.endpoint, "model", c.model)

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.client, c.logger, c.endpoint, headers, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
