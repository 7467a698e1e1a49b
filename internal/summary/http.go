package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// errorBody 后端错误响应，Gemini 与 OpenAI 兼容接口形状相同
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// postJSON 发送 JSON POST 请求并解析响应
// 非 2xx 状态返回 *APIError，错误信息优先取响应体中的 error.message
func postJSON(ctx context.Context, client *http.Client, logger *zap.SugaredLogger, url string, headers map[string]string, body, out any) error {
	if client == nil {
		client = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			logger.Warnw("failed to close response body", "error", closeErr, "url", url)
		}
	}()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Error.Message != "" {
			apiErr.Message = eb.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response body (status %d): %w", res.StatusCode, err)
	}
	return nil
}
