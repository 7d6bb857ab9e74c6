/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 10:27:35
 * @FilePath: \shiftcash-bot\backend\internal\infra\telegram\client.go
 * @LastEditTime: 2025-10-19 09:44:02
 */
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// defaultBaseURL 为 Telegram Bot API 的默认入口地址。
	defaultBaseURL = "https://api.telegram.org"
	// defaultTimeout 控制普通请求的默认超时时间；长轮询请求会在其上叠加 poll 超时。
	defaultTimeout = 40 * time.Second
)

// Client 封装与 Telegram Bot API 的 HTTP 交互。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option 用于自定义 Client 行为。
type Option func(*Client)

// WithBaseURL 设置自定义基础地址，测试时指向 httptest 服务。
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient 允许传入调用方自定义的 http.Client。
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient 构造 Bot API 客户端。
func NewClient(token string, opts ...Option) *Client {
	client := &Client{
		token:   strings.TrimSpace(token),
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	return client
}

// endpoint 拼接最终请求路径，token 作为路径的一部分。
func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// APIError 封装 Bot API 返回的错误响应，便于上层识别（例如被收件人拉黑时的 403）。
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

// Error 实现 error 接口。
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != 0 {
		return fmt.Sprintf("telegram api: %s (%d)", e.Description, e.Code)
	}
	return fmt.Sprintf("telegram api: %s", e.Description)
}

// GetUpdates 以长轮询方式拉取更新。timeout 为服务端挂起秒数，offset
// 传上一批最大 update_id + 1 以确认消费。
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	raw, err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        timeout,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// SendMessage 向指定会话发送一条 HTML 格式文本。
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	return err
}

// call 执行一次 Bot API 调用：序列化 JSON → 发起请求 → 解析公共外壳。
func (c *Client) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.token == "" {
		return nil, fmt.Errorf("bot token is empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("decode response: status %d, body: %s", resp.StatusCode, string(rawBody))
	}
	if !env.OK {
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        env.ErrorCode,
			Description: env.Description,
		}
	}
	return env.Result, nil
}
