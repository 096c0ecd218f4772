// Package client 封装与 insight 服务端的 HTTP API 交互
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"insight/internal/model"
	"insight/internal/service"
)

// Client API 客户端
// baseURL: 例如 http://localhost:3001
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 API 客户端
// 分析请求要等大模型返回，超时留得比较长
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// APIResponse 通用响应
type APIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError 服务端返回的业务错误
type APIError struct {
	Status  int    // HTTP 状态码
	Code    int    // 业务状态码
	Message string // 错误信息
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API 错误 (%d/%d): %s", e.Status, e.Code, e.Message)
}

// Analyze 分析链接并创建对话
func (c *Client) Analyze(ctx context.Context, link, thought string) (uuid.UUID, error) {
	var result service.AnalyzeResponse
	err := c.do(ctx, http.MethodPost, "/api/analyze", &service.AnalyzeRequest{
		URL:            link,
		InitialThought: thought,
	}, &result)
	return result.ConversationID, err
}

// GetConversation 获取对话详情
func (c *Client) GetConversation(ctx context.Context, id uuid.UUID) (*service.ConversationDetail, error) {
	var result service.ConversationDetail
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+id.String(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddMessage 追加一轮对话
func (c *Client) AddMessage(ctx context.Context, id uuid.UUID, message, link string) ([]model.Message, error) {
	var result service.AddMessageResponse
	err := c.do(ctx, http.MethodPost, "/api/conversations/"+id.String()+"/messages", &service.AddMessageRequest{
		Message: message,
		URL:     link,
	}, &result)
	return result.Messages, err
}

// Share 生成分享链接
func (c *Client) Share(ctx context.Context, id uuid.UUID) (*service.ShareResponse, error) {
	var result service.ShareResponse
	if err := c.do(ctx, http.MethodPost, "/api/share", &service.ShareRequest{ConversationID: id.String()}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RevokeShare 撤销分享链接
func (c *Client) RevokeShare(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/api/share/"+url.PathEscape(token), nil, nil)
}

// CreateWebhook 登记 Webhook
func (c *Client) CreateWebhook(ctx context.Context, req *service.CreateWebhookRequest) (*service.WebhookResponse, error) {
	var result service.WebhookResponse
	if err := c.do(ctx, http.MethodPost, "/api/webhooks", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListWebhooks 列出 Webhook
func (c *Client) ListWebhooks(ctx context.Context) ([]model.Webhook, error) {
	var result struct {
		Webhooks []model.Webhook `json:"webhooks"`
	}
	err := c.do(ctx, http.MethodGet, "/api/webhooks", nil, &result)
	return result.Webhooks, err
}

// Health 查询服务健康状态
// 服务不可用时同样返回状态内容和 APIError
func (c *Client) Health(ctx context.Context) (*service.HealthStatus, error) {
	var result service.HealthStatus
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &result)
	return &result, err
}

// do 发送请求并解析响应信封
// 业务错误时 data 仍会尝试解析到 out 中
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("解析响应失败 (HTTP %d): %w", resp.StatusCode, err)
	}

	if out != nil && len(apiResp.Data) > 0 && string(apiResp.Data) != "null" {
		if err := json.Unmarshal(apiResp.Data, out); err != nil {
			return fmt.Errorf("解析响应数据失败: %w", err)
		}
	}

	if apiResp.Code != 0 || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Code: apiResp.Code, Message: apiResp.Message}
	}
	return nil
}
