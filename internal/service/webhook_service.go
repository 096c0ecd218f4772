package service

import (
	"context"
	"errors"
	"strings"

	"insight/internal/model"
	"insight/internal/reader"
	"insight/internal/repository"
	"insight/pkg/util"
)

// Webhook 服务相关错误
var (
	ErrInvalidEvent = errors.New("未知的事件类型")
	ErrNoEvents     = errors.New("至少订阅一个事件")
)

// WebhookService Webhook 登记服务
type WebhookService struct {
	webhookRepo *repository.WebhookRepository
}

// NewWebhookService 创建 WebhookService 实例
func NewWebhookService(webhookRepo *repository.WebhookRepository) *WebhookService {
	return &WebhookService{webhookRepo: webhookRepo}
}

// CreateWebhookRequest 登记 Webhook 请求
type CreateWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"` // 可选，为空时自动生成
}

// WebhookResponse Webhook 响应
// Secret 只在创建时返回一次
type WebhookResponse struct {
	*model.Webhook
	Secret string `json:"secret,omitempty"`
}

// Create 登记 Webhook
func (s *WebhookService) Create(ctx context.Context, req *CreateWebhookRequest) (*WebhookResponse, error) {
	url := strings.TrimSpace(req.URL)
	if err := reader.ValidateURL(url); err != nil {
		return nil, ErrInvalidURL
	}

	events := make([]string, 0, len(req.Events))
	seen := make(map[string]bool, len(req.Events))
	for _, e := range req.Events {
		e = strings.TrimSpace(e)
		if !model.IsKnownEvent(e) {
			return nil, ErrInvalidEvent
		}
		if !seen[e] {
			seen[e] = true
			events = append(events, e)
		}
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		secret = util.GenerateSecret()
	}

	webhook := &model.Webhook{
		URL:    url,
		Secret: secret,
		Events: events,
	}
	if err := s.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, err
	}
	return &WebhookResponse{Webhook: webhook, Secret: secret}, nil
}

// List 列出所有 Webhook（不含密钥）
func (s *WebhookService) List(ctx context.Context) ([]model.Webhook, error) {
	webhooks, err := s.webhookRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if webhooks == nil {
		webhooks = []model.Webhook{}
	}
	return webhooks, nil
}
