// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"insight/internal/model"
)

// WebhookRepository Webhook 数据访问层
type WebhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository 创建 WebhookRepository 实例
func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// Create 登记新的 Webhook
func (r *WebhookRepository) Create(ctx context.Context, webhook *model.Webhook) error {
	if webhook.ID == uuid.Nil {
		webhook.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(webhook).Error
}

// GetByID 根据 ID 获取 Webhook，未找到返回 nil
func (r *WebhookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Webhook, error) {
	var webhook model.Webhook
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&webhook).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &webhook, nil
}

// List 获取全部 Webhook，按登记时间正序
func (r *WebhookRepository) List(ctx context.Context) ([]model.Webhook, error) {
	var webhooks []model.Webhook
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&webhooks).Error
	return webhooks, err
}

// ListByEvent 获取订阅了指定事件的 Webhook
// events 是 JSON 列，不同数据库的包含查询写法不一样，这里在内存中过滤
func (r *WebhookRepository) ListByEvent(ctx context.Context, eventType string) ([]model.Webhook, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var matched []model.Webhook
	for i := range all {
		if all[i].Subscribes(eventType) {
			matched = append(matched, all[i])
		}
	}
	return matched, nil
}
