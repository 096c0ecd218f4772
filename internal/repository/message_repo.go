// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"insight/internal/model"
)

// MessageRepository 消息数据访问层
// 负责消息相关的所有数据库操作
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建新消息
// 参数:
//   - ctx: 上下文
//   - message: 消息对象，ID 和 Timestamp 为空时自动填充
//
// 返回:
//   - error: 会话不存在时返回 ErrConversationMissing
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = now()
	}
	return translateFK(r.db.WithContext(ctx).Create(message).Error)
}

// CreateBatch 批量追加同一会话的消息
// 批内消息的时间戳严格递增，保证读取顺序与写入顺序一致
func (r *MessageRepository) CreateBatch(ctx context.Context, conversationID uuid.UUID, messages []model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertMessages(tx, conversationID, messages)
	})
}

// GetByConversationID 获取会话的所有消息
// 按时间正序排列（最早的在前）
func (r *MessageRepository) GetByConversationID(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&messages).Error
	return messages, err
}

// CountByConversationID 统计会话的消息数量
func (r *MessageRepository) CountByConversationID(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error
	return count, err
}

// insertMessages 在事务 tx 中写入消息
// 时间戳从当前时间起按微秒递增（PostgreSQL timestamp 精度为微秒）
func insertMessages(tx *gorm.DB, conversationID uuid.UUID, messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	base := now()
	for i := range messages {
		if messages[i].ID == uuid.Nil {
			messages[i].ID = uuid.New()
		}
		messages[i].ConversationID = conversationID
		messages[i].Timestamp = base.Add(time.Duration(i) * time.Microsecond)
	}
	return translateFK(tx.Create(&messages).Error)
}

// now 返回截断到微秒的 UTC 时间
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
