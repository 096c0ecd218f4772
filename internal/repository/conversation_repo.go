// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"insight/internal/model"
)

// ConversationRepository 会话数据访问层
// 负责会话相关的所有数据库操作
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建新会话
// 参数:
//   - ctx: 上下文
//   - conversation: 会话对象，ID 为空时自动生成
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Messages").Create(conversation).Error
}

// CreateWithMessages 在同一个事务里创建会话和它的首批消息
// 参数:
//   - ctx: 上下文
//   - conversation: 会话对象
//   - messages: 消息列表，会被填上 ConversationID 和递增的时间戳
//
// 返回:
//   - error: 任一步失败则整体回滚
func (r *ConversationRepository) CreateWithMessages(ctx context.Context, conversation *model.Conversation, messages []model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if conversation.ID == uuid.Nil {
			conversation.ID = uuid.New()
		}
		if err := tx.Omit("Messages").Create(conversation).Error; err != nil {
			return err
		}
		return insertMessages(tx, conversation.ID, messages)
	})
}

// GetByID 根据 ID 获取会话
// 返回:
//   - *model.Conversation: 会话对象，未找到返回 nil
//   - error: 数据库错误
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// GetByIDWithMessages 根据 ID 获取会话及其所有消息
// 消息按写入时间正序
func (r *ConversationRepository) GetByIDWithMessages(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Where("id = ?", id).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// Exists 会话是否存在
func (r *ConversationRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// AppendTurn 记录一轮对话
// 覆盖 world_model 并追加消息，两者在同一事务中完成
// 参数:
//   - ctx: 上下文
//   - id: 会话ID
//   - worldModel: 更新后的理解状态
//   - messages: 本轮产生的消息（通常是 user + assistant）
//
// 返回:
//   - error: 会话不存在时返回 ErrConversationMissing
func (r *ConversationRepository) AppendTurn(ctx context.Context, id uuid.UUID, worldModel model.WorldModel, messages []model.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Conversation{}).
			Where("id = ?", id).
			Update("world_model", datatypes.NewJSONType(worldModel.Normalize()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConversationMissing
		}
		return insertMessages(tx, id, messages)
	})
}
