// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole 消息角色常量
const (
	MessageRoleUser      = "user"      // 用户消息
	MessageRoleAssistant = "assistant" // AI 助手响应
)

// Message 消息模型
// 对应数据库表 messages
// 只追加，不修改不删除
type Message struct {
	// ID 消息唯一标识
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// ConversationID 所属会话ID，外键关联 conversations.id
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null" json:"conversation_id"`

	// Role 消息角色: user / assistant
	Role string `gorm:"not null" json:"role"`

	// Content 消息内容
	Content string `gorm:"type:text;not null" json:"content"`

	// Timestamp 写入时间，查询时按它正序排列
	Timestamp time.Time `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"timestamp"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}
