// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MediaType 内容类型常量
const (
	MediaTypeWebpage = "webpage" // 普通网页
	MediaTypeVideo   = "video"   // 视频（YouTube）
	MediaTypePodcast = "podcast" // 播客音频
)

// Conversation 会话模型
// 对应数据库表 conversations
// 每次分析一个链接创建一条，是消息的聚合根
type Conversation struct {
	// ID 会话唯一标识，UUID 主键，由服务端生成
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// URL 被分析的内容地址
	URL string `gorm:"not null" json:"url"`

	// MediaType 内容类型: webpage / video / podcast
	MediaType string `gorm:"not null" json:"media_type"`

	// UserInsight 用户提交的初始想法
	UserInsight *string `json:"user_insight,omitempty"`

	// AIAnalysis 首轮分析时模型给出的回复
	AIAnalysis *string `json:"ai_analysis,omitempty"`

	// WorldModel 当前的理解状态，每轮对话后整体覆盖
	WorldModel datatypes.JSONType[WorldModel] `json:"world_model"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Messages 会话中的所有消息（一对多关系）
	// 迁移时据此建立 messages.conversation_id 外键
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"messages,omitempty"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}
