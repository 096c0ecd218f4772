package model

import (
	"time"

	"github.com/google/uuid"
)

// 事件类型，Webhook 按这些名字订阅
const (
	EventConversationCreated = "conversation.created"
	EventMessageCreated      = "message.created"
	EventConversationShared  = "conversation.shared"
)

// EventTypes 所有可订阅的事件
var EventTypes = []string{
	EventConversationCreated,
	EventMessageCreated,
	EventConversationShared,
}

// IsKnownEvent 判断事件名是否合法
func IsKnownEvent(eventType string) bool {
	for _, e := range EventTypes {
		if e == eventType {
			return true
		}
	}
	return false
}

// Event 业务事件
// 同时用于 Webhook 投递和 WebSocket 推送
type Event struct {
	ID             uuid.UUID   `json:"id"`
	Type           string      `json:"type"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	Data           interface{} `json:"data,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

// NewEvent 创建事件
func NewEvent(eventType string, conversationID uuid.UUID, data interface{}) Event {
	return Event{
		ID:             uuid.New(),
		Type:           eventType,
		ConversationID: conversationID,
		Data:           data,
		OccurredAt:     time.Now().UTC(),
	}
}
