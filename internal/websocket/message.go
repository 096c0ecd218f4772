// Package websocket 提供对话事件的实时推送
// 客户端订阅某个对话后，会收到该对话的新消息、分享等事件
package websocket

import (
	"time"
)

// 消息类型常量
// 业务事件直接使用事件名（如 message.created）作为类型
const (
	// 客户端 → 服务端
	TypeHeartbeat = "heartbeat" // 心跳

	// 服务端 → 客户端
	TypeConnected = "stream:connected" // 订阅成功
	TypePong      = "pong"             // 心跳响应
	TypeError     = "error"            // 错误消息
)

// Message WebSocket 消息结构
// 所有消息都使用这个统一的结构
type Message struct {
	Type      string      `json:"type"`      // 消息类型
	Payload   interface{} `json:"payload"`   // 消息内容
	Timestamp int64       `json:"timestamp"` // 时间戳（毫秒）
}

// NewMessage 创建新消息
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ConnectedPayload 订阅成功 Payload
type ConnectedPayload struct {
	ConversationID string `json:"conversation_id"`
}

// ErrorPayload 错误消息 Payload
type ErrorPayload struct {
	Code    int    `json:"code"`    // 错误码
	Message string `json:"message"` // 错误信息
}
