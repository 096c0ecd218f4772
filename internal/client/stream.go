package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"insight/internal/model"
)

// 与服务端约定的消息类型
const (
	TypeHeartbeat = "heartbeat"
	TypeConnected = "stream:connected"
	TypePong      = "pong"
	TypeError     = "error"
)

const heartbeatInterval = 30 * time.Second

// StreamMessage 推送消息
type StreamMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// Event 把业务事件的 payload 解析出来
// 非业务消息（连接成功、心跳响应等）返回 false
func (m *StreamMessage) Event() (*model.Event, bool) {
	if !model.IsKnownEvent(m.Type) {
		return nil, false
	}
	var event model.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, false
	}
	return &event, true
}

// StreamURL 根据 HTTP 地址拼出对话事件流地址
func StreamURL(baseURL string, id uuid.UUID) string {
	u := strings.TrimRight(baseURL, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u + "/api/conversations/" + id.String() + "/stream"
}

// Watch 订阅对话事件，每条消息回调一次 onMessage
// ctx 取消或连接断开时返回
func (c *Client) Watch(ctx context.Context, id uuid.UUID, onMessage func(*StreamMessage)) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, StreamURL(c.baseURL, id), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return &APIError{Status: resp.StatusCode, Message: "对话不存在"}
		}
		return fmt.Errorf("连接失败: %w", err)
	}
	defer conn.Close()

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			var msg StreamMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			onMessage(&msg)
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case <-ticker.C:
			data, _ := json.Marshal(map[string]interface{}{
				"type":      TypeHeartbeat,
				"timestamp": time.Now().UnixMilli(),
			})
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}
