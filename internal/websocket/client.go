package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client 表示一个订阅了对话的 WebSocket 连接
type Client struct {
	hub            *Hub            // 所属的 Hub
	conn           *websocket.Conn // WebSocket 连接
	send           chan []byte     // 发送消息的通道
	conversationID uuid.UUID       // 订阅的对话
	mu             sync.Mutex      // 保护 send 通道的关闭
	closed         bool
}

// 连接配置常量
const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 等待 Pong 响应的超时时间
	pongWait = 60 * time.Second

	// 发送 Ping 的间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 客户端只发心跳，消息很小
	maxMessageSize = 4 * 1024

	// 发送缓冲区大小
	sendBufferSize = 64
)

// NewClient 创建新的客户端
func NewClient(hub *Hub, conn *websocket.Conn, conversationID uuid.UUID) *Client {
	return &Client{
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, sendBufferSize),
		conversationID: conversationID,
	}
}

// ReadPump 读取客户端消息
// 客户端只会发送心跳；连接断开时注销
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	// 每次收到 Pong，重置读取超时
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendMessage(NewMessage(TypeError, &ErrorPayload{Code: 400, Message: "invalid message"}))
			continue
		}
		switch msg.Type {
		case TypeHeartbeat:
			c.conn.SetReadDeadline(time.Now().Add(pongWait))
			c.SendMessage(NewMessage(TypePong, nil))
		default:
			c.SendMessage(NewMessage(TypeError, &ErrorPayload{Code: 400, Message: "unsupported message type: " + msg.Type}))
		}
	}
}

// WritePump 把 send 通道中的消息写入连接，并定时发送 Ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// send 通道已关闭
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 向客户端发送消息
// 非阻塞，缓冲区满时丢弃
func (c *Client) SendMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Client send buffer full, dropping message: conversation=%s", c.conversationID)
	}
}

// Close 关闭发送通道，WritePump 随后关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
