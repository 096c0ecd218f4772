package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"insight/internal/model"
)

// Hub 是 WebSocket 连接的中心管理器
// 按对话 ID 分组管理连接，把对话事件推送给订阅者
type Hub struct {
	// 对话订阅者：conversationID -> clients
	clients map[uuid.UUID]map[*Client]struct{}

	// 注册通道
	register chan *Client

	// 注销通道
	unregister chan *Client

	// 互斥锁，保护 clients
	mu sync.RWMutex

	// Run 退出后关闭
	done chan struct{}
}

// NewHub 创建 Hub 实例
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 启动 Hub 的主循环
// 应该在单独的 goroutine 中运行，ctx 取消时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.conversationID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.conversationID] = set
	}
	set[client] = struct{}{}
	log.Printf("Stream client registered: conversation=%s, subscribers=%d", client.conversationID, len(set))
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if set, ok := h.clients[client.conversationID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.conversationID)
		}
	}
	h.mu.Unlock()

	client.Close()
	log.Printf("Stream client unregistered: conversation=%s", client.conversationID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			c.Close()
		}
		delete(h.clients, id)
	}
}

// Register 注册客户端（供外部调用）
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister 注销客户端（供外部调用）
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast 把事件推送给订阅了该对话的所有连接
func (h *Hub) Broadcast(event model.Event) {
	data, err := json.Marshal(NewMessage(event.Type, event))
	if err != nil {
		log.Printf("Failed to encode event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[event.ConversationID] {
		c.enqueue(data)
	}
}

// Notify 实现事件通知接口
// 未启用 Redis 时服务层直接通知 Hub
func (h *Hub) Notify(ctx context.Context, event model.Event) error {
	h.Broadcast(event)
	return nil
}

// Subscribers 返回对话当前的订阅连接数
func (h *Hub) Subscribers(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[conversationID])
}

// Relay 把 Redis 频道里的对话事件转发给本实例的连接
// 多实例部署时，任一实例产生的事件都会经 Redis 到达所有实例
// ch 通常来自 (*redis.PubSub).Channel()，关闭或 ctx 取消时返回
func (h *Hub) Relay(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Invalid event on %s: %v", msg.Channel, err)
				continue
			}
			h.Broadcast(event)
		}
	}
}
