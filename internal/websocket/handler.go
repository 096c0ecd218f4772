package websocket

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"insight/internal/middleware"
	"insight/pkg/response"
)

// ConversationChecker 检查对话是否存在
type ConversationChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Handler 处理 WebSocket 连接
type Handler struct {
	hub           *Hub
	conversations ConversationChecker
	origins       *middleware.OriginPolicy
	upgrader      websocket.Upgrader
}

// NewHandler 创建 WebSocket Handler
// origins 与 HTTP 接口的 CORS 名单相同；没有 Origin 头的非浏览器客户端不受限制
func NewHandler(hub *Hub, conversations ConversationChecker, origins []string) *Handler {
	h := &Handler{
		hub:           hub,
		conversations: conversations,
		origins:       middleware.NewOriginPolicy(origins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || h.origins.Allows(origin)
}

// HandleStream 订阅对话事件
// 路由: GET /api/conversations/:id/stream
func (h *Handler) HandleStream(c *gin.Context) {
	if !h.checkOrigin(c.Request) {
		response.Error(c, http.StatusForbidden, "不允许的来源")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	exists, err := h.conversations.Exists(c.Request.Context(), id)
	if err != nil {
		log.Printf("Failed to check conversation %s: %v", id, err)
		response.InternalError(c, "查询对话失败")
		return
	}
	if !exists {
		response.ConversationNotFound(c)
		return
	}

	// 升级 HTTP 连接为 WebSocket
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(h.hub, conn, id)
	h.hub.Register(client)
	client.SendMessage(NewMessage(TypeConnected, &ConnectedPayload{ConversationID: id.String()}))

	// 启动读写协程
	go client.WritePump()
	go client.ReadPump()
}

// RegisterRoutes 注册 WebSocket 路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/conversations/:id/stream", h.HandleStream)
}
