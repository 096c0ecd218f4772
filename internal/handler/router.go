package handler

import (
	"github.com/gin-gonic/gin"

	"insight/internal/config"
	"insight/internal/middleware"
)

// Handlers 所有 HTTP 处理器
type Handlers struct {
	Conversation *ConversationHandler
	Share        *ShareHandler
	Webhook      *WebhookHandler
	Health       *HealthHandler
}

// RegisterRoutes 注册 /api 下的所有路由
// 会调用大模型的接口按客户端 IP 限流
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, limiter middleware.Limiter, rl config.RateLimitConfig) {
	api.GET("/health", h.Health.Health)

	api.POST("/analyze", middleware.RateLimitMiddleware(limiter, "analyze", rl), h.Conversation.Analyze)

	conversations := api.Group("/conversations")
	{
		conversations.GET("/:id", h.Conversation.GetConversation)
		conversations.POST("/:id/messages", middleware.RateLimitMiddleware(limiter, "messages", rl), h.Conversation.AddMessage)
	}

	share := api.Group("/share")
	{
		share.POST("", h.Share.Share)
		share.GET("/:token", h.Share.Resolve)
		share.DELETE("/:token", h.Share.Revoke)
	}

	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("", h.Webhook.Create)
		webhooks.GET("", h.Webhook.List)
	}
}
