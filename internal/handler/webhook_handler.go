package handler

import (
	"github.com/gin-gonic/gin"

	"insight/internal/service"
	"insight/pkg/response"
)

// WebhookHandler Webhook 登记处理器
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler 创建 WebhookHandler 实例
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Create 登记 Webhook，响应中包含密钥（仅此一次）
// @Router /api/webhooks [post]
func (h *WebhookHandler) Create(c *gin.Context) {
	var req service.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}

	webhook, err := h.webhookService.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "登记 Webhook 失败")
		return
	}
	response.Created(c, webhook)
}

// List 列出 Webhook
// @Router /api/webhooks [get]
func (h *WebhookHandler) List(c *gin.Context) {
	webhooks, err := h.webhookService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "获取 Webhook 列表失败")
		return
	}
	response.Success(c, gin.H{"webhooks": webhooks})
}
