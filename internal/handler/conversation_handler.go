package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"insight/internal/service"
	"insight/pkg/response"
)

// ConversationHandler 对话请求处理器
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler 创建 ConversationHandler 实例
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// Analyze 分析链接并创建对话
// @Summary 分析链接
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body service.AnalyzeRequest true "链接和初始想法"
// @Success 201 {object} response.Response{data=service.AnalyzeResponse}
// @Router /api/analyze [post]
func (h *ConversationHandler) Analyze(c *gin.Context) {
	var req service.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}

	resp, err := h.conversationService.Analyze(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "分析失败")
		return
	}

	response.Created(c, resp)
}

// GetConversation 获取对话详情
// @Summary 获取对话
// @Tags 对话
// @Produce json
// @Param id path string true "对话ID"
// @Success 200 {object} response.Response{data=service.ConversationDetail}
// @Router /api/conversations/{id} [get]
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id, ok := parseConversationID(c)
	if !ok {
		return
	}

	detail, err := h.conversationService.GetConversation(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "获取对话失败")
		return
	}

	response.Success(c, detail)
}

// AddMessage 在对话中追加一轮
// 参数可以放在 JSON 请求体里，也可以放在 query 中
// @Summary 追加消息
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "对话ID"
// @Param body body service.AddMessageRequest false "消息和可选链接"
// @Success 201 {object} response.Response{data=service.AddMessageResponse}
// @Router /api/conversations/{id}/messages [post]
func (h *ConversationHandler) AddMessage(c *gin.Context) {
	id, ok := parseConversationID(c)
	if !ok {
		return
	}

	var req service.AddMessageRequest
	if c.Request.ContentLength != 0 && c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "无效的请求参数")
			return
		}
	}
	if req.Message == "" {
		req.Message = c.Query("message")
	}
	if req.URL == "" {
		req.URL = c.Query("url")
	}

	resp, err := h.conversationService.AddMessage(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err, "追加消息失败")
		return
	}

	response.Created(c, resp)
}

// parseConversationID 解析路径中的对话 ID，失败时直接返回 400
func parseConversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "无效的对话ID")
		return uuid.Nil, false
	}
	return id, true
}
