package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"insight/internal/service"
	"insight/pkg/response"
)

// ShareHandler 分享请求处理器
type ShareHandler struct {
	shareService *service.ShareService
}

// NewShareHandler 创建 ShareHandler 实例
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// Share 生成分享链接
// @Summary 分享对话
// @Tags 分享
// @Accept json
// @Produce json
// @Param body body service.ShareRequest true "对话ID"
// @Success 201 {object} response.Response{data=service.ShareResponse}
// @Router /api/share [post]
func (h *ShareHandler) Share(c *gin.Context) {
	var req service.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "无效的请求参数")
		return
	}
	id, err := uuid.Parse(req.ConversationID)
	if err != nil {
		response.BadRequest(c, "无效的对话ID")
		return
	}

	resp, err := h.shareService.Share(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "分享失败")
		return
	}

	response.Created(c, resp)
}

// Resolve 打开分享链接
// @Router /api/share/{token} [get]
func (h *ShareHandler) Resolve(c *gin.Context) {
	detail, err := h.shareService.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleServiceError(c, err, "打开分享失败")
		return
	}
	response.Success(c, detail)
}

// Revoke 撤销分享链接
// @Router /api/share/{token} [delete]
func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shareService.Revoke(c.Request.Context(), c.Param("token")); err != nil {
		handleServiceError(c, err, "撤销分享失败")
		return
	}
	response.NoContent(c)
}
