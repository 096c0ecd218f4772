package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insight/internal/service"
	"insight/pkg/response"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	healthService *service.HealthService
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(healthService *service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// Health 健康检查
// 数据库不可用时返回 503
// @Router /api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())
	if status.Status == service.HealthDown {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, response.CodeServiceUnavailable, "服务不可用", status)
		return
	}
	response.Success(c, status)
}
