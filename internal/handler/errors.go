// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"insight/internal/model"
	"insight/internal/service"
	"insight/pkg/response"
)

// handleServiceError 把服务层错误转换为 HTTP 响应
// 未识别的错误记录日志并返回 500
func handleServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		response.ConversationNotFound(c)
	case errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrEmptyThought),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrNoEvents):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidEvent):
		response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidEvent, err.Error(), gin.H{
			"allowed": model.EventTypes,
		})
	case errors.Is(err, service.ErrUpstream):
		// 上游错误里可能带有代理或模型返回的原文，只写日志
		log.Printf("%s: %v", action, err)
		response.UpstreamError(c, service.ErrUpstream.Error())
	case errors.Is(err, service.ErrShareInvalid):
		response.ShareInvalid(c)
	case errors.Is(err, service.ErrShareExpired), errors.Is(err, service.ErrShareRevoked):
		response.ShareExpired(c)
	case errors.Is(err, service.ErrAnalyzerUnavailable), errors.Is(err, service.ErrRevocationUnavailable):
		response.ErrorWithCode(c, http.StatusServiceUnavailable, response.CodeServiceUnavailable, err.Error(), nil)
	default:
		log.Printf("%s: %v", action, err)
		response.InternalError(c, action)
	}
}
