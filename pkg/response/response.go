// Package response 提供统一的 HTTP 响应格式
// 所有 API 都使用相同的响应结构，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// code: 业务状态码（0 表示成功）
// message: 提示信息
// data: 响应数据
type Response struct {
	Code    int         `json:"code"`           // 业务状态码
	Message string      `json:"message"`        // 提示信息
	Data    interface{} `json:"data,omitempty"` // 响应数据，可选
}

// 业务状态码定义
const (
	CodeSuccess              = 0    // 成功
	CodeBadRequest           = 1000 // 请求参数错误
	CodeNotFound             = 1003 // 资源不存在
	CodeInternalError        = 1004 // 服务器内部错误
	CodeTooManyRequests      = 1005 // 请求过于频繁
	CodeServiceUnavailable   = 1006 // 依赖服务不可用
	CodeConversationNotFound = 1101 // 对话不存在
	CodeUpstreamError        = 1201 // 内容读取或 AI 分析失败
	CodeShareInvalid         = 1301 // 分享链接无效
	CodeShareExpired         = 1302 // 分享链接已过期或已撤销
	CodeInvalidEvent         = 1401 // 未知的 Webhook 事件
)

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "创建成功",
		Data:    data,
	})
}

// NoContent 返回 204 无内容响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 返回错误响应
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - message: 错误信息
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Code:    httpCode,
		Message: message,
	})
}

// ErrorWithCode 返回错误响应（带业务状态码）
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - bizCode: 业务状态码
//   - message: 错误信息
//   - data: 附加数据，可以为 nil
func ErrorWithCode(c *gin.Context, httpCode, bizCode int, message string, data interface{}) {
	c.JSON(httpCode, Response{
		Code:    bizCode,
		Message: message,
		Data:    data,
	})
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    CodeBadRequest,
		Message: message,
	})
}

// NotFound 返回 404 错误（资源不存在）
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeNotFound,
		Message: message,
	})
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:    CodeInternalError,
		Message: message,
	})
}

// ConversationNotFound 返回对话不存在错误
func ConversationNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeConversationNotFound,
		Message: "对话不存在",
	})
}

// TooManyRequests 返回 429 错误（触发限流）
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Response{
		Code:    CodeTooManyRequests,
		Message: "请求过于频繁，请稍后再试",
	})
}

// UpstreamError 返回 502 错误（内容读取或 AI 调用失败）
func UpstreamError(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, Response{
		Code:    CodeUpstreamError,
		Message: message,
	})
}

// ShareInvalid 返回分享链接无效错误
func ShareInvalid(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeShareInvalid,
		Message: "分享链接无效",
	})
}

// ShareExpired 返回分享链接过期或已撤销错误
func ShareExpired(c *gin.Context) {
	c.JSON(http.StatusGone, Response{
		Code:    CodeShareExpired,
		Message: "分享链接已过期或已撤销",
	})
}
