// Package middleware 提供 HTTP 请求的中间件
package middleware

import (
	"log"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"insight/pkg/response"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware 为每个请求分配 ID
// 客户端已带 X-Request-ID 时沿用
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// LoggerMiddleware 创建请求日志中间件
// 记录每个请求的方法、路径、状态码、耗时和客户端 IP
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if id := c.GetString("request_id"); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			attrs = append(attrs, "error", errs)
		}

		// 根据状态码选择日志级别
		// 500-599: 服务端错误
		// 400-499: 客户端错误
		slog.Log(c.Request.Context(), levelForStatus(status), "http request", attrs...)
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RecoveryMiddleware 创建 panic 恢复中间件
// 捕获处理器中的 panic，防止程序崩溃
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, err, debug.Stack())
				response.InternalError(c, "服务器内部错误")
				c.Abort()
			}
		}()

		c.Next()
	}
}
