package middleware

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"insight/internal/config"
	"insight/pkg/response"
)

// Limiter 限流计数器
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware 创建按客户端 IP 的固定窗口限流中间件
// 参数:
//   - limiter: 计数器，为 nil 时不限流
//   - scope: 限流维度，不同接口分开计数
//   - cfg: 窗口内请求数和窗口长度，Requests <= 0 时不限流
//
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func RateLimitMiddleware(limiter Limiter, scope string, cfg config.RateLimitConfig) gin.HandlerFunc {
	if limiter == nil || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	retryAfter := strconv.Itoa(int((cfg.Window + time.Second - 1) / time.Second))
	limit := strconv.Itoa(cfg.Requests)

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP(), cfg.Requests, cfg.Window)
		if err != nil {
			// 计数器不可用时放行
			log.Printf("Rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		if !allowed {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
