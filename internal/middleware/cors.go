package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodDelete,
		http.MethodOptions,
	}, ", ")
	corsHeaders       = strings.Join([]string{"Origin", "Content-Type", "Accept", "X-Requested-With", HeaderRequestID}, ", ")
	corsExposeHeaders = strings.Join([]string{"Content-Length", HeaderRequestID, "Retry-After", "X-RateLimit-Limit"}, ", ")
	corsMaxAge        = strconv.Itoa(24 * 60 * 60)
)

// OriginPolicy 允许的跨域来源
// HTTP 接口和 WebSocket 共用同一份名单
type OriginPolicy struct {
	wildcard bool
	allowed  map[string]struct{}
}

// NewOriginPolicy 创建来源名单，为空或包含 "*" 时允许所有来源
func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{
		wildcard: len(origins) == 0,
		allowed:  make(map[string]struct{}, len(origins)),
	}
	for _, o := range origins {
		o = normalizeOrigin(o)
		if o == "*" {
			p.wildcard = true
		}
		p.allowed[o] = struct{}{}
	}
	return p
}

// Wildcard 是否允许所有来源
func (p *OriginPolicy) Wildcard() bool {
	return p.wildcard
}

// Allows 判断来源是否在名单内
func (p *OriginPolicy) Allows(origin string) bool {
	if p.wildcard {
		return true
	}
	_, ok := p.allowed[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.TrimRight(strings.TrimSpace(o), "/")
}

// CORSMiddleware 创建 CORS 跨域中间件
// 参数:
//   - origins: 允许的来源，为空或包含 "*" 时允许所有来源
//
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
//
// 接口不使用 Cookie，任何情况下都不返回 Allow-Credentials
func CORSMiddleware(origins []string) gin.HandlerFunc {
	policy := NewOriginPolicy(origins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case policy.Wildcard():
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			c.Header("Vary", "Origin")
			if !policy.Allows(origin) {
				// 不在名单内：不带 CORS 头，由浏览器拦截
				if c.Request.Method == http.MethodOptions {
					c.AbortWithStatus(http.StatusNoContent)
					return
				}
				c.Next()
				return
			}
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)

		// 预检请求直接返回 204
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsMethods)
			c.Header("Access-Control-Allow-Headers", corsHeaders)
			c.Header("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
