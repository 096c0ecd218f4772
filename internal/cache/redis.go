// Package cache 提供 Redis 缓存操作的封装
// 处理限流计数、分享链接撤销列表、对话事件广播等需要快速访问的数据
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"insight/internal/config"
	"insight/internal/model"
)

// 对话事件频道的订阅模式
const conversationEventsPattern = "conversation:*:events"

// RedisCache 封装 Redis 客户端，提供业务相关的缓存操作
type RedisCache struct {
	client *redis.Client // Redis 客户端实例
}

// NewRedisCache 创建 RedisCache 实例
// 参数:
//   - cfg: 应用配置（包含 Redis 连接信息）
//
// 返回:
//   - *RedisCache: 缓存实例
//   - error: 连接错误
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithClient 使用已有的客户端创建 RedisCache
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// ==================== 限流 ====================
// 固定窗口计数：窗口内第一次请求创建 Key 并设置过期时间

// rateLimitScript 自增计数，只在 Key 没有过期时间时设置窗口
// 不依赖 EXPIRE NX，Redis 7 以下同样可用
var rateLimitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Allow 判断当前请求是否在限额内
// 参数:
//   - ctx: 上下文
//   - key: 限流维度（如 "analyze:1.2.3.4"）
//   - limit: 窗口内允许的请求数
//   - window: 窗口长度
//
// 返回:
//   - bool: 是否放行
//   - error: Redis 操作错误
func (c *RedisCache) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := rateLimitScript.Run(ctx, c.client, []string{rateLimitKey(key)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(limit), nil
}

// ==================== 分享链接撤销列表 ====================

// RevokeShare 将分享 Token 加入撤销列表
// 参数:
//   - ctx: 上下文
//   - tokenHash: Token 的哈希值（不存储原始 Token）
//   - expireAt: Token 的原始过期时间
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) RevokeShare(ctx context.Context, tokenHash string, expireAt time.Time) error {
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		// Token 已过期，无需记录
		return nil
	}
	// TTL 与 Token 剩余有效期一致，过期后自动删除
	return c.client.Set(ctx, shareRevokedKey(tokenHash), "1", ttl).Err()
}

// IsShareRevoked 检查分享 Token 是否已撤销
// 参数:
//   - ctx: 上下文
//   - tokenHash: Token 的哈希值
//
// 返回:
//   - bool: 是否已撤销
//   - error: Redis 操作错误
func (c *RedisCache) IsShareRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := c.client.Exists(ctx, shareRevokedKey(tokenHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ==================== Pub/Sub ====================
// 用于多服务实例间的对话事件广播

// PublishConversationEvent 发布对话事件
// 参数:
//   - ctx: 上下文
//   - event: 事件（会被 JSON 序列化）
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) PublishConversationEvent(ctx context.Context, event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, conversationEventsChannel(event.ConversationID), data).Err()
}

// Notify 实现事件通知接口，把事件发布到 Redis
func (c *RedisCache) Notify(ctx context.Context, event model.Event) error {
	return c.PublishConversationEvent(ctx, event)
}

// SubscribeConversationEvents 订阅所有对话的事件
// 返回 PubSub 对象，调用方负责关闭
// 参数:
//   - ctx: 上下文
//
// 返回:
//   - *redis.PubSub: PubSub 订阅对象
func (c *RedisCache) SubscribeConversationEvents(ctx context.Context) *redis.PubSub {
	return c.client.PSubscribe(ctx, conversationEventsPattern)
}

// ==================== 通用方法 ====================

// Ping 检查 Redis 连接
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// ==================== Key 定义 ====================

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}

func shareRevokedKey(tokenHash string) string {
	return "share:revoked:" + tokenHash
}

func conversationEventsChannel(id uuid.UUID) string {
	return fmt.Sprintf("conversation:%s:events", id)
}

// ConversationIDFromChannel 从频道名解析对话 ID
func ConversationIDFromChannel(channel string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(channel, "conversation:")
	if !ok {
		return uuid.Nil, false
	}
	idPart, ok := strings.CutSuffix(rest, ":events")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
