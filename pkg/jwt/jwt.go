// Package jwt 提供分享链接 Token 的生成和验证功能
// 分享链接本身就是一个签名的 JWT，服务端无需保存分享记录
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 定义错误类型
var (
	ErrInvalidToken = errors.New("invalid token")     // Token 无效
	ErrExpiredToken = errors.New("token has expired") // Token 已过期
)

const (
	issuer       = "insight"
	shareSubject = "share"
)

// ShareClaims 分享 Token 的声明（Payload）
type ShareClaims struct {
	ConversationID string `json:"conversation_id"` // 被分享的对话 ID
	jwt.RegisteredClaims                          // 标准声明（过期时间等）
}

// ShareTokenService 提供分享 Token 相关操作
type ShareTokenService struct {
	secret []byte        // 签名密钥
	expire time.Duration // 分享链接有效期
}

// NewShareTokenService 创建 ShareTokenService 实例
// 参数:
//   - secret: 签名密钥，生产环境至少 32 个字符
//   - expire: 分享链接有效期
//
// 返回:
//   - *ShareTokenService: 服务实例
func NewShareTokenService(secret string, expire time.Duration) *ShareTokenService {
	return &ShareTokenService{
		secret: []byte(secret),
		expire: expire,
	}
}

// Generate 为对话生成分享 Token
// 参数:
//   - conversationID: 对话 ID
//
// 返回:
//   - string: JWT Token 字符串
//   - time.Time: 过期时间
//   - error: 生成错误
func (s *ShareTokenService) Generate(conversationID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expire)

	claims := ShareClaims{
		ConversationID: conversationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   shareSubject,
			// 同一对话多次分享得到不同的 Token，可以单独撤销
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	// NumericDate 精度为秒，返回与 Token 内一致的时间
	return signed, claims.ExpiresAt.Time, nil
}

// Validate 验证分享 Token
// 参数:
//   - tokenString: JWT Token 字符串
//
// 返回:
//   - *ShareClaims: 解析出的声明
//   - error: ErrExpiredToken 或 ErrInvalidToken
func (s *ShareTokenService) Validate(tokenString string) (*ShareClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 只接受 HMAC 签名，防止算法替换攻击
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithSubject(shareSubject))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ShareClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ConversationID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
