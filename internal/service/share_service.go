package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"insight/internal/model"
	"insight/internal/repository"
	"insight/pkg/jwt"
	"insight/pkg/util"
)

// ShareRevocationStore 分享链接撤销列表
type ShareRevocationStore interface {
	RevokeShare(ctx context.Context, tokenHash string, expireAt time.Time) error
	IsShareRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// 分享服务相关错误
var (
	ErrShareInvalid          = errors.New("分享链接无效")
	ErrShareExpired          = errors.New("分享链接已过期")
	ErrShareRevoked          = errors.New("分享链接已撤销")
	ErrRevocationUnavailable = errors.New("撤销服务不可用")
)

// SharePathPrefix 分享链接路径前缀
const SharePathPrefix = "/share/"

// ShareService 分享服务
// 分享链接是签名 Token，撤销记录保存在 Redis
type ShareService struct {
	convRepo    *repository.ConversationRepository
	tokens      *jwt.ShareTokenService
	revocations ShareRevocationStore // 可以为 nil，此时不支持撤销
	notifier    EventNotifier
}

// NewShareService 创建 ShareService 实例
func NewShareService(
	convRepo *repository.ConversationRepository,
	tokens *jwt.ShareTokenService,
	revocations ShareRevocationStore,
) *ShareService {
	return &ShareService{
		convRepo:    convRepo,
		tokens:      tokens,
		revocations: revocations,
	}
}

// SetNotifier 设置通知器
func (s *ShareService) SetNotifier(n EventNotifier) {
	s.notifier = n
}

// ShareRequest 分享请求
type ShareRequest struct {
	ConversationID string `json:"conversationId"`
}

// ShareResponse 分享响应
type ShareResponse struct {
	ShareURL  string    `json:"shareUrl"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConversationSharedData conversation.shared 事件内容
type ConversationSharedData struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Share 为对话生成分享链接
func (s *ShareService) Share(ctx context.Context, conversationID uuid.UUID) (*ShareResponse, error) {
	exists, err := s.convRepo.Exists(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	token, expiresAt, err := s.tokens.Generate(conversationID)
	if err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, model.NewEvent(model.EventConversationShared, conversationID, ConversationSharedData{
		ExpiresAt: expiresAt,
	}))

	return &ShareResponse{
		ShareURL:  SharePathPrefix + token,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve 打开分享链接，返回对话内容
func (s *ShareService) Resolve(ctx context.Context, token string) (*ConversationDetail, error) {
	claims, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	conversation, err := s.convRepo.GetByIDWithMessages(ctx, uuid.MustParse(claims.ConversationID))
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	messages := conversation.Messages
	if messages == nil {
		messages = []model.Message{}
	}
	conversation.Messages = nil
	return &ConversationDetail{Conversation: conversation, Messages: messages}, nil
}

// Revoke 撤销分享链接，撤销记录保留到 Token 原本的过期时间
func (s *ShareService) Revoke(ctx context.Context, token string) error {
	if s.revocations == nil {
		return ErrRevocationUnavailable
	}
	claims, err := s.validate(ctx, token)
	if err != nil {
		return err
	}
	return s.revocations.RevokeShare(ctx, util.HashToken(token), claims.ExpiresAt.Time)
}

// validate 校验签名、有效期和撤销状态
func (s *ShareService) validate(ctx context.Context, token string) (*jwt.ShareClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, ErrShareExpired
		}
		return nil, ErrShareInvalid
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsShareRevoked(ctx, util.HashToken(token))
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrShareRevoked
		}
	}
	return claims, nil
}
