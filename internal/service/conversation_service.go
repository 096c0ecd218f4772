package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"insight/internal/analyzer"
	"insight/internal/model"
	"insight/internal/reader"
	"insight/internal/repository"
	"insight/pkg/util"
)

// ContentReader 链接内容读取
type ContentReader interface {
	Process(ctx context.Context, url string) (*reader.Content, error)
}

// ContentAnalyzer 大模型分析
type ContentAnalyzer interface {
	Analyze(ctx context.Context, content, initialThought string) (*analyzer.Analysis, error)
	Continue(ctx context.Context, worldModel model.WorldModel, history []analyzer.Turn, newContent string) (*analyzer.Update, error)
}

// 对话服务相关错误
var (
	ErrConversationNotFound = errors.New("对话不存在")
	ErrInvalidURL           = errors.New("无效的链接")
	ErrEmptyThought         = errors.New("初始想法不能为空")
	ErrEmptyMessage         = errors.New("消息不能为空")
	ErrUpstream             = errors.New("内容处理失败")
	ErrAnalyzerUnavailable  = errors.New("AI 服务未配置")
)

// ConversationService 对话服务
// 负责链接分析和后续的多轮对话
type ConversationService struct {
	convRepo *repository.ConversationRepository // 对话数据访问层
	msgRepo  *repository.MessageRepository      // 消息数据访问层
	reader   ContentReader                      // 内容读取
	analyzer ContentAnalyzer                    // 大模型分析
	notifier EventNotifier                      // 事件通知器
}

// NewConversationService 创建 ConversationService 实例
func NewConversationService(
	convRepo *repository.ConversationRepository,
	msgRepo *repository.MessageRepository,
	reader ContentReader,
	analyzer ContentAnalyzer,
) *ConversationService {
	return &ConversationService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		reader:   reader,
		analyzer: analyzer,
	}
}

// SetNotifier 设置通知器
func (s *ConversationService) SetNotifier(n EventNotifier) {
	s.notifier = n
}

// AnalyzeRequest 分析请求
type AnalyzeRequest struct {
	URL            string `json:"url"`
	InitialThought string `json:"initialThought"`
}

// AnalyzeResponse 分析响应
type AnalyzeResponse struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

// ConversationDetail 对话详情
type ConversationDetail struct {
	Conversation *model.Conversation `json:"conversation"`
	Messages     []model.Message     `json:"messages"`
}

// AddMessageRequest 追加消息请求
type AddMessageRequest struct {
	Message string `json:"message" form:"message"`
	URL     string `json:"url" form:"url"` // 可选，附带的新链接
}

// AddMessageResponse 追加消息响应，包含本轮的用户消息和助手回复
type AddMessageResponse struct {
	Messages []model.Message `json:"messages"`
}

// ConversationCreatedData conversation.created 事件内容
type ConversationCreatedData struct {
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
}

// Analyze 分析链接并创建对话
// 读取内容 -> 模型分析 -> 对话和首轮两条消息在同一事务写入
func (s *ConversationService) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	url := strings.TrimSpace(req.URL)
	if err := reader.ValidateURL(url); err != nil {
		return nil, ErrInvalidURL
	}
	thought := strings.TrimSpace(req.InitialThought)
	if thought == "" {
		return nil, ErrEmptyThought
	}

	content, err := s.reader.Process(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	analysis, err := s.analyzer.Analyze(ctx, content.Content, thought)
	if err != nil {
		return nil, analyzerError(err)
	}

	conversation := &model.Conversation{
		URL:         url,
		MediaType:   content.Type,
		UserInsight: util.StringPtr(thought),
		AIAnalysis:  util.StringPtr(analysis.Response),
		WorldModel:  datatypes.NewJSONType(analysis.WorldModel.Normalize()),
	}
	messages := []model.Message{
		{Role: model.MessageRoleUser, Content: thought},
		{Role: model.MessageRoleAssistant, Content: assistantReply(analysis.Response, analysis.FollowUp)},
	}
	if err := s.convRepo.CreateWithMessages(ctx, conversation, messages); err != nil {
		return nil, err
	}

	emit(ctx, s.notifier, model.NewEvent(model.EventConversationCreated, conversation.ID, ConversationCreatedData{
		URL:       conversation.URL,
		MediaType: conversation.MediaType,
	}))
	for _, m := range messages {
		emit(ctx, s.notifier, model.NewEvent(model.EventMessageCreated, conversation.ID, m))
	}

	return &AnalyzeResponse{ConversationID: conversation.ID}, nil
}

// GetConversation 获取对话及其全部消息（按写入顺序）
func (s *ConversationService) GetConversation(ctx context.Context, id uuid.UUID) (*ConversationDetail, error) {
	conversation, err := s.convRepo.GetByIDWithMessages(ctx, id)
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

// AddMessage 在对话中追加一轮
// 新的理解状态和本轮两条消息在同一事务写入
func (s *ConversationService) AddMessage(ctx context.Context, id uuid.UUID, req *AddMessageRequest) (*AddMessageResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	newURL := strings.TrimSpace(req.URL)
	if newURL != "" {
		if err := reader.ValidateURL(newURL); err != nil {
			return nil, ErrInvalidURL
		}
	}

	conversation, err := s.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	history, err := s.msgRepo.GetByConversationID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newContent string
	if newURL != "" {
		content, err := s.reader.Process(ctx, newURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		newContent = content.Content
	}

	turns := make([]analyzer.Turn, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, analyzer.Turn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, analyzer.Turn{Role: model.MessageRoleUser, Content: text})

	update, err := s.analyzer.Continue(ctx, conversation.WorldModel.Data(), turns, newContent)
	if err != nil {
		return nil, analyzerError(err)
	}

	messages := []model.Message{
		{Role: model.MessageRoleUser, Content: text},
		{Role: model.MessageRoleAssistant, Content: assistantReply(update.Response, update.FollowUp)},
	}
	if err := s.convRepo.AppendTurn(ctx, id, update.UpdatedWorldModel, messages); err != nil {
		if errors.Is(err, repository.ErrConversationMissing) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	for _, m := range messages {
		emit(ctx, s.notifier, model.NewEvent(model.EventMessageCreated, id, m))
	}
	return &AddMessageResponse{Messages: messages}, nil
}

// analyzerError 缺少 API Key 是配置问题，其余都算上游失败
func analyzerError(err error) error {
	if errors.Is(err, analyzer.ErrNotConfigured) {
		return ErrAnalyzerUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// assistantReply 助手消息由回复和追问拼成
func assistantReply(response, followUp string) string {
	if followUp == "" {
		return response
	}
	return response + "\n\n" + followUp
}
