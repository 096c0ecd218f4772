// Package analyzer 调用大模型对内容做结构化分析
// 输出严格按照 JSON Schema 约束，直接解码为结构体
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"insight/internal/config"
	"insight/internal/model"
)

// ErrNotConfigured 未配置 API Key
var ErrNotConfigured = errors.New("AI service not configured (missing API key)")

// Analysis 首轮分析结果
type Analysis struct {
	WorldModel model.WorldModel `json:"world_model"`
	Response   string           `json:"response"`
	FollowUp   string           `json:"follow_up"`
}

// Update 后续对话的分析结果
type Update struct {
	UpdatedWorldModel model.WorldModel `json:"updated_world_model"`
	Response          string           `json:"response"`
	FollowUp          string           `json:"follow_up"`
	ReferencedContent string           `json:"referenced_content"`
}

// Turn 历史消息
type Turn struct {
	Role    string
	Content string
}

// Analyzer 基于 OpenAI Chat Completions 的分析器
type Analyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	enabled bool
}

// New 创建 Analyzer
// base_url 为空时使用 OpenAI 官方地址
func New(cfg config.AIConfig) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Analyzer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		enabled: cfg.APIKey != "",
	}
}

const analyzeSystemPrompt = `You are an expert analyst creating a structured analysis from content and user insights.
Your task is to:
1. Analyze the provided content
2. Consider the user's initial thought
3. Create a comprehensive world model that tracks key concepts and their current understanding, main topics being discussed, open questions to explore and a current summary of the discussion
4. Provide an engaging response that shows understanding
5. Ask a relevant follow-up question`

const continueSystemPrompt = `You are an expert analyst continuing a structured conversation about analyzed content.
1. Use the world model as context
2. Update the world model based on new insights
3. If new content is provided, incorporate it into your analysis
4. Provide an engaging response that builds on previous context
5. Ask a relevant follow-up question`

// Analyze 对内容和用户的初始想法做首轮分析
func (a *Analyzer) Analyze(ctx context.Context, content, initialThought string) (*Analysis, error) {
	user := "Content:\n" + content +
		"\n\nUser's Initial Thought:\n" + initialThought +
		"\n\nCreate a structured analysis with world model, response, and follow-up question."

	var out Analysis
	if err := a.complete(ctx, "analysis_response", analysisSchema(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}, &out); err != nil {
		return nil, err
	}
	out.WorldModel = out.WorldModel.Normalize()
	return &out, nil
}

// Continue 结合当前理解和历史消息继续对话
// newContent 为用户附带的新链接内容，可以为空
func (a *Analyzer) Continue(ctx context.Context, worldModel model.WorldModel, history []Turn, newContent string) (*Update, error) {
	wm, err := json.MarshalIndent(worldModel.Normalize(), "", "  ")
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Current World Model:\n")
	sb.Write(wm)
	sb.WriteString("\n\nMessage History:\n")
	for _, t := range history {
		sb.WriteString(t.Role)
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: continueSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: sb.String()},
	}
	if newContent != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "New content to analyze:\n" + newContent,
		})
	}

	var out Update
	if err := a.complete(ctx, "conversation_update", updateSchema(), messages, &out); err != nil {
		return nil, err
	}
	out.UpdatedWorldModel = out.UpdatedWorldModel.Normalize()
	return &out, nil
}

// complete 发起一次结构化输出的对话补全，并把结果解码到 out
func (a *Analyzer) complete(ctx context.Context, name string, schema json.Marshaler, messages []openai.ChatCompletionMessage, out interface{}) error {
	if !a.enabled {
		return ErrNotConfigured
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to call AI service: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("AI returned no choices")
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return fmt.Errorf("AI refused: %s", msg.Refusal)
	}
	if err := json.Unmarshal([]byte(msg.Content), out); err != nil {
		return fmt.Errorf("failed to parse AI response: %w", err)
	}
	return nil
}
