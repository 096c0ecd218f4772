package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"insight/internal/model"
	"insight/pkg/util"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url> <想法>",
	Short: "分析链接并开始对话",
	Long: `读取链接内容，结合你的初始想法交给 AI 分析。

新对话会成为之后 say / show / share / watch 的默认对话。`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

var showCmd = &cobra.Command{
	Use:   "show [对话ID]",
	Short: "显示对话内容",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

var sayCmd = &cobra.Command{
	Use:   "say <消息>",
	Short: "在对话中继续发言",
	Long: `在最近的对话（或 --conversation 指定的对话）中追加一轮。

可以用 --url 附带一个新链接，AI 会把它的内容一起纳入讨论。`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSay,
}

func init() {
	sayCmd.Flags().String("url", "", "附带的新链接")
	sayCmd.Flags().StringP("conversation", "c", "", "对话ID（默认最近一次）")

	rootCmd.AddCommand(analyzeCmd, showCmd, sayCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	link := args[0]
	thought := strings.Join(args[1:], " ")

	fmt.Println("⏳ 正在读取并分析，可能需要一分钟...")
	id, err := newClient().Analyze(cmd.Context(), link, thought)
	if err != nil {
		return err
	}
	remember(id)

	detail, err := newClient().GetConversation(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("✓ 对话已创建: %s\n\n", id)
	// 第一条是自己的初始想法，不再重复显示
	if len(detail.Messages) > 1 {
		printMessages(detail.Messages[1:])
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := conversationArg(args)
	if err != nil {
		return err
	}
	detail, err := newClient().GetConversation(cmd.Context(), id)
	if err != nil {
		return err
	}

	conv := detail.Conversation
	fmt.Printf("对话: %s\n", conv.ID)
	fmt.Printf("链接: %s (%s)\n", conv.URL, conv.MediaType)
	fmt.Printf("创建: %s\n", conv.CreatedAt.Local().Format("2006-01-02 15:04"))
	if insight := util.StringValue(conv.UserInsight); insight != "" {
		fmt.Printf("想法: %s\n", insight)
	}
	if wm := conv.WorldModel.Data(); wm.Summary != "" {
		fmt.Printf("摘要: %s\n", wm.Summary)
	}
	fmt.Println()
	printMessages(detail.Messages)
	return nil
}

func runSay(cmd *cobra.Command, args []string) error {
	var idArgs []string
	if c, _ := cmd.Flags().GetString("conversation"); c != "" {
		idArgs = []string{c}
	}
	id, err := conversationArg(idArgs)
	if err != nil {
		return err
	}
	link, _ := cmd.Flags().GetString("url")

	messages, err := newClient().AddMessage(cmd.Context(), id, strings.Join(args, " "), link)
	if err != nil {
		return err
	}
	remember(id)

	for _, m := range messages {
		if m.Role == model.MessageRoleAssistant {
			printMessages([]model.Message{m})
		}
	}
	return nil
}

func printMessages(messages []model.Message) {
	for _, m := range messages {
		label := "你"
		if m.Role == model.MessageRoleAssistant {
			label = "AI"
		}
		fmt.Printf("── %s · %s\n%s\n\n", label, m.Timestamp.Local().Format("15:04"), m.Content)
	}
}
