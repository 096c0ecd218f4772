// insight 命令行客户端
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"insight/internal/client"
	"insight/internal/cliconfig"
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Insight - 围绕一个链接和 AI 深入讨论",
	Long: `Insight CLI 客户端

把一篇文章、一个视频或一期播客交给 AI 分析，然后围绕它继续对话。

  insight analyze <url> <想法>   开始新的对话
  insight say <消息>             在最近的对话中继续
  insight watch                  实时查看对话事件`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局参数
	rootCmd.PersistentFlags().StringP("server", "s", "", "服务器地址 (默认: "+cliconfig.DefaultServerURL+")")
}

func initConfig() {
	if err := cliconfig.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化配置失败: %v\n", err)
		os.Exit(1)
	}

	// 如果指定了服务器地址，覆盖配置
	if server, _ := rootCmd.PersistentFlags().GetString("server"); server != "" {
		cliconfig.SetServerURL(server)
	}
}

func newClient() *client.Client {
	return client.NewClient(cliconfig.GetServerURL())
}

// conversationArg 取参数中的对话 ID，没有时使用最近一次的对话
func conversationArg(args []string) (uuid.UUID, error) {
	raw := cliconfig.GetLastConversation()
	if len(args) > 0 {
		raw = args[0]
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("没有指定对话，请先运行 'insight analyze'")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("无效的对话ID: %s", raw)
	}
	return id, nil
}

// remember 记录最近使用的对话，失败只提示
func remember(id uuid.UUID) {
	if err := cliconfig.SaveLastConversation(id.String()); err != nil {
		fmt.Fprintf(os.Stderr, "保存最近对话失败: %v\n", err)
	}
}
