package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"insight/internal/cliconfig"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "显示本地配置",
	Long: `显示当前配置信息。

包括：
- 配置文件位置
- 服务器地址
- 最近一次使用的对话`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "检查服务端状态",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(statusCmd, healthCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	fmt.Printf("配置文件: %s\n", cliconfig.Path())
	fmt.Printf("服务器:   %s\n", cliconfig.GetServerURL())
	if last := cliconfig.GetLastConversation(); last != "" {
		fmt.Printf("最近对话: %s\n", last)
	} else {
		fmt.Println("最近对话: 无")
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	status, err := newClient().Health(cmd.Context())
	if status != nil && status.Status != "" {
		fmt.Printf("状态:   %s\n", status.Status)
		fmt.Printf("数据库: %s\n", status.Database)
		fmt.Printf("Redis:  %s\n", status.Redis)
	}
	return err
}
