package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"insight/internal/client"
)

var watchCmd = &cobra.Command{
	Use:   "watch [对话ID]",
	Short: "实时查看对话事件",
	Long: `通过 WebSocket 订阅对话，打印新消息和分享等事件。

按 Ctrl+C 退出。`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	id, err := conversationArg(args)
	if err != nil {
		return err
	}

	return newClient().Watch(cmd.Context(), id, func(m *client.StreamMessage) {
		switch m.Type {
		case client.TypeConnected:
			fmt.Printf("✓ 已订阅对话 %s，按 Ctrl+C 退出\n", id)
		case client.TypePong:
		case client.TypeError:
			fmt.Printf("✗ %s\n", m.Payload)
		default:
			event, ok := m.Event()
			if !ok {
				return
			}
			fmt.Printf("[%s] %s %s\n", event.OccurredAt.Local().Format(time.TimeOnly), event.Type, event.ID)
		}
	})
}
