package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"insight/internal/model"
	"insight/internal/service"
	"insight/pkg/util"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "管理 Webhook",
}

var webhookAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "登记 Webhook",
	Long: fmt.Sprintf(`登记一个接收事件的地址。

可订阅的事件: %s
密钥只在登记时显示一次。`, strings.Join(model.EventTypes, ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runWebhookAdd,
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出 Webhook",
	Args:  cobra.NoArgs,
	RunE:  runWebhookList,
}

func init() {
	webhookAddCmd.Flags().StringSliceP("event", "e", nil, "订阅的事件，可重复指定")
	webhookAddCmd.Flags().String("secret", "", "共享密钥（默认自动生成）")
	webhookAddCmd.MarkFlagRequired("event")

	webhookCmd.AddCommand(webhookAddCmd, webhookListCmd)
	rootCmd.AddCommand(webhookCmd)
}

func runWebhookAdd(cmd *cobra.Command, args []string) error {
	events, _ := cmd.Flags().GetStringSlice("event")
	secret, _ := cmd.Flags().GetString("secret")

	hook, err := newClient().CreateWebhook(cmd.Context(), &service.CreateWebhookRequest{
		URL:    args[0],
		Events: events,
		Secret: secret,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Webhook 已登记: %s\n", hook.ID)
	fmt.Printf("  事件: %s\n", strings.Join(hook.Events, ", "))
	fmt.Printf("  密钥: %s\n", hook.Secret)
	return nil
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	hooks, err := newClient().ListWebhooks(cmd.Context())
	if err != nil {
		return err
	}
	if len(hooks) == 0 {
		fmt.Println("还没有登记任何 Webhook")
		return nil
	}
	for _, h := range hooks {
		fmt.Printf("%s  %-48s  [%s]\n", h.ID, util.TruncateString(h.URL, 48), strings.Join(h.Events, ", "))
	}
	return nil
}
