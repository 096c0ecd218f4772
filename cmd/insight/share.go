package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"insight/internal/cliconfig"
	"insight/internal/service"
)

var shareCmd = &cobra.Command{
	Use:   "share [对话ID]",
	Short: "生成对话的分享链接",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShare,
}

var unshareCmd = &cobra.Command{
	Use:   "unshare <分享链接或Token>",
	Short: "撤销分享链接",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnshare,
}

func init() {
	rootCmd.AddCommand(shareCmd, unshareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
	id, err := conversationArg(args)
	if err != nil {
		return err
	}
	resp, err := newClient().Share(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("✓ 分享链接: %s%s\n", cliconfig.GetServerURL(), resp.ShareURL)
	fmt.Printf("  有效期至: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runUnshare(cmd *cobra.Command, args []string) error {
	token := args[0]
	if i := strings.LastIndex(token, service.SharePathPrefix); i >= 0 {
		token = token[i+len(service.SharePathPrefix):]
	}
	if err := newClient().RevokeShare(cmd.Context(), token); err != nil {
		return err
	}
	fmt.Println("✓ 分享链接已撤销")
	return nil
}
