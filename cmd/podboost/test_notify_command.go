package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podboost/internal/ipc"
	"podboost/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test Telegram notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			if client, dialErr := ipc.Dial(cfg.SocketPath()); dialErr == nil {
				defer client.Close()
				resp, err := client.TestNotification()
				if err != nil {
					if resp != nil && resp.Message != "" {
						fmt.Fprintln(stdout, resp.Message)
					}
					return err
				}
				if resp == nil {
					return errors.New("missing notification response")
				}
				switch {
				case resp.Message != "":
					fmt.Fprintln(stdout, resp.Message)
				case resp.Sent:
					fmt.Fprintln(stdout, "Test notification sent")
				default:
					fmt.Fprintln(stdout, "Notification not sent")
				}
				return nil
			}

			// No daemon; send directly from this process.
			if !cfg.Telegram.Enabled || strings.TrimSpace(cfg.Telegram.BotToken) == "" {
				fmt.Fprintln(stdout, "Telegram is not configured; nothing to send")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Test notification sent")
			return nil
		},
	}
}
