package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"podboost/internal/config"
	"podboost/internal/ipc"
	"podboost/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			initialLimit := lines
			if initialLimit < 0 {
				initialLimit = 0
			}
			initialOffset := int64(-1)
			if initialLimit == 0 {
				initialOffset = 0
			}

			client, dialErr := ipc.Dial(cfg.SocketPath())
			if dialErr != nil {
				// No daemon; read the current log file directly.
				return tailLogFile(cmd, cfg, initialOffset, initialLimit, follow)
			}
			defer client.Close()

			cmdCtx := cmd.Context()
			offset := initialOffset
			limit := initialLimit
			printed := false

			for {
				req := ipc.LogTailRequest{
					Offset:     offset,
					Limit:      limit,
					Follow:     follow,
					WaitMillis: 1000,
				}
				resp, err := client.LogTail(req)
				if err != nil {
					return fmt.Errorf("tail logs: %w", err)
				}
				if resp == nil {
					return errors.New("log tail response missing")
				}
				for _, line := range resp.Lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
					printed = true
				}
				offset = resp.Offset
				limit = 0
				if !follow {
					if !printed {
						fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					}
					return nil
				}
				select {
				case <-cmdCtx.Done():
					return nil
				default:
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}

// tailLogFile reads the pointer file the daemon keeps at LogDir/podboost.log.
// It serves `podboost logs` when no daemon is listening.
func tailLogFile(cmd *cobra.Command, cfg *config.Config, offset int64, limit int, follow bool) error {
	logPath := filepath.Join(cfg.Paths.LogDir, "podboost.log")
	printed := false

	for {
		result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{
			Offset: offset,
			Limit:  limit,
			Follow: follow,
			Wait:   time.Second,
		})
		if err != nil {
			return err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
			printed = true
		}
		offset = result.Offset
		limit = 0
		if !follow {
			if !printed {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
			}
			return nil
		}
		select {
		case <-cmd.Context().Done():
			return nil
		default:
		}
	}
}
