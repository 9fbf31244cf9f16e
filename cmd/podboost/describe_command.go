package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podboost/internal/describe"
	"podboost/internal/feed"
	"podboost/internal/services"
)

func newDescribeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "describe <episode-nr>",
		Short: "Generate an upload description for an episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			number, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "describe episode",
					fmt.Sprintf("invalid episode number %q", args[0]), nil)
			}

			item, err := feed.NewReader(cfg).Episode(cmd.Context(), number)
			if err != nil {
				return err
			}

			text, err := describe.Generate(*item, describe.FromConfig(cfg))
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(text+"\n"), 0o644); err != nil {
					return fmt.Errorf("write description: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote description for episode %d to %s\n", number, outputPath)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the description to a file instead of stdout")
	return cmd
}
