package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podboost/internal/episodes"
	"podboost/internal/feed"
	"podboost/internal/logging"
	"podboost/internal/video"
)

// videoOutcome summarizes one episode build for the batch report.
type videoOutcome struct {
	Episode int    `json:"episode"`
	Title   string `json:"title,omitempty"`
	Video   string `json:"video,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	DryRun  bool   `json:"dryRun,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newVideoCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var force bool
	var continueOnError bool
	var retryCount int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "video <episodes>",
		Short: "Build waveform videos for one or more episodes",
		Long: `Video downloads episode audio from the feed and renders a waveform video
with ffmpeg. Episodes are given as a number, a comma list, or a range:

  podboost video 42
  podboost video 40,41,45
  podboost video 40-45`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			numbers, err := episodes.ParseRange(args[0])
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:            ctx.logLevel(cfg),
				Format:           cfg.Logging.Format,
				OutputPaths:      []string{"stderr"},
				ErrorOutputPaths: []string{"stderr"},
			})
			if err != nil {
				return err
			}

			builder := video.NewBuilder(cfg, feed.NewReader(cfg), logger)

			stdout := cmd.OutOrStdout()
			progressTTY := shouldColorize(stdout) && !ctx.jsonOutput()

			outcomes := make([]videoOutcome, 0, len(numbers))
			failed := 0
			for _, number := range numbers {
				opts := video.Options{
					Force:   force,
					DryRun:  dryRun,
					Timeout: timeout,
					Retries: retryCount,
				}
				if progressTTY {
					opts.OnProgress = progressPrinter(stdout, number)
				}

				result, buildErr := builder.Build(cmd.Context(), number, opts)
				outcome := videoOutcome{
					Episode: number,
					Title:   result.Title,
					Video:   result.VideoPath,
					Skipped: result.Skipped,
					DryRun:  dryRun && !result.Skipped,
					Seconds: int(result.Duration / time.Second),
				}
				if buildErr != nil {
					failed++
					outcome.Error = buildErr.Error()
					outcomes = append(outcomes, outcome)
					if !ctx.jsonOutput() {
						fmt.Fprintf(stdout, "Episode %d: failed: %v\n", number, buildErr)
					}
					if !continueOnError {
						if ctx.jsonOutput() {
							if err := writeJSON(cmd, outcomes); err != nil {
								return err
							}
						}
						return fmt.Errorf("video build halted at episode %d: %w", number, buildErr)
					}
					continue
				}

				outcomes = append(outcomes, outcome)
				if ctx.jsonOutput() {
					continue
				}
				switch {
				case result.Skipped:
					fmt.Fprintf(stdout, "Episode %d: output exists, skipped (%s)\n", number, result.VideoPath)
				case dryRun:
					fmt.Fprintf(stdout, "Episode %d: dry run, would write %s\n", number, result.VideoPath)
				default:
					fmt.Fprintf(stdout, "Episode %d: wrote %s in %s\n",
						number, result.VideoPath, result.Duration.Round(time.Second))
				}
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, outcomes); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d episodes failed", failed, len(numbers))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the plan without downloading or encoding")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the output file already exists")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep building remaining episodes after a failure")
	cmd.Flags().IntVar(&retryCount, "retry-count", 0, "Override the download retry attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the encode timeout (e.g. 20m)")
	return cmd
}

// progressPrinter rewrites a single terminal line with encoder progress and
// clears it on the final report.
func progressPrinter(stdout io.Writer, number int) func(video.Progress) {
	var lastWidth int
	return func(p video.Progress) {
		if p.Done {
			if lastWidth > 0 {
				fmt.Fprintf(stdout, "\r%s\r", strings.Repeat(" ", lastWidth))
			}
			return
		}
		line := fmt.Sprintf("Episode %d: encoding %s", number, p.OutTime.Round(time.Second))
		if p.Speed != "" {
			line += fmt.Sprintf(" (%s)", p.Speed)
		}
		padding := ""
		if width := len(line); width < lastWidth {
			padding = strings.Repeat(" ", lastWidth-width)
		} else {
			lastWidth = width
		}
		fmt.Fprintf(stdout, "\r%s%s", line, padding)
	}
}
