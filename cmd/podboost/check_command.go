package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/episodes"
	"podboost/internal/ipc"
	"podboost/internal/logging"
	"podboost/internal/monitor"
)

type checkOverrides struct {
	dryRun     bool
	noBrowser  bool
	debug      bool
	retryCount int
	timeout    time.Duration
}

func (o checkOverrides) any() bool {
	return o.dryRun || o.noBrowser || o.debug || o.retryCount > 0 || o.timeout > 0
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var overrides checkOverrides

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one donation check immediately",
		Long: `Check fetches the donation source once and applies any publish-time boost.

Without flags the check is delegated to the running daemon so it shares the
monitor's snapshot state. Override flags run the check in this process
instead, leaving the daemon's state untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !overrides.any() {
				if client, dialErr := ipc.Dial(cfg.SocketPath()); dialErr == nil {
					defer client.Close()
					outcome, err := client.CheckNow()
					if err != nil {
						return err
					}
					if err := printCheckOutcome(cmd, ctx, *outcome); err != nil {
						return err
					}
					if outcome.Error != "" {
						return errors.New(outcome.Error)
					}
					return nil
				}
			}

			return runStandaloneCheck(cmd, ctx, cfg, overrides)
		},
	}

	cmd.Flags().BoolVar(&overrides.dryRun, "dry-run", false, "Log planned host calls without performing them")
	cmd.Flags().BoolVar(&overrides.noBrowser, "no-browser", false, "Skip the headless browser fetch for this check")
	cmd.Flags().BoolVar(&overrides.debug, "debug", false, "Verbose logging for this check")
	cmd.Flags().IntVar(&overrides.retryCount, "retry-count", 0, "Override the fetch retry attempts")
	cmd.Flags().DurationVar(&overrides.timeout, "timeout", 0, "Override the fetch timeout (e.g. 30s)")
	return cmd
}

// runStandaloneCheck performs a one-shot check in this process against a
// copy of the configuration with the CLI overrides applied.
func runStandaloneCheck(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, overrides checkOverrides) error {
	runCfg := *cfg
	if overrides.noBrowser {
		runCfg.Monitor.BrowserEnabled = false
	}
	if overrides.retryCount > 0 {
		runCfg.Monitor.FetchRetries = overrides.retryCount
	}
	if overrides.timeout > 0 {
		seconds := int(overrides.timeout / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		runCfg.Monitor.FetchTimeout = seconds
	}

	level := ctx.logLevel(&runCfg)
	if overrides.debug {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           runCfg.Logging.Format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	store, err := episodes.Open(&runCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	mon, err := monitor.NewFromConfig(&runCfg, store, nil, logger, monitor.WithDryRun(overrides.dryRun))
	if err != nil {
		return err
	}

	result, checkErr := mon.CheckNow(cmd.Context())
	if err := printCheckOutcome(cmd, ctx, result.Outcome(checkErr)); err != nil {
		return err
	}
	return checkErr
}

func printCheckOutcome(cmd *cobra.Command, ctx *commandContext, outcome api.CheckOutcome) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, outcome)
	}

	stdout := cmd.OutOrStdout()
	switch outcome.Action {
	case api.ActionPublished:
		fmt.Fprintf(stdout, "Episode %d published immediately (funding goal reached)\n", outcome.EpisodeNr)
	case api.ActionRescheduled:
		if outcome.GoalReached {
			fmt.Fprintf(stdout, "Episode %d rescheduled to %s (funding goal reached)\n", outcome.EpisodeNr, outcome.PublishDate)
		} else {
			fmt.Fprintf(stdout, "Episode %d rescheduled to %s\n", outcome.EpisodeNr, outcome.PublishDate)
		}
	default:
		if outcome.Changed {
			fmt.Fprintln(stdout, "Donation change detected, no boost applied")
		} else {
			fmt.Fprintln(stdout, "No donation change detected")
		}
	}
	if outcome.Donations > 0 {
		fmt.Fprintf(stdout, "Donations: %s sats\n", humanize.Comma(outcome.Donations))
	}
	if outcome.Summary != "" {
		fmt.Fprintf(stdout, "Summary: %s\n", outcome.Summary)
	}
	if outcome.Degraded {
		fmt.Fprintln(stdout, "Monitor degraded: rendered fetches are disabled")
	}
	return nil
}
