package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/daemonctl"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var startDiagnostic bool
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the podboost daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx, startDiagnostic),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}
	startCmd.Flags().BoolVar(&startDiagnostic, "diagnostic", false, "Enable diagnostic mode with DEBUG logging")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the podboost daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			} else {
				fmt.Fprintln(stdout, "Stopping donation monitor...")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, monitor, and episode status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, statusResp)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range statusResp.SystemChecks {
				fmt.Fprintln(stdout, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			if statusResp.Running {
				for _, line := range renderSectionHeader("Monitor", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range monitorLines(statusResp.Monitor, cfg, colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout)
			}

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(statusResp.Dependencies, statusResp.DependencySummary, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range statusResp.PathChecks {
				fmt.Fprintln(stdout, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
			}

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Episodes", colorize) {
				fmt.Fprintln(stdout, line)
			}

			rows := buildEpisodeStatsRows(statusResp.EpisodeStats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No episodes cached (run `podboost episodes sync`)")
				return nil
			}

			table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprintln(stdout, table)
			return nil
		},
	}

	var restartDiagnostic bool
	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the podboost daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx, restartDiagnostic),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Start.Message) != "" {
					fmt.Fprintln(stdout, result.Start.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}
	restartCmd.Flags().BoolVar(&restartDiagnostic, "diagnostic", false, "Enable diagnostic mode with DEBUG logging")

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func dependencyLines(deps []api.DependencyStatus, summary api.DependencySummary, colorize bool) []string {
	lines := make([]string, 0, len(deps)+1)
	lines = append(lines, renderStatusLine("Summary", statusKindFromSeverity(summary.Severity), summary.Detail, colorize))
	missing := make([]string, 0)
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusKindFromSeverity(dep.Severity)
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

// monitorLines renders the live monitor counters reported by the daemon.
func monitorLines(mon api.MonitorStatus, cfg *config.Config, colorize bool) []string {
	lines := make([]string, 0, 8)

	source := mon.Source
	if source == "" {
		source = "campaign"
	}
	lines = append(lines, renderStatusLine("Source", statusInfo, source, colorize))
	lines = append(lines, renderStatusLine("Checks run", statusInfo, humanize.Comma(mon.CheckCount), colorize))

	if mon.LastCheckAt != "" {
		lines = append(lines, renderStatusLine("Last check", statusInfo, formatStatusTime(mon.LastCheckAt, cfg), colorize))
	}
	if mon.LastChangeAt != "" {
		lines = append(lines, renderStatusLine("Last change", statusInfo, formatStatusTime(mon.LastChangeAt, cfg), colorize))
	}
	if mon.LastDonations > 0 {
		lines = append(lines, renderStatusLine("Donations", statusInfo, humanize.Comma(mon.LastDonations)+" sats", colorize))
	}
	if mon.LastPublishTime != "" {
		lines = append(lines, renderStatusLine("Next publish", statusInfo, mon.LastPublishTime, colorize))
	}
	if mon.GoalReached {
		lines = append(lines, renderStatusLine("Goal", statusOK, "Reached", colorize))
	} else {
		lines = append(lines, renderStatusLine("Goal", statusInfo, "In progress", colorize))
	}
	if mon.BrowserFailures > 0 {
		lines = append(lines, renderStatusLine("Browser failures", statusWarn, fmt.Sprintf("%d", mon.BrowserFailures), colorize))
	}
	if mon.LastError != "" {
		lines = append(lines, renderStatusLine("Last error", statusWarn, mon.LastError, colorize))
	}
	return lines
}

// formatStatusTime rewrites an RFC 3339 timestamp into the configured display
// timezone. Values that fail to parse pass through untouched.
func formatStatusTime(value string, cfg *config.Config) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	loc := time.Local
	if cfg != nil {
		loc = cfg.DisplayLocation()
	}
	return parsed.In(loc).Format("2006-01-02 15:04:05 MST")
}

// buildEpisodeStatsRows orders the status counts with the lifecycle statuses
// first and any unexpected keys after them.
func buildEpisodeStatsRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}

	canonical := []string{
		api.StatusName(api.EpisodeStatusDraft),
		api.StatusName(api.EpisodeStatusScheduled),
		api.StatusName(api.EpisodeStatusPublished),
	}
	seen := make(map[string]bool, len(canonical))
	rows := make([][]string, 0, len(stats))
	for _, name := range canonical {
		seen[name] = true
		if count, ok := stats[name]; ok {
			rows = append(rows, []string{name, humanize.Comma(int64(count))})
		}
	}

	extra := make([]string, 0)
	for name := range stats {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		rows = append(rows, []string{name, humanize.Comma(int64(stats[name]))})
	}
	return rows
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext, diagnostic bool) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{Diagnostic: diagnostic}
	if ctx.configFlag != nil {
		if path := strings.TrimSpace(*ctx.configFlag); path != "" {
			opts.ConfigPath = path
		}
	}
	if ctx.logLevelFlag != nil {
		if level := strings.TrimSpace(*ctx.logLevelFlag); level != "" {
			opts.LogLevel = level
		}
	}
	return opts
}
