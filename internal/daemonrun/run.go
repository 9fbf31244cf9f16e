// Package daemonrun boots the podboost daemon process: logging, the episode
// store, the donation monitor, and the IPC socket, wired for signal-driven
// shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"podboost/internal/config"
	"podboost/internal/daemon"
	"podboost/internal/episodes"
	"podboost/internal/ipc"
	"podboost/internal/logging"
	"podboost/internal/monitor"
	"podboost/internal/services/podhome"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	Diagnostic bool
}

// Run starts the podboost daemon runtime loop and blocks until a signal or
// the parent context ends it.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("podboost-%s.log", runID))

	level := opts.LogLevel
	if opts.Diagnostic {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Diagnostic,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if opts.Diagnostic {
		logger.Info("diagnostic mode enabled",
			logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
			logging.String("log_path", logPath))
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update podboost.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "podboost-*.log", Exclude: []string{logPath}},
	)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := episodes.Open(cfg)
	if err != nil {
		logger.Error("open episode store", logging.Error(err))
		return err
	}
	defer store.Close()

	host := podhome.NewClient(cfg.PodHome.BaseURL, cfg.PodHome.APIKey, cfg.PodHomeTimeout())
	mon, err := monitor.NewFromConfig(cfg, store, host, logger)
	if err != nil {
		return fmt.Errorf("create monitor: %w", err)
	}

	d, err := daemon.New(cfg, store, logger, mon, host)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	d.RunPreflight(signalCtx)

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and episode database access"),
			logging.String(logging.FieldImpact, "donation checks are not running"),
		)
	}

	<-signalCtx.Done()
	logger.Info("podboost daemon shutting down")
	return nil
}

// ensureCurrentLogPointer keeps LogDir/podboost.log pointing at the newest
// run's log file. Hard link is the fallback for filesystems without symlinks.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "podboost.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	ffmpeg := cfg.FFmpegBinary()
	browser := cfg.BrowserBinary()
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String(logging.FieldSource, cfg.Monitor.Source),
		logging.Bool("podhome_key_present", strings.TrimSpace(cfg.PodHome.APIKey) != ""),
		logging.Bool("campaign_url_present", strings.TrimSpace(cfg.Monitor.CampaignURL) != ""),
		logging.Bool("browser_enabled", cfg.Monitor.BrowserEnabled),
		logging.Bool("browser_available", binaryAvailable(browser)),
		logging.String("browser_binary", browser),
		logging.Bool("ffmpeg_available", binaryAvailable(ffmpeg)),
		logging.String("ffmpeg_binary", ffmpeg),
		logging.Bool("telegram_enabled", cfg.Telegram.Enabled),
		logging.Bool("backend_enabled", cfg.Backend.Enabled),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
