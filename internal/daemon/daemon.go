package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/episodes"
	"podboost/internal/logging"
	"podboost/internal/monitor"
	"podboost/internal/notifications"
	"podboost/internal/preflight"
	"podboost/internal/services/podhome"
)

// Daemon coordinates the donation monitor and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *episodes.Store
	monitor *monitor.Monitor
	host    podhome.Service
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *episodes.Store, logger *slog.Logger, mon *monitor.Monitor, host podhome.Service) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || mon == nil || host == nil {
		return nil, errors.New("daemon requires config, store, logger, monitor, and host client")
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		monitor:  mon,
		host:     host,
		logPath:  filepath.Join(cfg.Paths.LogDir, "podboost.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start launches the monitor loop and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another podboost daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.monitor.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start monitor: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("podboost daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the monitor loop and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.monitor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("podboost daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// CheckNow runs one donation check outside the monitor's timer. The outcome
// carries any check error so IPC callers get the partial result alongside it.
func (d *Daemon) CheckNow(ctx context.Context) api.CheckOutcome {
	result, err := d.monitor.CheckNow(ctx)
	return result.Outcome(err)
}

// Episodes returns stored episodes filtered by optional status codes.
func (d *Daemon) Episodes(ctx context.Context, statuses []int) ([]api.Episode, error) {
	if d.store == nil {
		return nil, errors.New("episode store unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// EpisodeByNumber returns a single stored episode.
func (d *Daemon) EpisodeByNumber(ctx context.Context, number int) (*api.Episode, error) {
	if d.store == nil {
		return nil, errors.New("episode store unavailable")
	}
	return d.store.GetByNumber(ctx, number)
}

// SyncEpisodes refreshes the local episode cache from the host.
func (d *Daemon) SyncEpisodes(ctx context.Context) (episodes.SyncResult, error) {
	if d.store == nil {
		return episodes.SyncResult{}, errors.New("episode store unavailable")
	}
	result, err := d.store.Sync(ctx, d.host)
	if err != nil {
		return result, err
	}
	d.logger.Info("episodes synced",
		logging.Int("fetched", result.Fetched),
		logging.Int("inserted", result.Inserted),
		logging.Int("updated", result.Updated))
	return result, nil
}

// EpisodeStats returns episode counts keyed by status name.
func (d *Daemon) EpisodeStats(ctx context.Context) (map[string]int, error) {
	if d.store == nil {
		return nil, errors.New("episode store unavailable")
	}
	return d.store.Stats(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (episodes.DatabaseHealth, error) {
	if d.store == nil {
		return episodes.DatabaseHealth{}, errors.New("episode store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if !d.cfg.Telegram.Enabled || strings.TrimSpace(d.cfg.Telegram.BotToken) == "" {
		return false, "telegram not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Dependencies reports the availability of the external binaries.
func (d *Daemon) Dependencies() []api.DependencyStatus {
	statuses := preflight.CheckSystemDeps(d.cfg)
	out := make([]api.DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, api.DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

// RunPreflight executes the readiness checks and logs failures. A failing
// Telegram token should not stop donation monitoring, so failures warn
// instead of aborting startup.
func (d *Daemon) RunPreflight(ctx context.Context) []preflight.Result {
	results := preflight.RunAll(ctx, d.cfg)
	for _, result := range results {
		if result.Passed {
			d.logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "related features may misbehave until fixed"))
	}
	return results
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	return api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		Monitor:      d.monitor.Status(),
		Dependencies: d.Dependencies(),
	}
}
