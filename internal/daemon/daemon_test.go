package daemon_test

import (
	"context"
	"testing"
	"time"

	"podboost/internal/api"
	"podboost/internal/daemon"
	"podboost/internal/episodes"
	"podboost/internal/logging"
	"podboost/internal/monitor"
	"podboost/internal/services"
	"podboost/internal/snapshot"
	"podboost/internal/testsupport"
)

type stubHost struct {
	episodes []api.Episode
}

func (s *stubHost) Episodes(context.Context) ([]api.Episode, error) {
	return append([]api.Episode(nil), s.episodes...), nil
}

func (s *stubHost) NextScheduled(context.Context) (api.Episode, error) {
	if len(s.episodes) == 0 {
		return api.Episode{}, services.Wrap(services.ErrNotFound, "podhome", "next scheduled", "no planned episodes", nil)
	}
	return s.episodes[0], nil
}

func (s *stubHost) Reschedule(context.Context, string, time.Time) error { return nil }
func (s *stubHost) PublishNow(context.Context, string) error            { return nil }

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, string) (string, error) {
	return "<html><body>Funding goal: 210,000 sats - raised 1,000 sats</body></html>", nil
}

func newDaemon(t *testing.T) (*daemon.Daemon, *episodes.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store, err := episodes.Open(cfg)
	if err != nil {
		t.Fatalf("episodes.Open: %v", err)
	}
	snaps, err := snapshot.NewStore(cfg.SnapshotDir())
	if err != nil {
		t.Fatalf("snapshot.NewStore: %v", err)
	}
	host := &stubHost{episodes: []api.Episode{{
		EpisodeID:   "ep-7",
		EpisodeNr:   7,
		Title:       "Folge 7",
		Status:      api.EpisodeStatusScheduled,
		PublishDate: "2026-05-01T22:00:00Z",
	}}}
	mon, err := monitor.New(cfg, monitor.Dependencies{
		Fetcher:   stubFetcher{},
		Snapshots: snaps,
		Episodes:  store,
		Host:      host,
		Logger:    logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("monitor.New: %v", err)
	}
	d, err := daemon.New(cfg, store, logging.NewNop(), mon, host)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected a PID, got %d", status.PID)
	}
	if status.DatabasePath == "" || status.LockFilePath == "" {
		t.Fatalf("expected paths in status, got %+v", status)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency statuses")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonSyncEpisodes(t *testing.T) {
	d, store := newDaemon(t)
	ctx := context.Background()

	result, err := d.SyncEpisodes(ctx)
	if err != nil {
		t.Fatalf("SyncEpisodes: %v", err)
	}
	if result.Fetched != 1 || result.Inserted != 1 {
		t.Fatalf("unexpected sync result: %+v", result)
	}

	ep, err := store.GetByNumber(ctx, 7)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if ep.EpisodeID != "ep-7" {
		t.Fatalf("unexpected episode: %+v", ep)
	}

	stats, err := d.EpisodeStats(ctx)
	if err != nil {
		t.Fatalf("EpisodeStats: %v", err)
	}
	if stats["scheduled"] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestDaemonCheckNowReturnsOutcome(t *testing.T) {
	d, _ := newDaemon(t)

	// First check only records the baseline snapshot.
	outcome := d.CheckNow(context.Background())
	if outcome.Error != "" {
		t.Fatalf("unexpected check error: %s", outcome.Error)
	}
	if outcome.Action != api.ActionNone {
		t.Fatalf("expected no action on baseline check, got %q", outcome.Action)
	}
	if outcome.CheckID == "" {
		t.Fatal("expected a check id")
	}
}

func TestDaemonTestNotificationUnconfigured(t *testing.T) {
	d, _ := newDaemon(t)

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if sent {
		t.Fatal("expected notification to be skipped without telegram config")
	}
	if message == "" {
		t.Fatal("expected a skip reason")
	}
}

func TestDaemonDatabaseHealth(t *testing.T) {
	d, _ := newDaemon(t)

	health, err := d.DatabaseHealth(context.Background())
	if err != nil {
		t.Fatalf("DatabaseHealth: %v", err)
	}
	if !health.DatabaseExists || !health.TableExists {
		t.Fatalf("unexpected health: %+v", health)
	}
}
