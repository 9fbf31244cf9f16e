package ipc_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"podboost/internal/api"
	"podboost/internal/daemon"
	"podboost/internal/episodes"
	"podboost/internal/ipc"
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
	for _, ep := range s.episodes {
		if ep.Scheduled() {
			return ep, nil
		}
	}
	return api.Episode{}, services.Wrap(services.ErrNotFound, "podhome", "next scheduled", "no planned episodes", nil)
}

func (s *stubHost) Reschedule(context.Context, string, time.Time) error { return nil }
func (s *stubHost) PublishNow(context.Context, string) error            { return nil }

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, string) (string, error) {
	return "<html><body>Funding goal: 210,000 sats - raised 5,000 sats</body></html>", nil
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := episodes.Open(cfg)
	if err != nil {
		t.Fatalf("episodes.Open: %v", err)
	}
	snaps, err := snapshot.NewStore(cfg.SnapshotDir())
	if err != nil {
		t.Fatalf("snapshot.NewStore: %v", err)
	}
	host := &stubHost{episodes: []api.Episode{
		{EpisodeID: "ep-6", EpisodeNr: 6, Title: "Folge 6", Status: api.EpisodeStatusPublished, PublishDate: "2026-01-13T22:00:00Z"},
		{EpisodeID: "ep-7", EpisodeNr: 7, Title: "Folge 7", Status: api.EpisodeStatusScheduled, PublishDate: "2026-05-01T22:00:00Z"},
	}}
	logger := logging.NewNop()
	mon, err := monitor.New(cfg, monitor.Dependencies{
		Fetcher:   stubFetcher{},
		Snapshots: snaps,
		Episodes:  store,
		Host:      host,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("monitor.New: %v", err)
	}
	d, err := daemon.New(cfg, store, logger, mon, host)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})
	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected PID in status, got %d", status.PID)
	}

	syncResp, err := client.EpisodeSync()
	if err != nil {
		t.Fatalf("EpisodeSync failed: %v", err)
	}
	if syncResp.Fetched != 2 || syncResp.Inserted != 2 {
		t.Fatalf("unexpected sync response: %+v", syncResp)
	}

	listResp, err := client.EpisodeList(nil)
	if err != nil {
		t.Fatalf("EpisodeList failed: %v", err)
	}
	if len(listResp.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(listResp.Episodes))
	}

	scheduled, err := client.EpisodeList([]string{"scheduled"})
	if err != nil {
		t.Fatalf("EpisodeList scheduled failed: %v", err)
	}
	if len(scheduled.Episodes) != 1 || scheduled.Episodes[0].EpisodeNr != 7 {
		t.Fatalf("unexpected scheduled episodes: %+v", scheduled.Episodes)
	}
	if _, err := client.EpisodeList([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown status name")
	}

	showResp, err := client.EpisodeShow(7)
	if err != nil {
		t.Fatalf("EpisodeShow failed: %v", err)
	}
	if showResp.Episode.EpisodeID != "ep-7" {
		t.Fatalf("unexpected episode: %+v", showResp.Episode)
	}
	if _, err := client.EpisodeShow(999); err == nil {
		t.Fatal("expected error for missing episode")
	}

	checkResp, err := client.CheckNow()
	if err != nil {
		t.Fatalf("CheckNow failed: %v", err)
	}
	if checkResp.CheckID == "" {
		t.Fatal("expected a check id")
	}
	if checkResp.Action != api.ActionNone {
		t.Fatalf("expected no action on steady page, got %q", checkResp.Action)
	}

	statsResp, err := client.EpisodeStats()
	if err != nil {
		t.Fatalf("EpisodeStats failed: %v", err)
	}
	if statsResp.Counts["scheduled"] != 1 || statsResp.Counts["published"] != 1 {
		t.Fatalf("unexpected stats: %+v", statsResp.Counts)
	}

	health, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.TableExists {
		t.Fatalf("unexpected database health: %+v", health)
	}
	if health.TotalEpisodes != 2 {
		t.Fatalf("expected 2 episodes in health, got %d", health.TotalEpisodes)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Sent {
		t.Fatal("expected notification to be skipped without telegram config")
	}

	logPath := d.LogPath()
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail initial failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	followDone := make(chan struct{})
	go func(offset int64) {
		defer close(followDone)
		resp, err := client.LogTail(ipc.LogTailRequest{Offset: offset, Follow: true, WaitMillis: 2000})
		if err != nil {
			t.Errorf("LogTail follow error: %v", err)
			return
		}
		if len(resp.Lines) != 1 || resp.Lines[0] != "fourth" {
			t.Errorf("unexpected follow lines: %#v", resp.Lines)
		}
	}(logResp.Offset)

	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("fourth\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-followDone:
	case <-time.After(10 * time.Second):
		t.Fatal("log follow did not return")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected Stopped=true")
	}
	status, err = client.Status()
	if err != nil {
		t.Fatalf("Status after stop failed: %v", err)
	}
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
