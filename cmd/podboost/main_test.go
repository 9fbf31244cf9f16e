package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podboost/internal/api"
	"podboost/internal/services"
)

func TestCLIEpisodesWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.host.episodes = []api.Episode{
		{
			EpisodeID:   "ep-42",
			EpisodeNr:   42,
			Title:       "Signals from the Deep",
			Status:      api.EpisodeStatusScheduled,
			PublishDate: "2026-05-01T10:00:00Z",
		},
		{
			EpisodeID:   "ep-41",
			EpisodeNr:   41,
			Title:       "Harbor Lights",
			Status:      api.EpisodeStatusPublished,
			PublishDate: "2026-04-01T10:00:00Z",
		},
	}

	out, _, err := runCLI(t, []string{"episodes", "sync"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes sync: %v", err)
	}
	if !strings.Contains(out, "Synced 2 episodes (2 new, 0 updated)") {
		t.Fatalf("unexpected sync output: %q", out)
	}

	out, _, err = runCLI(t, []string{"episodes", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes list: %v", err)
	}
	if !strings.Contains(out, "Signals from the Deep") || !strings.Contains(out, "Harbor Lights") {
		t.Fatalf("episodes list missing rows: %q", out)
	}

	out, _, err = runCLI(t, []string{"episodes", "list", "--status", "scheduled"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes list --status: %v", err)
	}
	if !strings.Contains(out, "Signals from the Deep") || strings.Contains(out, "Harbor Lights") {
		t.Fatalf("status filter not applied: %q", out)
	}

	_, _, err = runCLI(t, []string{"episodes", "list", "--status", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown status filter")
	}
	if services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected usage exit code, got %d (%v)", services.ExitCode(err), err)
	}

	out, _, err = runCLI(t, []string{"episodes", "show", "42"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes show: %v", err)
	}
	if !strings.Contains(out, "Episode 42") || !strings.Contains(out, "Signals from the Deep") {
		t.Fatalf("episodes show missing detail: %q", out)
	}

	if _, _, err = runCLI(t, []string{"episodes", "show", "99"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown episode")
	}

	out, _, err = runCLI(t, []string{"--json", "episodes", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes list --json: %v", err)
	}
	var listResp api.EpisodeListResponse
	if err := json.Unmarshal([]byte(out), &listResp); err != nil {
		t.Fatalf("decode list JSON: %v (output %q)", err, out)
	}
	if len(listResp.Episodes) != 2 {
		t.Fatalf("expected 2 episodes in JSON, got %d", len(listResp.Episodes))
	}
}

func TestCLIStatusAgainstIdleDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"System Status", "Dependencies", "Paths", "Episodes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q: %q", want, out)
		}
	}
	// Socket answers but the monitor was never started.
	if !strings.Contains(out, "Not running") {
		t.Fatalf("expected stopped daemon state in output: %q", out)
	}
	if !strings.Contains(out, "No episodes cached") {
		t.Fatalf("expected empty episode table hint: %q", out)
	}

	out, _, err = runCLI(t, []string{"--json", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var snapshot api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("decode status JSON: %v (output %q)", err, out)
	}
	if snapshot.Running {
		t.Fatal("expected running=false for idle daemon")
	}
	if snapshot.DependencySummary.Total != len(snapshot.Dependencies) {
		t.Fatalf("dependency summary total %d != %d dependencies",
			snapshot.DependencySummary.Total, len(snapshot.Dependencies))
	}
	if len(snapshot.PathChecks) == 0 || len(snapshot.SystemChecks) == 0 {
		t.Fatal("expected decorated status snapshot")
	}
}

func TestCLITestNotifyReportsUnconfiguredTelegram(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "telegram not configured") {
		t.Fatalf("unexpected test-notify output: %q", out)
	}
}

func TestCLILogsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs", "-n", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "No log entries available") {
		t.Fatalf("unexpected logs output: %q", out)
	}
}

func TestCLIVideoAndDescribeFromFeed(t *testing.T) {
	env := setupCLITestEnv(t)

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeedXML)
	}))
	t.Cleanup(feedSrv.Close)

	env.cfg.Feed.URL = feedSrv.URL + "/feed.xml"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"video", "42", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("video --dry-run: %v", err)
	}
	if !strings.Contains(out, "Episode 42: dry run, would write") {
		t.Fatalf("unexpected video output: %q", out)
	}
	if !strings.Contains(out, env.cfg.Paths.VideoDir) {
		t.Fatalf("expected video path under %s: %q", env.cfg.Paths.VideoDir, out)
	}

	if _, _, err = runCLI(t, []string{"video", "nonsense"}, env.configPath); err == nil {
		t.Fatal("expected error for invalid episode range")
	}

	out, _, err = runCLI(t, []string{"describe", "42"}, env.configPath)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(out, "Show notes for the deep dive.") {
		t.Fatalf("describe output missing notes: %q", out)
	}

	target := filepath.Join(t.TempDir(), "notes.txt")
	out, _, err = runCLI(t, []string{"describe", "42", "--output", target}, env.configPath)
	if err != nil {
		t.Fatalf("describe --output: %v", err)
	}
	if !strings.Contains(out, "Wrote description for episode 42") {
		t.Fatalf("unexpected describe output: %q", out)
	}
	written, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read description file: %v", err)
	}
	if !strings.Contains(string(written), "Show notes for the deep dive.") {
		t.Fatalf("description file missing notes: %q", string(written))
	}
}

func TestCLIUnknownFlagMapsToUsageExit(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"episodes", "list", "--no-such-flag"}, env.configPath)
	if err == nil {
		t.Fatal("expected flag parse error")
	}
	if services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected usage exit code, got %d (%v)", services.ExitCode(err), err)
	}
}

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Show</title>
    <link>https://example.org/show</link>
    <description>Feed used by CLI tests</description>
    <item>
      <title>E42 - Signals from the Deep</title>
      <link>https://example.org/show/42</link>
      <description>Show notes for the deep dive.</description>
      <enclosure url="https://cdn.example.org/audio/42.mp3" type="audio/mpeg" length="1234"/>
    </item>
    <item>
      <title>E41 - Harbor Lights</title>
      <link>https://example.org/show/41</link>
      <description>Notes for the harbor episode.</description>
      <enclosure url="https://cdn.example.org/audio/41.mp3" type="audio/mpeg" length="1234"/>
    </item>
  </channel>
</rss>
`
