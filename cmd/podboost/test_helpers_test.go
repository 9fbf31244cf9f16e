package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/daemon"
	"podboost/internal/episodes"
	"podboost/internal/ipc"
	"podboost/internal/logging"
	"podboost/internal/monitor"
	"podboost/internal/services/podhome"
	"podboost/internal/testsupport"
)

// fakeHost serves the planned-episodes endpoint with a mutable list so tests
// can drive sync results.
type fakeHost struct {
	srv      *httptest.Server
	episodes []api.Episode
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	host := &fakeHost{}
	host.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/episodes/planned" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		payload := host.episodes
		if payload == nil {
			payload = []api.Episode{}
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode episodes: %v", err)
		}
	}))
	t.Cleanup(host.srv.Close)
	return host
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *episodes.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	host       *fakeHost
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	host := newFakeHost(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.PodHome.BaseURL = host.srv.URL
	cfg.Monitor.BrowserEnabled = false

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store, err := episodes.Open(cfg)
	if err != nil {
		t.Fatalf("episodes.Open: %v", err)
	}

	logger := logging.NewNop()
	hostClient := podhome.NewClient(cfg.PodHome.BaseURL, cfg.PodHome.APIKey, cfg.PodHomeTimeout())

	mon, err := monitor.NewFromConfig(cfg, store, hostClient, logger)
	if err != nil {
		t.Fatalf("monitor.NewFromConfig: %v", err)
	}

	d, err := daemon.New(cfg, store, logger, mon, hostClient)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		host:       host,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
		store.Close()
	})

	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// runCLI executes the root command against the test config and captures its
// output streams.
func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
