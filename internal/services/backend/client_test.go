package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"podboost/internal/config"
	"podboost/internal/services"
	"podboost/internal/services/backend"
)

func TestUpdateDonationsPayload(t *testing.T) {
	var token atomic.Value
	var payload atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/webhook/update-donations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		token.Store(r.Header.Get("X-API-KEY"))
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		payload.Store(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := backend.NewClient(server.URL, "hook-token", 5*time.Second)
	if err := client.UpdateDonations(context.Background(), "ep-1", 42000); err != nil {
		t.Fatalf("UpdateDonations: %v", err)
	}

	if got := token.Load(); got != "hook-token" {
		t.Fatalf("X-API-KEY = %v", got)
	}
	body, _ := payload.Load().(map[string]any)
	if body["episode_id"] != "ep-1" {
		t.Fatalf("episode_id = %v", body["episode_id"])
	}
	if body["amount"] != float64(42000) {
		t.Fatalf("amount = %v", body["amount"])
	}
}

func TestSyncEpisodes(t *testing.T) {
	var path atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := backend.NewClient(server.URL, "hook-token", 5*time.Second)
	if err := client.SyncEpisodes(context.Background()); err != nil {
		t.Fatalf("SyncEpisodes: %v", err)
	}
	if got := path.Load(); got != "/webhook/sync-episodes" {
		t.Fatalf("path = %v", got)
	}
}

func TestClassifiesFailuresAsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := backend.NewClient(server.URL, "hook-token", 5*time.Second)
	err := client.SyncEpisodes(context.Background())
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestConfiguredServiceDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Enabled = false

	service := backend.NewConfiguredService(&cfg)
	if service.Enabled() {
		t.Fatal("disabled backend must report Enabled() == false")
	}
	if err := service.UpdateDonations(context.Background(), "ep-1", 1); err != nil {
		t.Fatalf("disabled UpdateDonations should be a no-op: %v", err)
	}
	if err := service.SyncEpisodes(context.Background()); err != nil {
		t.Fatalf("disabled SyncEpisodes should be a no-op: %v", err)
	}
}

func TestConfiguredServiceEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Enabled = true
	cfg.Backend.BaseURL = "http://127.0.0.1:1"
	cfg.Backend.WebhookToken = "hook-token"

	service := backend.NewConfiguredService(&cfg)
	if !service.Enabled() {
		t.Fatal("enabled backend must report Enabled() == true")
	}
}
