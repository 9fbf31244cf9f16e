package podhome_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"podboost/internal/services"
	"podboost/internal/services/podhome"
)

func TestEpisodesSendsAPIKey(t *testing.T) {
	var apiKey atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/episodes/planned" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		apiKey.Store(r.Header.Get("X-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"episode_id":"ep-1","episode_nr":42,"title":"Folge 42","status":1,"publish_date":"2026-03-10T22:00:00Z"}]`))
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "secret-key", 5*time.Second)
	episodes, err := client.Episodes(context.Background())
	if err != nil {
		t.Fatalf("Episodes: %v", err)
	}
	if len(episodes) != 1 || episodes[0].EpisodeID != "ep-1" || episodes[0].EpisodeNr != 42 {
		t.Fatalf("unexpected episodes: %+v", episodes)
	}
	if got := apiKey.Load(); got != "secret-key" {
		t.Fatalf("X-API-KEY = %v", got)
	}
}

func TestNextScheduledPicksEarliest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"episode_id":"ep-late","episode_nr":43,"status":1,"publish_date":"2026-03-12T22:00:00Z"},
			{"episode_id":"ep-soon","episode_nr":42,"status":1,"publish_date":"2026-03-10T22:00:00"},
			{"episode_id":"ep-broken","episode_nr":44,"status":1,"publish_date":"TBD"}
		]`))
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "key", 5*time.Second)
	episode, err := client.NextScheduled(context.Background())
	if err != nil {
		t.Fatalf("NextScheduled: %v", err)
	}
	if episode.EpisodeID != "ep-soon" {
		t.Fatalf("next scheduled = %q, want ep-soon", episode.EpisodeID)
	}
}

func TestNextScheduledReportsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "key", 5*time.Second)
	_, err := client.NextScheduled(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReschedulePayload(t *testing.T) {
	var payload atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/episodes/schedule" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		payload.Store(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "key", 5*time.Second)
	publishAt := time.Date(2026, time.March, 10, 20, 20, 0, 0, time.UTC)
	if err := client.Reschedule(context.Background(), "ep-1", publishAt); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	body, _ := payload.Load().(map[string]any)
	if body["episode_id"] != "ep-1" {
		t.Fatalf("episode_id = %v", body["episode_id"])
	}
	if body["publish_date"] != "2026-03-10T20:20:00Z" {
		t.Fatalf("publish_date = %v", body["publish_date"])
	}
	if _, ok := body["publish_now"]; ok {
		t.Fatal("reschedule payload must not carry publish_now")
	}
}

func TestPublishNowPayload(t *testing.T) {
	var payload atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		payload.Store(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "key", 5*time.Second)
	if err := client.PublishNow(context.Background(), "ep-1"); err != nil {
		t.Fatalf("PublishNow: %v", err)
	}

	body, _ := payload.Load().(map[string]any)
	if body["episode_id"] != "ep-1" {
		t.Fatalf("episode_id = %v", body["episode_id"])
	}
	if body["publish_now"] != true {
		t.Fatalf("publish_now = %v", body["publish_now"])
	}
	if _, ok := body["publish_date"]; ok {
		t.Fatal("publish-now payload must not carry publish_date")
	}
}

func TestClassifiesAuthFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "bad-key", 5*time.Second)
	_, err := client.Episodes(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClassifiesServerErrorsAsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := podhome.NewClient(server.URL, "key", 5*time.Second)
	err := client.PublishNow(context.Background(), "ep-1")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestRescheduleValidatesInput(t *testing.T) {
	client := podhome.NewClient("http://unused.invalid", "key", time.Second)
	if err := client.Reschedule(context.Background(), " ", time.Now()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
	if err := client.Reschedule(context.Background(), "ep-1", time.Time{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero time, got %v", err)
	}
}
