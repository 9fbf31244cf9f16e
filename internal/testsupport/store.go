package testsupport

import (
	"context"
	"testing"
	"time"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/episodes"
)

// MustOpenStore opens an episodes.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *episodes.Store {
	t.Helper()

	store, err := episodes.Open(cfg)
	if err != nil {
		t.Fatalf("episodes.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedEpisode upserts a scheduled episode for tests using the provided store.
func SeedEpisode(t testing.TB, store *episodes.Store, id string, nr int, title string, publish time.Time) api.Episode {
	t.Helper()

	ep := api.Episode{
		EpisodeID:   id,
		EpisodeNr:   nr,
		Title:       title,
		Status:      api.EpisodeStatusScheduled,
		PublishDate: api.FormatPublishTime(publish),
	}
	if err := store.Upsert(context.Background(), ep); err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return ep
}
