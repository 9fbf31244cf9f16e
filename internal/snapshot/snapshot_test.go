package snapshot_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podboost/internal/snapshot"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := snapshot.NewStore(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, ok, err := store.Current("markup"); err != nil || ok {
		t.Fatalf("expected no current snapshot, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Previous("markup"); err != nil || ok {
		t.Fatalf("expected no previous snapshot, got ok=%v err=%v", ok, err)
	}

	if err := store.WriteCurrent("markup", "Goal: 50%"); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	content, ok, err := store.Current("markup")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !ok || content != "Goal: 50%" {
		t.Fatalf("unexpected current snapshot: ok=%v content=%q", ok, content)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "markup_current.txt" {
		t.Fatalf("unexpected snapshot files: %v", entries)
	}
}

func TestRotatePromotesCurrentAndKeepsIt(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.WriteCurrent("rendered", "first"); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	if err := store.Rotate("rendered"); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	previous, ok, err := store.Previous("rendered")
	if err != nil || !ok {
		t.Fatalf("Previous after rotate: ok=%v err=%v", ok, err)
	}
	if previous != "first" {
		t.Fatalf("previous = %q, want %q", previous, "first")
	}
	current, ok, err := store.Current("rendered")
	if err != nil || !ok || current != "first" {
		t.Fatalf("current should survive rotation: ok=%v err=%v content=%q", ok, err, current)
	}

	if err := store.WriteCurrent("rendered", "second"); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	previous, _, err = store.Previous("rendered")
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if previous != "first" {
		t.Fatalf("previous must only move on Rotate, got %q", previous)
	}
}

func TestRotateWithoutCurrentFails(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Rotate("markup"); err == nil {
		t.Fatal("expected error rotating without a current snapshot")
	}
}

func TestStoreSanitizesSourceNames(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.WriteCurrent("Rendered Page", "x"); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "rendered_page_current.txt")); err != nil {
		t.Fatalf("expected sanitized snapshot file: %v", err)
	}
}

func TestCompareReportsChange(t *testing.T) {
	before := "Goal: 100,000 | Current: 42,000 | Text: Raised 42,000"
	after := "Goal: 100,000 | Current: 77,000 | Text: Raised 77,000"

	change := snapshot.Compare(before, after)
	if !change.Changed {
		t.Fatal("expected change to be detected")
	}
	if len(change.Added) != 1 || !strings.Contains(change.Added[0], "77,000") {
		t.Fatalf("unexpected added lines: %v", change.Added)
	}
	if len(change.Removed) != 1 || !strings.Contains(change.Removed[0], "42,000") {
		t.Fatalf("unexpected removed lines: %v", change.Removed)
	}
	if !strings.Contains(change.Diff, "77,000") {
		t.Fatalf("diff should mention the new amount: %q", change.Diff)
	}
}

func TestCompareIdenticalSummaries(t *testing.T) {
	change := snapshot.Compare("same", "same")
	if change.Changed || change.Diff != "" || change.Added != nil || change.Removed != nil {
		t.Fatalf("expected empty change, got %+v", change)
	}
}

func TestDiffTextIgnoresSurroundingWhitespace(t *testing.T) {
	if diff := snapshot.DiffText("Goal: 50%", "  Goal: 50%\n"); diff != "" {
		t.Fatalf("whitespace-only difference should render empty, got %q", diff)
	}
	diff := snapshot.DiffText("Goal: 50%", "Goal: 100%")
	if diff == "" {
		t.Fatal("expected non-empty diff")
	}
	if !strings.Contains(diff, "100") {
		t.Fatalf("diff should contain the new value: %q", diff)
	}
}
