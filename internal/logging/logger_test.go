package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podboost/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "podboost.log")

	logger, err := New(Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("campaign checked", String("url", "https://example.org"), Int("lines", 7))
	logger.Debug("should be filtered")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "campaign checked") {
		t.Fatalf("expected message in log output, got %q", content)
	}
	if !strings.Contains(content, "url=https://example.org") {
		t.Fatalf("expected url attr in log output, got %q", content)
	}
	if !strings.Contains(content, "lines=7") {
		t.Fatalf("expected lines attr in log output, got %q", content)
	}
	if strings.Contains(content, "should be filtered") {
		t.Fatalf("debug line should have been filtered, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{Format: "console", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	NewComponentLogger(logger, "monitor").Info("cycle complete")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "monitor: cycle complete") {
		t.Fatalf("expected component prefix, got %q", string(data))
	}
}

func TestWithContextCarriesCheckID(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{Format: "console", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithCheckID(context.Background(), "abc-123")
	ctx = services.WithEpisode(ctx, 42)
	WithContext(ctx, logger).Info("acted on change")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "check_id=abc-123") {
		t.Fatalf("expected check_id attr, got %q", content)
	}
	if !strings.Contains(content, "episode=42") {
		t.Fatalf("expected episode attr, got %q", content)
	}
}

func TestCleanupOldLogsHonorsExclusions(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "podboost-old.log")
	current := filepath.Join(dir, "podboost-current.log")
	for _, path := range []string{old, current} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("age old log: %v", err)
	}
	if err := os.Chtimes(current, stale, stale); err != nil {
		t.Fatalf("age current log: %v", err)
	}

	CleanupOldLogs(NewNop(), 7, RetentionTarget{
		Dir:     dir,
		Pattern: "podboost-*.log",
		Exclude: []string{current},
	})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err = %v", err)
	}
	if _, err := os.Stat(current); err != nil {
		t.Fatalf("expected excluded log kept: %v", err)
	}
}
