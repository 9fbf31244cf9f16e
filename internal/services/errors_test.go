package services_test

import (
	"errors"
	"strings"
	"testing"

	"podboost/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "video", "encode", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"video", "encode", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetch", "get", "gone wrong", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker for nil marker, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"timeout", services.Wrap(services.ErrTimeout, "fetch", "render", "", nil), services.ErrTimeout},
		{"validation", services.Wrap(services.ErrValidation, "cli", "range", "", nil), services.ErrValidation},
		{"plain", errors.New("whatever"), services.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.err); !errors.Is(got, tt.want) && !(got == nil && tt.want == nil) {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"timeout", services.Wrap(services.ErrTimeout, "extproc", "run", "killed", nil), services.ExitTimeout},
		{"validation", services.Wrap(services.ErrValidation, "cli", "range", "bad spec", nil), services.ExitUsage},
		{"transient", services.Wrap(services.ErrTransient, "fetch", "get", "", errors.New("io")), services.ExitFailure},
		{"plain", errors.New("whatever"), services.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
