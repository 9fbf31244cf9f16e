package textutil_test

import (
	"strings"
	"testing"

	"podboost/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"slashes become dashes", "Folge 12/13: Ausblick", "Folge 12-13- Ausblick"},
		{"unsafe chars removed", `Wer? "Wo" <Wann>|`, "Wer Wo Wann"},
		{"whitespace trimmed", "  Episode  ", "Episode"},
		{"empty stays empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeFileName(tc.input); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Folge 42: Lightning!", "folge_42__lightning"},
		{"already-safe_token", "already-safe_token"},
		{"", "unknown"},
		{"!!!", "unknown"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.input); got != tc.want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCollapseBlankLines(t *testing.T) {
	input := "intro\r\n\r\n\r\n\r\nbody\n\n\noutro\n"
	want := "intro\n\nbody\n\noutro"
	if got := textutil.CollapseBlankLines(input); got != want {
		t.Fatalf("CollapseBlankLines = %q, want %q", got, want)
	}
}

func TestTruncateAtLineBoundary(t *testing.T) {
	text := "line one\nline two\nline three"

	if got := textutil.TruncateAtLineBoundary(text, len(text)); got != text {
		t.Fatalf("expected text unchanged when it fits, got %q", got)
	}
	if got := textutil.TruncateAtLineBoundary(text, len(text)+10); got != text {
		t.Fatalf("expected text unchanged with headroom, got %q", got)
	}

	got := textutil.TruncateAtLineBoundary(text, len("line one\nline two")+3)
	if got != "line one\nline two" {
		t.Fatalf("expected cut at last full line, got %q", got)
	}

	got = textutil.TruncateAtLineBoundary("a single very long line without breaks", 10)
	if len(got) > 10 {
		t.Fatalf("expected hard cut within limit, got %q (%d bytes)", got, len(got))
	}
	if !strings.HasPrefix("a single very long line without breaks", got) {
		t.Fatalf("hard cut should be a prefix, got %q", got)
	}
}

func TestTernary(t *testing.T) {
	if got := textutil.Ternary(true, "yes", "no"); got != "yes" {
		t.Fatalf("Ternary(true) = %q", got)
	}
	if got := textutil.Ternary(false, 1, 2); got != 2 {
		t.Fatalf("Ternary(false) = %d", got)
	}
}
