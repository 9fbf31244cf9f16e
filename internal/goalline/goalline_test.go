package goalline_test

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"podboost/internal/goalline"
)

func TestExtractCollectsRelevantLines(t *testing.T) {
	markup := `<html><head>
		<script>var tracking = "goal spam that must not leak";</script>
		<style>.goal { color: red; }</style>
	</head><body>
		<div class="funding-progress">Raised 42,000 sats of 100,000</div>
		<p>Completely unrelated paragraph about weather patterns.</p>
		<span id="GoalBadge">75%</span>
		<p>Support the campaign today!</p>
	</body></html>`

	lines, err := goalline.Extract(markup)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"Raised 42,000 sats of 100,000",
		"75%",
		"Support the campaign today!",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in extracted lines:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "tracking") || strings.Contains(joined, "color") {
		t.Errorf("script/style content leaked into lines:\n%s", joined)
	}
	if strings.Contains(joined, "weather") {
		t.Errorf("keyword filter let an unrelated line through:\n%s", joined)
	}
}

func TestExtractIsDeterministicAndCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "<p>Funding milestone %03d reached</p>", i)
	}
	b.WriteString("</body></html>")

	lines, err := goalline.Extract(b.String())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(lines) != goalline.MaxLines {
		t.Fatalf("expected cap at %d lines, got %d", goalline.MaxLines, len(lines))
	}
	if !sort.StringsAreSorted(lines) {
		t.Fatal("expected sorted lines")
	}

	again, err := goalline.Extract(b.String())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if strings.Join(lines, "\n") != strings.Join(again, "\n") {
		t.Fatal("expected identical input to yield identical lines")
	}
}

func TestExtractNormalizesWhitespace(t *testing.T) {
	a, err := goalline.Extract("<p>Goal:   50%</p>")
	if err != nil {
		t.Fatal(err)
	}
	b, err := goalline.Extract("<p>Goal: 50%</p>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(a, "\n") != strings.Join(b, "\n") {
		t.Fatalf("whitespace variants should extract equally: %v vs %v", a, b)
	}
}

func TestSummarizePicksGoalAndCurrent(t *testing.T) {
	lines := []string{"Campaign goal 100,000 sats", "Raised 42,000 sats so far"}
	summary := goalline.Summarize(lines, 0)

	if summary.Goal != 100_000 {
		t.Fatalf("unexpected goal: %d", summary.Goal)
	}
	if summary.Current != 42_000 {
		t.Fatalf("unexpected current: %d", summary.Current)
	}
	rendered := summary.String()
	if !strings.Contains(rendered, "Goal: 100,000") || !strings.Contains(rendered, "Current: 42,000") {
		t.Fatalf("unexpected rendering: %q", rendered)
	}
	if strings.Contains(rendered, "sats") {
		t.Fatalf("expected sats suffixes stripped, got %q", rendered)
	}
}

func TestSummarizeUsesTextOrderForCloseAmounts(t *testing.T) {
	lines := []string{"Target 95,000 then raised 100,000"}
	summary := goalline.Summarize(lines, 0)

	if summary.Goal != 95_000 {
		t.Fatalf("expected text-order goal 95000, got %d", summary.Goal)
	}
	if summary.Current != 100_000 {
		t.Fatalf("expected text-order current 100000, got %d", summary.Current)
	}
}

func TestSummarizeSingleNumberFallsBackToFinalGoal(t *testing.T) {
	summary := goalline.Summarize([]string{"Raised 42,000 sats"}, 100_000)
	if summary.Goal != 100_000 {
		t.Fatalf("unexpected goal: %d", summary.Goal)
	}
	if summary.Current != 42_000 {
		t.Fatalf("unexpected current: %d", summary.Current)
	}
}

func TestSummarizeIgnoresImplausibleNumbers(t *testing.T) {
	summary := goalline.Summarize([]string{"Copyright 0 widgets 50,000,000 pixels", "Raised 12,345"}, 0)
	if summary.Goal != 12_345 && summary.Current != 12_345 {
		t.Fatalf("expected 12345 to survive, got goal=%d current=%d", summary.Goal, summary.Current)
	}
	if summary.Goal == 50_000_000 || summary.Current == 50_000_000 {
		t.Fatal("implausibly large number should be dropped")
	}
}

func TestSummaryReached(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  bool
	}{
		{"percent complete", []string{"Goal: 100% funded"}, true},
		{"german marker", []string{"Kampagne Abgeschlossen"}, true},
		{"in progress", []string{"Goal: 50%"}, false},
		{"empty", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := goalline.Summarize(tc.lines, 0)
			if got := summary.Reached(); got != tc.want {
				t.Fatalf("Reached() = %v, want %v (summary %q)", got, tc.want, summary.String())
			}
		})
	}
}

func TestDonationAmount(t *testing.T) {
	summary := goalline.Summary{Current: 42_000, Goal: 100_000}
	if got := summary.DonationAmount(100_000); got != 42_000 {
		t.Fatalf("expected current preferred, got %d", got)
	}

	summary = goalline.Summary{Goal: 77_000}
	if got := summary.DonationAmount(100_000); got != 77_000 {
		t.Fatalf("expected goal used when it differs from final goal, got %d", got)
	}

	summary = goalline.Summary{Goal: 100_000}
	if got := summary.DonationAmount(100_000); got != 0 {
		t.Fatalf("expected zero when goal equals final goal, got %d", got)
	}

	summary = goalline.Summary{Text: "0.5 btc pledged"}
	if got := summary.DonationAmount(0); got != 50_000_000 {
		t.Fatalf("expected btc fallback conversion, got %d", got)
	}
}

func TestChangeDetectionScenario(t *testing.T) {
	before, err := goalline.Extract("<div class='goal'>Goal: 50%</div>")
	if err != nil {
		t.Fatal(err)
	}
	after, err := goalline.Extract("<div class='goal'>Goal: 100% Completed</div>")
	if err != nil {
		t.Fatal(err)
	}

	summaryBefore := goalline.Summarize(before, 0)
	summaryAfter := goalline.Summarize(after, 0)

	if summaryBefore.String() == summaryAfter.String() {
		t.Fatal("expected summaries to differ")
	}
	if summaryBefore.Reached() {
		t.Fatal("50% must not count as reached")
	}
	if !summaryAfter.Reached() {
		t.Fatal("100% completed must count as reached")
	}

	same, err := goalline.Extract("<div class='goal'>Goal: 50%</div>")
	if err != nil {
		t.Fatal(err)
	}
	if goalline.Summarize(same, 0).String() != summaryBefore.String() {
		t.Fatal("identical input must produce identical summaries")
	}
}
