package main

import (
	"strings"
	"testing"

	"podboost/internal/api"
)

func TestBuildEpisodeStatsRowsOrdering(t *testing.T) {
	rows := buildEpisodeStatsRows(map[string]int{
		"published": 12,
		"draft":     3,
		"status-9":  1,
		"scheduled": 2,
	})
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	order := []string{"draft", "scheduled", "published", "status-9"}
	for i, want := range order {
		if rows[i][0] != want {
			t.Fatalf("row %d = %q, want %q", i, rows[i][0], want)
		}
	}
	if rows[0][1] != "3" {
		t.Fatalf("draft count = %q, want 3", rows[0][1])
	}

	if rows := buildEpisodeStatsRows(nil); rows != nil {
		t.Fatalf("expected nil rows for empty stats, got %v", rows)
	}
}

func TestMonitorLinesStates(t *testing.T) {
	lines := monitorLines(api.MonitorStatus{
		Running:       true,
		Source:        "campaign",
		State:         "normal",
		CheckCount:    42,
		LastDonations: 150000,
		GoalReached:   false,
	}, nil, false)

	joined := strings.Join(lines, "\n")
	for _, want := range []string{"campaign", "42", "150,000 sats", "In progress"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("monitor lines missing %q:\n%s", want, joined)
		}
	}

	lines = monitorLines(api.MonitorStatus{
		Running:         true,
		Source:          "wallet",
		GoalReached:     true,
		BrowserFailures: 3,
		LastError:       "fetch timed out",
	}, nil, false)
	joined = strings.Join(lines, "\n")
	for _, want := range []string{"Reached", "Browser failures", "fetch timed out"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("monitor lines missing %q:\n%s", want, joined)
		}
	}
}

func TestEpisodeRowFormatsDonations(t *testing.T) {
	row := episodeRow(api.Episode{
		EpisodeNr:   7,
		Title:       "Night Watch",
		Status:      api.EpisodeStatusScheduled,
		PublishDate: "2026-05-01T10:00:00Z",
		Donations:   210000,
	}, nil)

	if row[0] != "7" || row[1] != "Night Watch" || row[2] != "scheduled" {
		t.Fatalf("unexpected row prefix: %v", row)
	}
	if row[4] != "210,000" {
		t.Fatalf("donations column = %q, want 210,000", row[4])
	}
	if !strings.Contains(row[3], "2026-05-01") {
		t.Fatalf("publish column = %q, want date", row[3])
	}
}
