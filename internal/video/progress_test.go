package video

import (
	"testing"
	"time"
)

func TestProgressStateAssemblesBlocks(t *testing.T) {
	var reports []Progress
	state := progressState{emit: func(p Progress) { reports = append(reports, p) }}

	lines := []string{
		"frame=120",
		"out_time_us=4000000",
		"speed=12.5x",
		"progress=continue",
		"out_time_us=8000000",
		"speed=13.1x",
		"progress=end",
	}
	for _, line := range lines {
		state.consume(line)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 progress reports, got %d", len(reports))
	}
	first, last := reports[0], reports[1]
	if first.OutTime != 4*time.Second || first.Speed != "12.5x" || first.Done {
		t.Fatalf("unexpected first report: %+v", first)
	}
	if last.OutTime != 8*time.Second || last.Speed != "13.1x" || !last.Done {
		t.Fatalf("unexpected final report: %+v", last)
	}
}

func TestProgressStateIgnoresNoise(t *testing.T) {
	state := progressState{}
	for _, line := range []string{"", "no separator here", "out_time_us=not-a-number", "out_time_us=-5"} {
		state.consume(line)
	}
	if state.current.OutTime != 0 {
		t.Fatalf("expected zero out time, got %v", state.current.OutTime)
	}
}
