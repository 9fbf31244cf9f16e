package boost_test

import (
	"testing"
	"time"

	"podboost/internal/boost"
)

func testParams() boost.Params {
	return boost.Params{
		SatsPerMinute:     21,
		MaxReductionHours: 12,
		StartHour:         22,
		EarliestHour:      10,
	}
}

func TestReduction(t *testing.T) {
	params := testParams()
	cases := []struct {
		name     string
		donation int64
		want     time.Duration
	}{
		{"zero", 0, 0},
		{"negative", -500, 0},
		{"below one minute", 20, 0},
		{"partial minutes do not count", 41, time.Minute},
		{"linear", 2_100, 100 * time.Minute},
		{"at cap", 15_120, 12 * time.Hour},
		{"clamped above cap", 210_000, 12 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := params.Reduction(tc.donation); got != tc.want {
				t.Fatalf("Reduction(%d) = %v, want %v", tc.donation, got, tc.want)
			}
		})
	}
}

func TestPublishTimeSubtractsFromStartHour(t *testing.T) {
	original := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)

	adjusted, changed := testParams().PublishTime(original, 2_100)
	if !changed {
		t.Fatal("expected a changed publish time")
	}
	want := time.Date(2026, time.March, 10, 20, 20, 0, 0, time.UTC)
	if !adjusted.Equal(want) {
		t.Fatalf("adjusted = %v, want %v", adjusted, want)
	}
}

func TestPublishTimeFloorsAtEarliestHour(t *testing.T) {
	params := testParams()
	params.EarliestHour = 18
	original := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)

	adjusted, changed := params.PublishTime(original, 210_000)
	if !changed {
		t.Fatal("expected a changed publish time")
	}
	want := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	if !adjusted.Equal(want) {
		t.Fatalf("adjusted = %v, want %v", adjusted, want)
	}
}

func TestPublishTimeAnchorsOnOriginalDate(t *testing.T) {
	original := time.Date(2026, time.March, 10, 9, 15, 30, 0, time.UTC)

	adjusted, changed := testParams().PublishTime(original, 2_100)
	if !changed {
		t.Fatal("expected a changed publish time")
	}
	want := time.Date(2026, time.March, 10, 20, 20, 0, 0, time.UTC)
	if !adjusted.Equal(want) {
		t.Fatalf("adjusted = %v, want %v", adjusted, want)
	}
}

func TestPublishTimeDropsSeconds(t *testing.T) {
	original := time.Date(2026, time.March, 10, 22, 0, 45, 0, time.UTC)

	adjusted, changed := testParams().PublishTime(original, 42)
	if !changed {
		t.Fatal("expected a changed publish time")
	}
	want := time.Date(2026, time.March, 10, 21, 58, 0, 0, time.UTC)
	if !adjusted.Equal(want) {
		t.Fatalf("adjusted = %v, want %v", adjusted, want)
	}
}

func TestPublishTimeReportsNoChange(t *testing.T) {
	original := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)
	params := testParams()

	if _, changed := params.PublishTime(original, 0); changed {
		t.Fatal("zero donation must not change the publish time")
	}
	// 20 sats buy zero whole minutes, so the computed time equals the
	// original 22:00 timestamp.
	if _, changed := params.PublishTime(original, 20); changed {
		t.Fatal("sub-minute donation must not change the publish time")
	}
	if _, changed := params.PublishTime(time.Time{}, 2_100); changed {
		t.Fatal("zero original timestamp must not produce a publish time")
	}
}

func TestPublishTimeMonotonicAndClamped(t *testing.T) {
	params := testParams()
	original := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)

	previous := original
	for _, donation := range []int64{42, 2_100, 10_000, 15_120, 100_000, 1_000_000} {
		adjusted, changed := params.PublishTime(original, donation)
		if !changed {
			t.Fatalf("donation %d should change the publish time", donation)
		}
		if adjusted.After(previous) {
			t.Fatalf("donation %d moved publish time later: %v after %v", donation, adjusted, previous)
		}
		previous = adjusted
	}

	floor := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	if !previous.Equal(floor) {
		t.Fatalf("maximum reduction should land on the cap, got %v want %v", previous, floor)
	}
}

func TestMaxPublishTime(t *testing.T) {
	params := testParams()
	original := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)

	got := params.MaxPublishTime(original)
	want := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("MaxPublishTime = %v, want %v", got, want)
	}

	// The cap alone would land at 11:00; the earliest hour floors it at 12:00.
	params.EarliestHour = 12
	params.MaxReductionHours = 11
	got = params.MaxPublishTime(original)
	want = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("MaxPublishTime with floor = %v, want %v", got, want)
	}

	if !params.MaxPublishTime(time.Time{}).IsZero() {
		t.Fatal("zero anchor must yield a zero time")
	}
}
