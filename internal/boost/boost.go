package boost

import "time"

const minutesPerDay = 24 * 60

// Params converts a donation total into an earlier publish time. Donations
// buy publish-time reduction at a fixed linear rate, capped at a maximum,
// and the resulting clock time never drops below the earliest allowed hour.
type Params struct {
	// SatsPerMinute is the donation amount that buys one minute of reduction.
	SatsPerMinute int64
	// MaxReductionHours caps the total reduction.
	MaxReductionHours int
	// StartHour is the nominal publish hour the reduction subtracts from,
	// as a fractional hour of day (22.5 means 22:30).
	StartHour float64
	// EarliestHour is the floor the computed clock time never crosses.
	EarliestHour float64
}

// Reduction returns the clamped time reduction a donation total buys.
// Partial minutes do not count.
func (p Params) Reduction(donationSats int64) time.Duration {
	if donationSats <= 0 || p.SatsPerMinute <= 0 {
		return 0
	}
	minutes := donationSats / p.SatsPerMinute
	if max := int64(p.MaxReductionHours) * 60; minutes > max {
		minutes = max
	}
	return time.Duration(minutes) * time.Minute
}

// PublishTime computes the adjusted publish timestamp for a donation total,
// anchored on the episode's original publish date. The clock time is the
// start hour minus the reduction, floored at the earliest hour; the date and
// any day carry come from the original timestamp. The boolean is false when
// the donation changes nothing, including a computed time identical to the
// original.
func (p Params) PublishTime(original time.Time, donationSats int64) (time.Time, bool) {
	if donationSats <= 0 || original.IsZero() {
		return time.Time{}, false
	}
	adjusted := p.publishAt(original, p.Reduction(donationSats))
	if adjusted.Equal(original.UTC()) {
		return time.Time{}, false
	}
	return adjusted, true
}

// MaxPublishTime is the fully-reduced publish time for the anchor: the start
// hour minus the whole reduction cap, floored at the earliest hour. The
// goal-reached branch targets it regardless of the parsed donation total.
func (p Params) MaxPublishTime(original time.Time) time.Time {
	if original.IsZero() {
		return time.Time{}
	}
	return p.publishAt(original, time.Duration(p.MaxReductionHours)*time.Hour)
}

func (p Params) publishAt(original time.Time, reduction time.Duration) time.Time {
	newMinutes := int64(p.StartHour*60) - int64(reduction/time.Minute)
	if earliest := int64(p.EarliestHour * 60); newMinutes < earliest {
		newMinutes = earliest
	}

	days := 0
	if newMinutes < 0 {
		days = -1
		newMinutes += minutesPerDay
	} else if newMinutes >= minutesPerDay {
		days = int(newMinutes / minutesPerDay)
		newMinutes %= minutesPerDay
	}

	utc := original.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(),
		int(newMinutes/60), int(newMinutes%60), 0, 0, time.UTC).
		AddDate(0, 0, days)
}
