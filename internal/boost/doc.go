// Package boost maps campaign donation totals to earlier episode publish
// times. The conversion works in whole minutes: every SatsPerMinute sats
// subtracts one minute from the nominal start hour, up to a configured cap,
// never earlier than the configured floor.
package boost
