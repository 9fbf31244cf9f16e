// Package monitor implements the donation check loop. Each cycle captures
// the campaign goal line (or the wallet balance), diffs it against the last
// capture, and on change boosts the next scheduled episode's publish time.
package monitor
