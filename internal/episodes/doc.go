// Package episodes persists podcast episode metadata and per-episode
// donation totals in SQLite. The episode rows mirror the host API shape so
// the monitor can work offline from the last sync, and the donation column
// carries the wallet-mode baseline between checks.
package episodes
