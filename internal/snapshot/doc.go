// Package snapshot stores the last two captures of a monitored campaign
// page and diffs their summaries. Each fetch source keeps a current and a
// previous file under the data directory; rotation copies current over
// previous after every successful check so the next comparison sees the
// latest state.
package snapshot
