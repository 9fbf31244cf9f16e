// Package extproc runs external commands with deadlines and escalating
// termination.
//
// Run executes a command inside its own process group. When the context
// deadline passes, the whole group receives SIGTERM, liveness is polled for
// a grace period, and survivors receive SIGKILL. Timed-out runs are
// reported distinctly from ordinary failures so callers can surface the
// conventional exit status 124.
package extproc
