// Package daemon coordinates the long-running podboost process.
//
// It wires configuration, the episode store, and the donation monitor into
// a single lifecycle with flock-based locking to prevent multiple instances.
// The daemon exposes episode maintenance helpers, emits dependency health
// summaries, and answers the status and check requests the IPC server
// forwards from the CLI.
//
// Keep orchestration logic here: the donation check itself lives in the
// monitor package while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
