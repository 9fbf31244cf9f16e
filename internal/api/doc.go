// Package api defines wire-format types shared by the IPC layer, the CLI,
// and the service clients.
//
// Episode mirrors the PodHome host API payload (snake_case fields) so the
// same struct serves as transport shape and local storage row. Daemon-side
// DTOs (DaemonStatus, MonitorStatus, CheckOutcome) use camelCase tags and
// RFC3339 timestamps.
package api
