// Package preflight provides readiness checks for external services
// and filesystem paths that podboost depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs failures without
//     aborting, so a Telegram outage never blocks the donation monitor.
//   - The CLI "podboost status" command uses individual check functions
//     (CheckPodHomeFromConfig, CheckDirectoryAccess) to display health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
