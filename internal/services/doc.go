// Package services defines shared utilities consumed by the monitor loop and
// the external API integrations beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp check identifiers, component names, and
//     episode numbers for logging correlation.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent exit statuses at the CLI boundary.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability, retries) stays uniform across the tool.
package services
