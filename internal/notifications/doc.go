// Package notifications delivers monitor events via pluggable notifiers.
//
// The default implementation posts to a Telegram chat using the bot token
// configured in config.toml and gracefully degrades to a no-op when
// notifications are disabled. Enumerated event types cover the monitor
// milestones so callers can emit consistent messages without duplicating
// Bot API glue. Donation-change events below the configured notification
// threshold are suppressed inside the service; callers publish
// unconditionally.
package notifications
