// Package backend notifies the companion chat bot about donation changes.
// The bot keeps its own episode database; podboost pings it after every
// reschedule so donation totals and publish dates stay in sync.
package backend
