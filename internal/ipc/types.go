package ipc

import "podboost/internal/api"

// StartRequest triggers monitor startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the monitor loop.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the daemon status DTO for IPC callers.
type StatusResponse = api.DaemonStatus

// CheckRequest runs one donation check outside the monitor timer.
type CheckRequest struct{}

// CheckResponse reports the outcome of an on-demand check.
type CheckResponse = api.CheckOutcome

// EpisodeListRequest filters the stored episodes by status name.
type EpisodeListRequest struct {
	Statuses []string `json:"statuses"`
}

// EpisodeListResponse contains stored episodes.
type EpisodeListResponse = api.EpisodeListResponse

// EpisodeShowRequest fetches a single episode by number.
type EpisodeShowRequest struct {
	Number int `json:"number"`
}

// EpisodeShowResponse contains a single episode.
type EpisodeShowResponse = api.EpisodeResponse

// EpisodeSyncRequest refreshes the episode cache from the host.
type EpisodeSyncRequest struct{}

// EpisodeSyncResponse summarizes the synchronization.
type EpisodeSyncResponse struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// EpisodeStatsRequest fetches episode counts by status.
type EpisodeStatsRequest struct{}

// EpisodeStatsResponse reports episode counts keyed by status name.
type EpisodeStatsResponse = api.EpisodeStatsResponse

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalEpisodes    int      `json:"total_episodes"`
	Error            string   `json:"error"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
