package api

import (
	"fmt"
	"strings"
	"time"
)

// Episode statuses as reported by the PodHome host API. Only scheduled
// episodes are eligible for boosting.
const (
	EpisodeStatusDraft     = 0
	EpisodeStatusScheduled = 1
	EpisodeStatusPublished = 2
)

// Episode is the transport and storage shape of one podcast episode. Field
// names follow the host API wire format, which the local store mirrors.
type Episode struct {
	EpisodeID    string `json:"episode_id"`
	EpisodeNr    int    `json:"episode_nr"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Status       int    `json:"status"`
	PublishDate  string `json:"publish_date"`
	Duration     string `json:"duration,omitempty"`
	EnclosureURL string `json:"enclosure_url,omitempty"`
	SeasonNr     int    `json:"season_nr,omitempty"`
	Link         string `json:"link,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Donations    int64  `json:"donations,omitempty"`
}

// PublishTime parses the episode's publish date.
func (e Episode) PublishTime() (time.Time, error) {
	return ParsePublishTime(e.PublishDate)
}

// Scheduled reports whether the episode is still waiting for publication.
func (e Episode) Scheduled() bool {
	return e.Status == EpisodeStatusScheduled
}

// StatusName renders an episode status for display.
func StatusName(status int) string {
	switch status {
	case EpisodeStatusDraft:
		return "draft"
	case EpisodeStatusScheduled:
		return "scheduled"
	case EpisodeStatusPublished:
		return "published"
	default:
		return fmt.Sprintf("status %d", status)
	}
}

// ParseStatus maps a status name back to its code.
func ParseStatus(name string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "draft":
		return EpisodeStatusDraft, true
	case "scheduled":
		return EpisodeStatusScheduled, true
	case "published":
		return EpisodeStatusPublished, true
	default:
		return 0, false
	}
}

// Publish dates arrive in several shapes: RFC3339 with or without fractional
// seconds, naive ISO timestamps that mean UTC, and bare dates.
var publishDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishTime parses a publish date string into a UTC timestamp.
func ParsePublishTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("publish date is empty")
	}
	for _, layout := range publishDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized publish date %q", value)
}

// FormatPublishTime renders a timestamp the way the host API expects it.
func FormatPublishTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

// DisplayTime renders a timestamp in the configured display timezone.
func DisplayTime(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format("2006-01-02 15:04:05 MST")
}

// WalletBalance mirrors the wallet API balance payload.
type WalletBalance struct {
	Balance  int64  `json:"balance"`
	Unit     string `json:"unit"`
	Currency string `json:"currency"`
}

// Actions a monitor check can take on the next scheduled episode.
const (
	ActionNone        = "none"
	ActionRescheduled = "rescheduled"
	ActionPublished   = "published"
)

// CheckOutcome describes one monitor check in a transport-friendly format.
type CheckOutcome struct {
	CheckID     string `json:"checkId"`
	Source      string `json:"source"`
	Changed     bool   `json:"changed"`
	GoalReached bool   `json:"goalReached"`
	Donations   int64  `json:"donations,omitempty"`
	Action      string `json:"action"`
	EpisodeID   string `json:"episodeId,omitempty"`
	EpisodeNr   int    `json:"episodeNr,omitempty"`
	PublishDate string `json:"publishDate,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Degraded    bool   `json:"degraded"`
	Error       string `json:"error,omitempty"`
}

// MonitorStatus summarizes the poll loop state.
type MonitorStatus struct {
	Running         bool   `json:"running"`
	Source          string `json:"source"`
	State           string `json:"state"`
	CampaignURL     string `json:"campaignUrl,omitempty"`
	CheckCount      int64  `json:"checkCount"`
	BrowserFailures int    `json:"browserFailures"`
	GoalReached     bool   `json:"goalReached"`
	LastDonations   int64  `json:"lastDonations,omitempty"`
	LastPublishTime string `json:"lastPublishTime,omitempty"`
	LastCheckAt     string `json:"lastCheckAt,omitempty"`
	LastChangeAt    string `json:"lastChangeAt,omitempty"`
	LastError       string `json:"lastError,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// StatusLine is one labeled row in a status report.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DependencySummary aggregates dependency readiness.
type DependencySummary struct {
	Total           int    `json:"total"`
	Available       int    `json:"available"`
	MissingRequired int    `json:"missingRequired"`
	MissingOptional int    `json:"missingOptional"`
	Severity        string `json:"severity"`
	Detail          string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
// The daemon fills the core fields; the CLI decorates the snapshot with
// episode stats, service checks, and the dependency summary.
type DaemonStatus struct {
	Running           bool               `json:"running"`
	PID               int                `json:"pid"`
	DatabasePath      string             `json:"databasePath"`
	LockFilePath      string             `json:"lockFilePath"`
	Monitor           MonitorStatus      `json:"monitor"`
	Dependencies      []DependencyStatus `json:"dependencies"`
	EpisodeStats      map[string]int     `json:"episodeStats,omitempty"`
	SystemChecks      []StatusLine       `json:"systemChecks,omitempty"`
	PathChecks        []StatusLine       `json:"pathChecks,omitempty"`
	DependencySummary DependencySummary  `json:"dependencySummary"`
}

// EpisodeListResponse wraps a collection of episodes for API responses.
type EpisodeListResponse struct {
	Episodes []Episode `json:"episodes"`
}

// EpisodeResponse wraps a single episode.
type EpisodeResponse struct {
	Episode Episode `json:"episode"`
}

// EpisodeStatsResponse reports episode counts keyed by status name.
type EpisodeStatsResponse struct {
	Counts map[string]int `json:"counts"`
}
