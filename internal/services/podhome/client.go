package podhome

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"podboost/internal/api"
	"podboost/internal/services"
)

// API paths under the configured base URL.
const (
	episodesPath = "/api/episodes/planned"
	schedulePath = "/api/episodes/schedule"
)

// Service is the slice of the PodHome host API the monitor and CLI consume.
type Service interface {
	Episodes(ctx context.Context) ([]api.Episode, error)
	NextScheduled(ctx context.Context) (api.Episode, error)
	Reschedule(ctx context.Context, episodeID string, publishAt time.Time) error
	PublishNow(ctx context.Context, episodeID string) error
}

// Client talks to the PodHome host API. All requests carry the podcast's
// API key in the X-API-KEY header.
type Client struct {
	http *resty.Client
}

// NewClient builds a PodHome client for the given base URL and API key.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	client.SetHeader("X-API-KEY", strings.TrimSpace(apiKey))
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{http: client}
}

// Episodes returns the planned episodes known to the host.
func (c *Client) Episodes(ctx context.Context) ([]api.Episode, error) {
	var episodes []api.Episode
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&episodes).
		Get(episodesPath)
	if err := classify("list episodes", resp, err); err != nil {
		return nil, err
	}
	return episodes, nil
}

// NextScheduled returns the planned episode with the earliest publish date,
// the one a detected donation change applies to. ErrNotFound is returned
// when the host reports nothing planned.
func (c *Client) NextScheduled(ctx context.Context) (api.Episode, error) {
	episodes, err := c.Episodes(ctx)
	if err != nil {
		return api.Episode{}, err
	}
	if len(episodes) == 0 {
		return api.Episode{}, services.Wrap(services.ErrNotFound, "podhome", "next scheduled", "no planned episodes", nil)
	}
	sortByPublishDate(episodes)
	return episodes[0], nil
}

// Reschedule moves an episode to a new publish timestamp.
func (c *Client) Reschedule(ctx context.Context, episodeID string, publishAt time.Time) error {
	if strings.TrimSpace(episodeID) == "" {
		return services.Wrap(services.ErrValidation, "podhome", "reschedule episode", "episode id is required", nil)
	}
	if publishAt.IsZero() {
		return services.Wrap(services.ErrValidation, "podhome", "reschedule episode", "publish time is required", nil)
	}
	body := scheduleRequest{EpisodeID: episodeID, PublishDate: api.FormatPublishTime(publishAt)}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(schedulePath)
	return classify("reschedule episode", resp, err)
}

// PublishNow asks the host to publish an episode immediately.
func (c *Client) PublishNow(ctx context.Context, episodeID string) error {
	if strings.TrimSpace(episodeID) == "" {
		return services.Wrap(services.ErrValidation, "podhome", "publish episode", "episode id is required", nil)
	}
	body := scheduleRequest{EpisodeID: episodeID, PublishNow: true}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(schedulePath)
	return classify("publish episode", resp, err)
}

type scheduleRequest struct {
	EpisodeID   string `json:"episode_id"`
	PublishDate string `json:"publish_date,omitempty"`
	PublishNow  bool   `json:"publish_now,omitempty"`
}

// sortByPublishDate orders episodes earliest first. Unparseable dates sort
// last so a single malformed entry cannot hijack the boost target.
func sortByPublishDate(episodes []api.Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		ti, erri := episodes[i].PublishTime()
		tj, errj := episodes[j].PublishTime()
		switch {
		case erri == nil && errj == nil:
			return ti.Before(tj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return episodes[i].PublishDate < episodes[j].PublishDate
		}
	})
}

func classify(operation string, resp *resty.Response, err error) error {
	if err != nil {
		return services.Wrap(services.ErrTransient, "podhome", operation, "request failed", err)
	}
	if resp == nil {
		return services.Wrap(services.ErrTransient, "podhome", operation, "no response", nil)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "podhome", operation,
			fmt.Sprintf("authentication rejected (status %d), check podhome.api_key", resp.StatusCode()), nil)
	case resp.StatusCode() == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "podhome", operation,
			fmt.Sprintf("status %d", resp.StatusCode()), nil)
	case resp.IsError():
		return services.Wrap(services.ErrTransient, "podhome", operation,
			fmt.Sprintf("status %d%s", resp.StatusCode(), bodySnippet(resp)), nil)
	}
	return nil
}

func bodySnippet(resp *resty.Response) string {
	body := strings.TrimSpace(resp.String())
	if body == "" {
		return ""
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return ": " + body
}
