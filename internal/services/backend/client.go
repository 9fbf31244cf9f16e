package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"podboost/internal/config"
	"podboost/internal/services"
)

// Webhook paths under the configured base URL.
const (
	updateDonationsPath = "/webhook/update-donations"
	syncEpisodesPath    = "/webhook/sync-episodes"
)

// Service mirrors the companion-bot webhooks the monitor calls after acting
// on a donation change. Calls are fire-and-forget: the monitor logs failures
// and moves on.
type Service interface {
	Enabled() bool
	UpdateDonations(ctx context.Context, episodeID string, amount int64) error
	SyncEpisodes(ctx context.Context) error
}

// NewConfiguredService returns a webhook client when the backend section is
// enabled, and a no-op service otherwise.
func NewConfiguredService(cfg *config.Config) Service {
	if cfg == nil || !cfg.Backend.Enabled {
		return disabled{}
	}
	return NewClient(cfg.Backend.BaseURL, cfg.Backend.WebhookToken, cfg.BackendTimeout())
}

// Client posts donation updates and sync triggers to the companion bot.
type Client struct {
	http *resty.Client
}

// NewClient builds a webhook client for the given base URL and token.
func NewClient(baseURL, webhookToken string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	client.SetHeader("X-API-KEY", strings.TrimSpace(webhookToken))
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{http: client}
}

// Enabled reports that this client will actually send webhooks.
func (c *Client) Enabled() bool {
	return true
}

// UpdateDonations reports the latest donation total for an episode.
func (c *Client) UpdateDonations(ctx context.Context, episodeID string, amount int64) error {
	if strings.TrimSpace(episodeID) == "" {
		return services.Wrap(services.ErrValidation, "backend", "update donations", "episode id is required", nil)
	}
	body := struct {
		EpisodeID string `json:"episode_id"`
		Amount    int64  `json:"amount"`
	}{EpisodeID: episodeID, Amount: amount}

	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(updateDonationsPath)
	return classify("update donations", resp, err)
}

// SyncEpisodes asks the companion bot to refresh its episode list from the
// podcast host.
func (c *Client) SyncEpisodes(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post(syncEpisodesPath)
	return classify("sync episodes", resp, err)
}

type disabled struct{}

func (disabled) Enabled() bool { return false }

func (disabled) UpdateDonations(context.Context, string, int64) error { return nil }

func (disabled) SyncEpisodes(context.Context) error { return nil }

func classify(operation string, resp *resty.Response, err error) error {
	if err != nil {
		return services.Wrap(services.ErrTransient, "backend", operation, "request failed", err)
	}
	if resp != nil && resp.IsError() {
		return services.Wrap(services.ErrTransient, "backend", operation,
			fmt.Sprintf("status %d", resp.StatusCode()), nil)
	}
	return nil
}
