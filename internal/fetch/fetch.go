package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"podboost/internal/services"
)

// Snapshot source names. Each fetch strategy keeps its own snapshot pair so
// a change in one never masks a change in the other.
const (
	SourceMarkup   = "markup"
	SourceRendered = "rendered"
)

// ClientOptions configures the static-markup fetcher.
type ClientOptions struct {
	// UserAgent is sent with every request. Campaign hosts serve a reduced
	// page to unknown agents, so this should look like a browser.
	UserAgent string
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// Attempts is the total number of tries per Fetch call.
	Attempts int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// Client fetches the campaign page markup over plain HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds a markup fetcher with retry handling.
func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Attempts > 1 {
		client.SetRetryCount(opts.Attempts - 1)
		client.SetRetryWaitTime(opts.RetryDelay)
		client.SetRetryMaxWaitTime(opts.RetryDelay)
		client.AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || (resp != nil && resp.IsError())
		})
	}
	return &Client{http: client}
}

// Fetch downloads url and returns the response body. Error statuses and
// empty bodies are failures; both count against the caller's failure
// tracking the same way a transport error does.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "fetch", "markup",
			fmt.Sprintf("GET %s failed", url), err)
	}
	if resp.IsError() {
		return "", services.Wrap(services.ErrTransient, "fetch", "markup",
			fmt.Sprintf("GET %s returned status %d", url, resp.StatusCode()), nil)
	}
	body := resp.String()
	if strings.TrimSpace(body) == "" {
		return "", services.Wrap(services.ErrTransient, "fetch", "markup",
			fmt.Sprintf("GET %s returned an empty document", url), nil)
	}
	return body, nil
}
