package alby

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"podboost/internal/api"
	"podboost/internal/services"
)

// Service reads the lightning wallet balance backing the campaign.
type Service interface {
	Balance(ctx context.Context) (api.WalletBalance, error)
}

// Client queries the Alby wallet API.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient builds a wallet client. A bare access token gets the Bearer
// scheme prepended; tokens that already carry a scheme pass through.
func NewClient(balanceURL, accessToken string, timeout time.Duration) *Client {
	token := strings.TrimSpace(accessToken)
	if token != "" && !strings.Contains(token, " ") {
		token = "Bearer " + token
	}

	client := resty.New()
	client.SetHeader("Authorization", token)
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{http: client, url: strings.TrimSpace(balanceURL)}
}

// Balance returns the current wallet balance. In wallet mode the balance is
// the campaign's donation total.
func (c *Client) Balance(ctx context.Context) (api.WalletBalance, error) {
	var balance api.WalletBalance
	resp, err := c.http.R().SetContext(ctx).SetResult(&balance).Get(c.url)
	if err != nil {
		return api.WalletBalance{}, services.Wrap(services.ErrTransient, "alby", "balance", "request failed", err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return api.WalletBalance{}, services.Wrap(services.ErrConfiguration, "alby", "balance",
			fmt.Sprintf("authentication rejected (status %d), check wallet.access_token", resp.StatusCode()), nil)
	case resp.IsError():
		return api.WalletBalance{}, services.Wrap(services.ErrTransient, "alby", "balance",
			fmt.Sprintf("status %d", resp.StatusCode()), nil)
	}
	return balance, nil
}
