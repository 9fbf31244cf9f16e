package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sys/unix"

	"podboost/internal/config"
	"podboost/internal/deps"
	"podboost/internal/services/alby"
	"podboost/internal/services/podhome"
)

// CheckCampaignURL validates the campaign page address without fetching it.
// Reachability is the monitor's job; preflight only rejects addresses the
// fetcher could never use.
func CheckCampaignURL(rawURL string) Result {
	const name = "Campaign URL"

	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{Name: name, Detail: fmt.Sprintf("unsupported scheme %q (want http or https)", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return Result{Name: name, Detail: "missing host"}
	}
	return Result{Name: name, Passed: true, Detail: trimmed}
}

// CheckPodHome verifies PodHome connectivity and authentication by listing
// the planned episodes.
func CheckPodHome(ctx context.Context, cfg *config.Config) Result {
	const name = "PodHome"

	if strings.TrimSpace(cfg.PodHome.APIKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, cfg.PodHomeTimeout())
	defer cancel()

	client := podhome.NewClient(cfg.PodHome.BaseURL, cfg.PodHome.APIKey, cfg.PodHomeTimeout())
	episodes, err := client.Episodes(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d planned episodes", len(episodes))}
}

// CheckWallet verifies that the wallet balance endpoint accepts the
// configured access token.
func CheckWallet(ctx context.Context, cfg *config.Config) Result {
	const name = "Wallet"

	if strings.TrimSpace(cfg.Wallet.BalanceURL) == "" {
		return Result{Name: name, Detail: "missing balance url"}
	}
	if strings.TrimSpace(cfg.Wallet.AccessToken) == "" {
		return Result{Name: name, Detail: "missing access token"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, cfg.WalletTimeout())
	defer cancel()

	client := alby.NewClient(cfg.Wallet.BalanceURL, cfg.Wallet.AccessToken, cfg.WalletTimeout())
	balance, err := client.Balance(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("balance %s sats", humanize.Comma(balance.Balance))}
}

// CheckTelegram verifies the bot token against the Bot API. The endpoint
// must contain two %s verbs, one for the token and one for the method name;
// pass tgbotapi.APIEndpoint outside of tests.
func CheckTelegram(token, endpoint string, timeout time.Duration) Result {
	const name = "Telegram"

	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing bot token"}
	}

	client := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(strings.TrimSpace(token), endpoint, client)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "authenticated as @" + bot.Self.UserName}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates all system-level dependencies for the given
// config. Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	browserOptional := !cfg.Monitor.BrowserEnabled || cfg.Monitor.Source == config.SourceWallet
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for waveform video builds",
		},
		{
			Name:        "Browser",
			Command:     cfg.BrowserBinary(),
			Description: "Renders script-driven campaign pages",
			Optional:    browserOptional,
		},
	}
	return deps.CheckBinaries(requirements)
}

// summarizeServiceError produces a human-readable summary for connectivity
// check failures.
func summarizeServiceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
