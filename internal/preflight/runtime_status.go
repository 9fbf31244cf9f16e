package preflight

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"podboost/internal/config"
)

// CheckPodHomeFromConfig evaluates PodHome status from config and connectivity.
func CheckPodHomeFromConfig(cfg *config.Config) Result {
	const name = "PodHome"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.PodHome.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return CheckPodHome(context.Background(), cfg)
}

// CheckWalletFromConfig evaluates wallet status from config and connectivity.
// The wallet only backs the monitor when the source is set to it, so any
// other source reports the check as passed.
func CheckWalletFromConfig(cfg *config.Config) Result {
	const name = "Wallet"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if cfg.Monitor.Source != config.SourceWallet {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return CheckWallet(context.Background(), cfg)
}

// CheckTelegramFromConfig evaluates Telegram status from config and connectivity.
func CheckTelegramFromConfig(cfg *config.Config) Result {
	const name = "Telegram"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Telegram.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return Result{Name: name, Detail: "Missing bot token"}
	}
	return CheckTelegram(cfg.Telegram.BotToken, tgbotapi.APIEndpoint, cfg.TelegramTimeout())
}

// CheckBackendFromConfig evaluates the website backend wiring. The backend
// exposes no read-only endpoint, so this validates configuration without
// sending a webhook.
func CheckBackendFromConfig(cfg *config.Config) Result {
	const name = "Backend"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Backend.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return Result{Name: name, Detail: "Missing base URL"}
	}
	if strings.TrimSpace(cfg.Backend.WebhookToken) == "" {
		return Result{Name: name, Detail: "Missing webhook token"}
	}
	return Result{Name: name, Passed: true, Detail: strings.TrimSpace(cfg.Backend.BaseURL)}
}
