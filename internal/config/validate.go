package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate ensures the configuration is structurally usable. Credentials
// needed only by the monitor daemon are checked separately by
// ValidateMonitor so utility subcommands stay usable without them.
func (c *Config) Validate() error {
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateBoost(); err != nil {
		return err
	}
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateDescribe(); err != nil {
		return err
	}
	return nil
}

// ValidateMonitor ensures everything the monitor daemon needs is present.
func (c *Config) ValidateMonitor() error {
	switch c.Monitor.Source {
	case SourceCampaign:
		if c.Monitor.CampaignURL == "" {
			return errors.New("monitor.campaign_url must be set when monitor.source is \"campaign\"")
		}
		if err := validateHTTPURL("monitor.campaign_url", c.Monitor.CampaignURL); err != nil {
			return err
		}
	case SourceWallet:
		if c.Wallet.AccessToken == "" {
			return errors.New("wallet.access_token must be set when monitor.source is \"wallet\" (or set ALBY_ACCESS_TOKEN)")
		}
	}
	if c.PodHome.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/podboost/config.toml"
		}
		return fmt.Errorf("podhome.api_key is required. Set PODHOME_API_KEY env var or edit %s (create with 'podboost config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.Source != SourceCampaign && c.Monitor.Source != SourceWallet {
		return fmt.Errorf("monitor.source must be %q or %q", SourceCampaign, SourceWallet)
	}
	if err := ensurePositiveMap(map[string]int{
		"monitor.check_interval":        c.Monitor.CheckInterval,
		"monitor.fetch_retries":         c.Monitor.FetchRetries,
		"monitor.fetch_timeout":         c.Monitor.FetchTimeout,
		"monitor.render_timeout":        c.Monitor.RenderTimeout,
		"monitor.browser_failure_limit": c.Monitor.BrowserFailureLimit,
	}); err != nil {
		return err
	}
	if c.Monitor.RetryDelay < 0 {
		return errors.New("monitor.retry_delay must be >= 0")
	}
	if c.Monitor.FinalGoal < 0 {
		return errors.New("monitor.final_goal must be >= 0")
	}
	return nil
}

func (c *Config) validateBoost() error {
	if c.Boost.SatsPerMinute <= 0 {
		return errors.New("boost.satoshis_per_minute must be positive")
	}
	if c.Boost.MaxReductionHours <= 0 || c.Boost.MaxReductionHours > 24 {
		return errors.New("boost.max_reduction_hours must be between 1 and 24")
	}
	if c.Boost.StartHour < 0 || c.Boost.StartHour >= 24 {
		return errors.New("boost.start_hour must be between 0 and 24")
	}
	if c.Boost.EarliestHour < 0 || c.Boost.EarliestHour >= 24 {
		return errors.New("boost.earliest_hour must be between 0 and 24")
	}
	if c.Boost.EarliestHour > c.Boost.StartHour {
		return errors.New("boost.earliest_hour must not be later than boost.start_hour")
	}
	if _, err := time.LoadLocation(c.Boost.Timezone); err != nil {
		return fmt.Errorf("boost.timezone %q is not a valid IANA zone: %w", c.Boost.Timezone, err)
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if !c.Telegram.Enabled {
		return nil
	}
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token must be set when telegram.enabled is true (or set TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id must be set when telegram.enabled is true")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if !c.Backend.Enabled {
		return nil
	}
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url must be set when backend.enabled is true")
	}
	if err := validateHTTPURL("backend.base_url", c.Backend.BaseURL); err != nil {
		return err
	}
	if c.Backend.WebhookToken == "" {
		return errors.New("backend.webhook_token must be set when backend.enabled is true (or set PODBOOST_WEBHOOK_TOKEN)")
	}
	return nil
}

func (c *Config) validateDescribe() error {
	if c.Describe.MaxLength < 100 {
		return errors.New("describe.max_length must be at least 100")
	}
	if len(c.Describe.Disclaimer) >= c.Describe.MaxLength {
		return errors.New("describe.disclaimer must be shorter than describe.max_length")
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", key)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
