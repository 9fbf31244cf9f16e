package config

import (
	"os"
	"strings"
)

// Environment fallbacks for secrets that operators prefer to keep out of
// the config file.
const (
	envPodHomeAPIKey    = "PODHOME_API_KEY"
	envTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	envWalletToken      = "ALBY_ACCESS_TOKEN"
	envWebhookToken     = "PODBOOST_WEBHOOK_TOKEN"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMonitor()
	c.normalizeBoost()
	c.normalizePodHome()
	c.normalizeWallet()
	c.normalizeTelegram()
	c.normalizeBackend()
	c.normalizeFeed()
	c.normalizeVideo()
	c.normalizeDescribe()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []*string{
		&c.Paths.DataDir,
		&c.Paths.LogDir,
		&c.Paths.VideoDir,
		&c.Paths.AudioDir,
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = trimmed
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeMonitor() {
	c.Monitor.CampaignURL = strings.TrimSpace(c.Monitor.CampaignURL)
	c.Monitor.Source = strings.ToLower(strings.TrimSpace(c.Monitor.Source))
	if c.Monitor.Source == "" {
		c.Monitor.Source = defaultSource
	}
	if c.Monitor.CheckInterval <= 0 {
		c.Monitor.CheckInterval = defaultCheckInterval
	}
	if c.Monitor.FetchRetries <= 0 {
		c.Monitor.FetchRetries = defaultFetchRetries
	}
	if c.Monitor.RetryDelay < 0 {
		c.Monitor.RetryDelay = defaultRetryDelay
	}
	if c.Monitor.FetchTimeout <= 0 {
		c.Monitor.FetchTimeout = defaultFetchTimeout
	}
	if c.Monitor.RenderTimeout <= 0 {
		c.Monitor.RenderTimeout = defaultRenderTimeout
	}
	c.Monitor.BrowserBinary = strings.TrimSpace(c.Monitor.BrowserBinary)
	if c.Monitor.BrowserBinary == "" {
		c.Monitor.BrowserBinary = defaultBrowserBinary
	}
	if c.Monitor.BrowserFailureLimit <= 0 {
		c.Monitor.BrowserFailureLimit = defaultBrowserFailureLimit
	}
	c.Monitor.UserAgent = strings.TrimSpace(c.Monitor.UserAgent)
	if c.Monitor.UserAgent == "" {
		c.Monitor.UserAgent = defaultUserAgent
	}
	if c.Monitor.NotificationThreshold < 0 {
		c.Monitor.NotificationThreshold = 0
	}
}

func (c *Config) normalizeBoost() {
	if c.Boost.SatsPerMinute <= 0 {
		c.Boost.SatsPerMinute = defaultSatsPerMinute
	}
	if c.Boost.MaxReductionHours <= 0 {
		c.Boost.MaxReductionHours = defaultMaxReductionHours
	}
	c.Boost.Timezone = strings.TrimSpace(c.Boost.Timezone)
	if c.Boost.Timezone == "" {
		c.Boost.Timezone = defaultTimezone
	}
}

func (c *Config) normalizePodHome() {
	c.PodHome.BaseURL = strings.TrimRight(strings.TrimSpace(c.PodHome.BaseURL), "/")
	if c.PodHome.BaseURL == "" {
		c.PodHome.BaseURL = defaultPodHomeBaseURL
	}
	c.PodHome.APIKey = strings.TrimSpace(c.PodHome.APIKey)
	if c.PodHome.APIKey == "" {
		if value, ok := os.LookupEnv(envPodHomeAPIKey); ok {
			c.PodHome.APIKey = strings.TrimSpace(value)
		}
	}
	if c.PodHome.Timeout <= 0 {
		c.PodHome.Timeout = defaultAPITimeout
	}
}

func (c *Config) normalizeWallet() {
	c.Wallet.BalanceURL = strings.TrimSpace(c.Wallet.BalanceURL)
	if c.Wallet.BalanceURL == "" {
		c.Wallet.BalanceURL = defaultWalletBalanceURL
	}
	c.Wallet.AccessToken = strings.TrimSpace(c.Wallet.AccessToken)
	if c.Wallet.AccessToken == "" {
		if value, ok := os.LookupEnv(envWalletToken); ok {
			c.Wallet.AccessToken = strings.TrimSpace(value)
		}
	}
	if c.Wallet.Timeout <= 0 {
		c.Wallet.Timeout = defaultAPITimeout
	}
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" {
		if value, ok := os.LookupEnv(envTelegramBotToken); ok {
			c.Telegram.BotToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeBackend() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.Backend.WebhookToken = strings.TrimSpace(c.Backend.WebhookToken)
	if c.Backend.WebhookToken == "" {
		if value, ok := os.LookupEnv(envWebhookToken); ok {
			c.Backend.WebhookToken = strings.TrimSpace(value)
		}
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = defaultAPITimeout
	}
}

func (c *Config) normalizeFeed() {
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	if c.Feed.Timeout <= 0 {
		c.Feed.Timeout = defaultAPITimeout
	}
}

func (c *Config) normalizeVideo() {
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Video.Width <= 0 {
		c.Video.Width = defaultVideoWidth
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaultVideoHeight
	}
	if c.Video.FrameRate <= 0 {
		c.Video.FrameRate = defaultFrameRate
	}
	c.Video.WaveformMode = strings.TrimSpace(c.Video.WaveformMode)
	if c.Video.WaveformMode == "" {
		c.Video.WaveformMode = defaultWaveformMode
	}
	c.Video.WaveformColor = strings.TrimSpace(c.Video.WaveformColor)
	if c.Video.WaveformColor == "" {
		c.Video.WaveformColor = defaultWaveformColor
	}
	c.Video.BackgroundColor = strings.TrimSpace(c.Video.BackgroundColor)
	if c.Video.BackgroundColor == "" {
		c.Video.BackgroundColor = defaultBackgroundColor
	}
	c.Video.AudioBitrate = strings.TrimSpace(c.Video.AudioBitrate)
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = defaultAudioBitrate
	}
	if c.Video.EncodeTimeout <= 0 {
		c.Video.EncodeTimeout = defaultEncodeTimeout
	}
	if c.Video.DownloadTimeout <= 0 {
		c.Video.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeDescribe() {
	if c.Describe.MaxLength <= 0 {
		c.Describe.MaxLength = defaultDescribeMaxLength
	}
	c.Describe.Disclaimer = strings.TrimSpace(c.Describe.Disclaimer)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = defaultLogFormat
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
