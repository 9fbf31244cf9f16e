package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	VideoDir string `toml:"video_dir"`
	AudioDir string `toml:"audio_dir"`
}

// Monitor contains configuration for the fund-goal monitor loop.
type Monitor struct {
	CampaignURL           string `toml:"campaign_url"`
	Source                string `toml:"source"`
	CheckInterval         int    `toml:"check_interval"`
	FetchRetries          int    `toml:"fetch_retries"`
	RetryDelay            int    `toml:"retry_delay"`
	FetchTimeout          int    `toml:"fetch_timeout"`
	RenderTimeout         int    `toml:"render_timeout"`
	BrowserEnabled        bool   `toml:"browser_enabled"`
	BrowserBinary         string `toml:"browser_binary"`
	BrowserFailureLimit   int    `toml:"browser_failure_limit"`
	UserAgent             string `toml:"user_agent"`
	FinalGoal             int64  `toml:"final_goal"`
	NotificationThreshold int64  `toml:"notification_threshold"`
}

// Boost contains the publish-time reduction formula parameters.
type Boost struct {
	SatsPerMinute     int64   `toml:"satoshis_per_minute"`
	MaxReductionHours int     `toml:"max_reduction_hours"`
	StartHour         float64 `toml:"start_hour"`
	EarliestHour      float64 `toml:"earliest_hour"`
	Timezone          string  `toml:"timezone"`
}

// PodHome contains configuration for the podcast host API.
type PodHome struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"`
}

// Wallet contains configuration for the Lightning wallet balance API.
type Wallet struct {
	BalanceURL  string `toml:"balance_url"`
	AccessToken string `toml:"access_token"`
	Timeout     int    `toml:"timeout"`
}

// Telegram contains configuration for chat notifications.
type Telegram struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   int64  `toml:"chat_id"`
	TopicID  int    `toml:"topic_id"`
	Silent   bool   `toml:"silent"`
	Timeout  int    `toml:"timeout"`
}

// Backend contains configuration for the companion-bot webhook endpoints.
type Backend struct {
	Enabled      bool   `toml:"enabled"`
	BaseURL      string `toml:"base_url"`
	WebhookToken string `toml:"webhook_token"`
	Timeout      int    `toml:"timeout"`
}

// Feed contains configuration for the podcast RSS feed.
type Feed struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Video contains configuration for waveform video generation.
type Video struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	FrameRate       int    `toml:"frame_rate"`
	WaveformMode    string `toml:"waveform_mode"`
	WaveformColor   string `toml:"waveform_color"`
	BackgroundColor string `toml:"background_color"`
	AudioBitrate    string `toml:"audio_bitrate"`
	EncodeTimeout   int    `toml:"encode_timeout"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Describe contains configuration for upload-description generation.
type Describe struct {
	MaxLength  int    `toml:"max_length"`
	Disclaimer string `toml:"disclaimer"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for podboost.
//
// Configuration sections by subsystem:
//   - Paths: data, log, video, and audio directories
//   - Monitor: campaign polling, fetch strategies, degradation limits
//   - Boost: the satoshi-to-minutes publish-time reduction formula
//   - PodHome: podcast host API (episode listing, reschedule, publish-now)
//   - Wallet: Lightning wallet balance polling for wallet-source boosting
//   - Telegram: chat notification settings
//   - Backend: companion-bot webhook endpoints
//   - Feed: podcast RSS feed for video/description generation
//   - Video: FFmpeg waveform composition settings
//   - Describe: upload description length and disclaimer
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Monitor  Monitor  `toml:"monitor"`
	Boost    Boost    `toml:"boost"`
	PodHome  PodHome  `toml:"podhome"`
	Wallet   Wallet   `toml:"wallet"`
	Telegram Telegram `toml:"telegram"`
	Backend  Backend  `toml:"backend"`
	Feed     Feed     `toml:"feed"`
	Video    Video    `toml:"video"`
	Describe Describe `toml:"describe"`
	Logging  Logging  `toml:"logging"`
}

// Monitor source selectors.
const (
	SourceCampaign = "campaign"
	SourceWallet   = "wallet"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/podboost/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podboost.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon and CLI operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.SnapshotDir(), c.Paths.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.VideoDir) != "" {
		// Best-effort so config load survives offline external storage.
		_ = os.MkdirAll(c.Paths.VideoDir, 0o755)
	}
	return nil
}

// SnapshotDir returns the directory holding campaign page snapshots.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.Paths.DataDir, "snapshots")
}

// DatabasePath returns the episode database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "episodes.db")
}

// SocketPath returns the daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.DataDir, "podboostd.sock")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "podboostd.lock")
}

// PIDPath returns the daemon process id file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, "podboostd.pid")
}

// FFmpegBinary returns the FFmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Video.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// BrowserBinary returns the headless browser executable name.
func (c *Config) BrowserBinary() string {
	if bin := strings.TrimSpace(c.Monitor.BrowserBinary); bin != "" {
		return bin
	}
	return defaultBrowserBinary
}

// CheckInterval returns the monitor poll interval as a duration.
func (c *Config) CheckInterval() time.Duration {
	return secondsOrDefault(c.Monitor.CheckInterval, defaultCheckInterval)
}

// FetchTimeout bounds one static-markup fetch attempt.
func (c *Config) FetchTimeout() time.Duration {
	return secondsOrDefault(c.Monitor.FetchTimeout, defaultFetchTimeout)
}

// RenderTimeout bounds one headless-browser render.
func (c *Config) RenderTimeout() time.Duration {
	return secondsOrDefault(c.Monitor.RenderTimeout, defaultRenderTimeout)
}

// RetryDelay returns the pause between markup fetch attempts. Zero disables
// the pause.
func (c *Config) RetryDelay() time.Duration {
	if c.Monitor.RetryDelay < 0 {
		return time.Duration(defaultRetryDelay) * time.Second
	}
	return time.Duration(c.Monitor.RetryDelay) * time.Second
}

// PodHomeTimeout bounds host API calls.
func (c *Config) PodHomeTimeout() time.Duration {
	return secondsOrDefault(c.PodHome.Timeout, defaultAPITimeout)
}

// WalletTimeout bounds wallet balance calls.
func (c *Config) WalletTimeout() time.Duration {
	return secondsOrDefault(c.Wallet.Timeout, defaultAPITimeout)
}

// TelegramTimeout bounds chat notification sends.
func (c *Config) TelegramTimeout() time.Duration {
	return secondsOrDefault(c.Telegram.Timeout, defaultAPITimeout)
}

// BackendTimeout bounds companion-bot webhook calls.
func (c *Config) BackendTimeout() time.Duration {
	return secondsOrDefault(c.Backend.Timeout, defaultAPITimeout)
}

// FeedTimeout bounds RSS feed downloads.
func (c *Config) FeedTimeout() time.Duration {
	return secondsOrDefault(c.Feed.Timeout, defaultAPITimeout)
}

// EncodeTimeout bounds one waveform video encode.
func (c *Config) EncodeTimeout() time.Duration {
	return secondsOrDefault(c.Video.EncodeTimeout, defaultEncodeTimeout)
}

// DownloadTimeout bounds one episode audio download.
func (c *Config) DownloadTimeout() time.Duration {
	return secondsOrDefault(c.Video.DownloadTimeout, defaultDownloadTimeout)
}

func secondsOrDefault(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

// DisplayLocation returns the timezone used for human-facing publish times.
// Falls back to UTC when the configured zone cannot be loaded.
func (c *Config) DisplayLocation() *time.Location {
	loc, err := time.LoadLocation(c.Boost.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
