package config

// Default configuration values.
const (
	defaultDataDir  = "~/.local/share/podboost"
	defaultLogDir   = "~/.local/share/podboost/logs"
	defaultVideoDir = "~/.local/share/podboost/videos"
	defaultAudioDir = "~/.local/share/podboost/audio"

	defaultSource              = SourceCampaign
	defaultCheckInterval       = 30
	defaultFetchRetries        = 3
	defaultRetryDelay          = 5
	defaultFetchTimeout        = 30
	defaultRenderTimeout       = 60
	defaultBrowserBinary       = "chromium"
	defaultBrowserFailureLimit = 3
	defaultUserAgent           = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	defaultSatsPerMinute     = 21
	defaultMaxReductionHours = 12
	defaultStartHour         = 22.0
	defaultEarliestHour      = 10.0
	defaultTimezone          = "Europe/Berlin"

	defaultPodHomeBaseURL = "https://serve.podhome.fm"
	defaultAPITimeout     = 30

	defaultWalletBalanceURL = "https://api.getalby.com/balance"

	defaultFFmpegBinary    = "ffmpeg"
	defaultVideoWidth      = 1920
	defaultVideoHeight     = 1080
	defaultFrameRate       = 30
	defaultWaveformMode    = "cline"
	defaultWaveformColor   = "white"
	defaultBackgroundColor = "black"
	defaultAudioBitrate    = "192k"
	defaultEncodeTimeout   = 1800
	defaultDownloadTimeout = 600

	defaultDescribeMaxLength = 5000

	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultLogRetention = 14
)

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			VideoDir: defaultVideoDir,
			AudioDir: defaultAudioDir,
		},
		Monitor: Monitor{
			Source:              defaultSource,
			CheckInterval:       defaultCheckInterval,
			FetchRetries:        defaultFetchRetries,
			RetryDelay:          defaultRetryDelay,
			FetchTimeout:        defaultFetchTimeout,
			RenderTimeout:       defaultRenderTimeout,
			BrowserEnabled:      true,
			BrowserBinary:       defaultBrowserBinary,
			BrowserFailureLimit: defaultBrowserFailureLimit,
			UserAgent:           defaultUserAgent,
		},
		Boost: Boost{
			SatsPerMinute:     defaultSatsPerMinute,
			MaxReductionHours: defaultMaxReductionHours,
			StartHour:         defaultStartHour,
			EarliestHour:      defaultEarliestHour,
			Timezone:          defaultTimezone,
		},
		PodHome: PodHome{
			BaseURL: defaultPodHomeBaseURL,
			Timeout: defaultAPITimeout,
		},
		Wallet: Wallet{
			BalanceURL: defaultWalletBalanceURL,
			Timeout:    defaultAPITimeout,
		},
		Telegram: Telegram{
			Silent:  true,
			Timeout: defaultAPITimeout,
		},
		Backend: Backend{
			Timeout: defaultAPITimeout,
		},
		Feed: Feed{
			Timeout: defaultAPITimeout,
		},
		Video: Video{
			FFmpegBinary:    defaultFFmpegBinary,
			Width:           defaultVideoWidth,
			Height:          defaultVideoHeight,
			FrameRate:       defaultFrameRate,
			WaveformMode:    defaultWaveformMode,
			WaveformColor:   defaultWaveformColor,
			BackgroundColor: defaultBackgroundColor,
			AudioBitrate:    defaultAudioBitrate,
			EncodeTimeout:   defaultEncodeTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Describe: Describe{
			MaxLength: defaultDescribeMaxLength,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
