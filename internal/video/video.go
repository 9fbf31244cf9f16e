package video

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"podboost/internal/config"
	"podboost/internal/extproc"
	"podboost/internal/feed"
	"podboost/internal/logging"
	"podboost/internal/services"
	"podboost/internal/textutil"
)

// ItemResolver resolves a feed item by episode number. *feed.Reader
// satisfies it.
type ItemResolver interface {
	Episode(ctx context.Context, number int) (*feed.Item, error)
}

// runFunc matches extproc.Run and exists as a test seam.
type runFunc func(ctx context.Context, command extproc.Command, opts ...extproc.Option) (extproc.Result, error)

// Options adjust one build.
type Options struct {
	// Force rebuilds even when the output file already exists.
	Force bool
	// DryRun resolves the plan without downloading or encoding.
	DryRun bool
	// Timeout overrides the configured encode timeout when positive.
	Timeout time.Duration
	// Retries overrides the configured download attempt count when positive.
	Retries int
	// OnProgress receives encoder progress reports.
	OnProgress func(Progress)
}

// Result describes one build outcome.
type Result struct {
	Episode   int
	Title     string
	AudioPath string
	VideoPath string
	// Duration is the encode wall time; zero for skipped or dry runs.
	Duration time.Duration
	// Skipped is true when existing output short-circuited the build.
	Skipped bool
}

// Builder turns episodes into waveform videos.
type Builder struct {
	cfg    *config.Config
	feed   ItemResolver
	run    runFunc
	http   *resty.Client
	logger *slog.Logger
}

// BuilderOption adjusts builder construction.
type BuilderOption func(*Builder)

// WithRunner replaces the process runner. Tests use this to avoid spawning
// a real encoder.
func WithRunner(run runFunc) BuilderOption {
	return func(b *Builder) {
		if run != nil {
			b.run = run
		}
	}
}

// NewBuilder wires a builder from configuration and a feed resolver.
func NewBuilder(cfg *config.Config, resolver ItemResolver, logger *slog.Logger, opts ...BuilderOption) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := resty.New().
		SetTimeout(cfg.DownloadTimeout()).
		SetHeader("User-Agent", cfg.Monitor.UserAgent)

	builder := &Builder{
		cfg:    cfg,
		feed:   resolver,
		run:    extproc.Run,
		http:   client,
		logger: logging.NewComponentLogger(logger, "video"),
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder
}

// Build produces the waveform video for one episode number.
func (b *Builder) Build(ctx context.Context, number int, opts Options) (Result, error) {
	result := Result{Episode: number}

	ctx = services.WithEpisode(ctx, number)
	logger := logging.WithContext(ctx, b.logger)

	item, err := b.feed.Episode(ctx, number)
	if err != nil {
		return result, err
	}
	result.Title = item.Title
	if strings.TrimSpace(item.AudioURL) == "" {
		return result, services.Wrap(services.ErrNotFound, "video", "resolve audio",
			fmt.Sprintf("episode %d has no audio enclosure", number), nil)
	}

	result.AudioPath = filepath.Join(b.cfg.Paths.AudioDir, cacheFileName(number, item.Title, item.AudioURL, ".mp3"))
	result.VideoPath = filepath.Join(b.cfg.Paths.VideoDir, videoFileName(number, item.Title))

	if !opts.Force && fileFilled(result.VideoPath) {
		logger.Info("video already exists, skipping",
			logging.String(logging.FieldEventType, "video_skipped"),
			logging.String("video", result.VideoPath))
		result.Skipped = true
		return result, nil
	}

	if opts.DryRun {
		logger.Info("dry run, would build waveform video",
			logging.String("audio", result.AudioPath),
			logging.String("video", result.VideoPath))
		return result, nil
	}

	if err := os.MkdirAll(b.cfg.Paths.AudioDir, 0o755); err != nil {
		return result, fmt.Errorf("create audio directory: %w", err)
	}
	if err := os.MkdirAll(b.cfg.Paths.VideoDir, 0o755); err != nil {
		return result, fmt.Errorf("create video directory: %w", err)
	}

	if fileFilled(result.AudioPath) {
		logger.Debug("audio already cached", logging.String("audio", result.AudioPath))
	} else {
		logger.Info("downloading episode audio",
			logging.String(logging.FieldEventType, "audio_download"),
			logging.String("url", item.AudioURL))
		if err := b.download(ctx, item.AudioURL, result.AudioPath, opts.Retries); err != nil {
			return result, err
		}
	}

	coverPath := b.fetchCover(ctx, logger, number, item)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.cfg.EncodeTimeout()
	}
	progress := progressState{emit: opts.OnProgress}

	logger.Info("encoding waveform video",
		logging.String(logging.FieldEventType, "video_encode"),
		logging.String("video", result.VideoPath))
	runResult, err := b.run(ctx,
		extproc.Command{Binary: b.cfg.FFmpegBinary(), Args: b.ffmpegArgs(coverPath, result.AudioPath, result.VideoPath)},
		extproc.WithTimeout(timeout),
		extproc.WithStdoutLine(progress.consume))
	result.Duration = runResult.Duration
	if err != nil {
		// Partial output would be mistaken for a cached build next run.
		_ = os.Remove(result.VideoPath)
		return result, err
	}
	if !fileFilled(result.VideoPath) {
		return result, services.Wrap(services.ErrExternalTool, "video", "encode",
			fmt.Sprintf("%s reported success but wrote no output", b.cfg.FFmpegBinary()), nil)
	}

	logger.Info("waveform video built",
		logging.String(logging.FieldEventType, "video_built"),
		logging.String("video", result.VideoPath),
		logging.Duration("encode_time", runResult.Duration))
	return result, nil
}

// fetchCover downloads the episode cover art into the audio cache. A failed
// cover download degrades to the plain background; it never fails the build.
func (b *Builder) fetchCover(ctx context.Context, logger *slog.Logger, number int, item *feed.Item) string {
	if strings.TrimSpace(item.ImageURL) == "" {
		return ""
	}
	coverPath := filepath.Join(b.cfg.Paths.AudioDir, cacheFileName(number, "cover", item.ImageURL, ".jpg"))
	if fileFilled(coverPath) {
		return coverPath
	}
	if err := b.download(ctx, item.ImageURL, coverPath, 1); err != nil {
		logging.WarnWithContext(logger, "cover download failed, using plain background", "cover_download_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "video renders without episode artwork"))
		return ""
	}
	return coverPath
}

// download streams a URL to dest, retrying transient failures with the
// configured fixed delay. The file lands via a rename so an aborted download
// never poses as a cached one.
func (b *Builder) download(ctx context.Context, rawURL, dest string, retries int) error {
	attempts := retries
	if attempts <= 0 {
		attempts = b.cfg.Monitor.FetchRetries
	}
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return services.Wrap(services.ErrTransient, "video", "download", "canceled between attempts", context.Cause(ctx))
			case <-time.After(b.cfg.RetryDelay()):
			}
		}
		if lastErr = b.fetchToFile(ctx, rawURL, dest); lastErr == nil {
			return nil
		}
	}
	return services.Wrap(services.ErrTransient, "video", "download",
		fmt.Sprintf("giving up on %s after %d attempts", rawURL, attempts), lastErr)
}

func (b *Builder) fetchToFile(ctx context.Context, rawURL, dest string) error {
	partial := dest + ".partial"
	resp, err := b.http.R().
		SetContext(ctx).
		SetOutput(partial).
		Get(rawURL)
	if err != nil {
		_ = os.Remove(partial)
		return err
	}
	if resp.IsError() {
		_ = os.Remove(partial)
		return fmt.Errorf("status %d", resp.StatusCode())
	}
	return os.Rename(partial, dest)
}

// ffmpegArgs composes the encoder invocation: cover art scaled and padded to
// the output frame, a showwaves rendering of the audio overlaid along the
// bottom quarter, AAC audio passed through at the configured bitrate.
// Progress reports stream to stdout for parsing.
func (b *Builder) ffmpegArgs(coverPath, audioPath, outputPath string) []string {
	v := b.cfg.Video
	waveHeight := v.Height / 4

	args := []string{"-hide_banner", "-nostats", "-y"}
	var filter string
	if coverPath != "" {
		args = append(args, "-i", coverPath, "-i", audioPath)
		filter = fmt.Sprintf(
			"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s[bg];"+
				"[1:a]showwaves=s=%dx%d:mode=%s:colors=%s:rate=%d[wave];"+
				"[bg][wave]overlay=0:main_h-overlay_h[outv]",
			v.Width, v.Height, v.Width, v.Height, v.BackgroundColor,
			v.Width, waveHeight, v.WaveformMode, v.WaveformColor, v.FrameRate)
	} else {
		args = append(args, "-i", audioPath)
		filter = fmt.Sprintf(
			"color=c=%s:s=%dx%d:r=%d[bg];"+
				"[0:a]showwaves=s=%dx%d:mode=%s:colors=%s:rate=%d[wave];"+
				"[bg][wave]overlay=0:main_h-overlay_h[outv]",
			v.BackgroundColor, v.Width, v.Height, v.FrameRate,
			v.Width, waveHeight, v.WaveformMode, v.WaveformColor, v.FrameRate)
	}

	audioInput := "1:a"
	if coverPath == "" {
		audioInput = "0:a"
	}
	args = append(args,
		"-filter_complex", filter,
		"-map", "[outv]", "-map", audioInput,
		"-c:v", "libx264", "-preset", "medium", "-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(v.FrameRate),
		"-c:a", "aac", "-b:a", v.AudioBitrate,
		"-shortest",
		"-progress", "pipe:1",
		outputPath,
	)
	return args
}

func videoFileName(number int, title string) string {
	return fmt.Sprintf("%d_%s.mp4", number, textutil.SanitizeToken(title))
}

// cacheFileName derives a stable cache name from the episode number, a label,
// and the source URL's extension.
func cacheFileName(number int, label, rawURL, fallbackExt string) string {
	ext := fallbackExt
	if parsed, err := url.Parse(rawURL); err == nil {
		if e := path.Ext(parsed.Path); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("%d_%s%s", number, textutil.SanitizeToken(label), ext)
}

func fileFilled(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
