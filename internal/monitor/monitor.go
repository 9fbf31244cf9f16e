package monitor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"podboost/internal/api"
	"podboost/internal/boost"
	"podboost/internal/config"
	"podboost/internal/episodes"
	"podboost/internal/fetch"
	"podboost/internal/logging"
	"podboost/internal/notifications"
	"podboost/internal/services"
	"podboost/internal/services/alby"
	"podboost/internal/services/backend"
	"podboost/internal/services/podhome"
	"podboost/internal/snapshot"
)

// Monitor states. A monitor degrades when the headless browser keeps
// failing; degraded runs continue on plain HTTP fetches until restart.
const (
	StateNormal   = "normal"
	StateDegraded = "degraded"
)

// PageFetcher retrieves the campaign page markup over plain HTTP.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageRenderer retrieves the campaign page after scripts ran.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Dependencies carries the collaborators a Monitor coordinates. Nil
// Notifier and Webhooks default to no-op implementations; the rest are
// required according to the configured source.
type Dependencies struct {
	Fetcher   PageFetcher
	Renderer  PageRenderer
	Snapshots *snapshot.Store
	Episodes  *episodes.Store
	Host      podhome.Service
	Wallet    alby.Service
	Notifier  notifications.Service
	Webhooks  backend.Service
	Logger    *slog.Logger
}

// Option adjusts optional Monitor behavior.
type Option func(*Monitor)

// WithDryRun makes the act phase log planned host calls instead of
// performing them.
func WithDryRun(enabled bool) Option {
	return func(m *Monitor) { m.dryRun = enabled }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// CheckResult reports what one cycle found and did.
type CheckResult struct {
	CheckID        string
	Source         string
	ChangedSources []string
	Summary        string
	Donations      int64
	GoalReached    bool
	Published      bool
	Rescheduled    bool
	NewTime        time.Time
	EpisodeID      string
	EpisodeNr      int
	EpisodeTitle   string
	State          string
}

// Outcome converts the result into its transport shape. The error, when
// set, is the one the check returned.
func (r CheckResult) Outcome(err error) api.CheckOutcome {
	out := api.CheckOutcome{
		CheckID:     r.CheckID,
		Source:      r.Source,
		Changed:     len(r.ChangedSources) > 0,
		GoalReached: r.GoalReached,
		Donations:   r.Donations,
		Action:      api.ActionNone,
		EpisodeID:   r.EpisodeID,
		EpisodeNr:   r.EpisodeNr,
		Summary:     r.Summary,
		Degraded:    r.State == StateDegraded,
	}
	switch {
	case r.Published:
		out.Action = api.ActionPublished
	case r.Rescheduled:
		out.Action = api.ActionRescheduled
	}
	if !r.NewTime.IsZero() {
		out.PublishDate = api.FormatPublishTime(r.NewTime)
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// Monitor drives donation checks against one campaign or wallet and boosts
// the next scheduled episode when the total grows.
type Monitor struct {
	cfg      *config.Config
	fetcher  PageFetcher
	renderer PageRenderer
	snaps    *snapshot.Store
	store    *episodes.Store
	host     podhome.Service
	wallet   alby.Service
	notifier notifications.Service
	webhooks backend.Service
	boost    boost.Params
	logger   *slog.Logger
	now      func() time.Time
	dryRun   bool

	// cycleMu serializes cycles so a timer tick and an on-demand check
	// never interleave their snapshot writes or host calls.
	cycleMu sync.Mutex

	mu             sync.Mutex
	running        bool
	state          string
	checkCount     int64
	renderFailures int
	goalReached    bool
	lastDonations  int64
	lastNewTime    time.Time
	lastCheckAt    time.Time
	lastChangeAt   time.Time
	lastError      string
	cancel         context.CancelFunc
	done           chan struct{}
}

// New wires a Monitor from explicit dependencies.
func New(cfg *config.Config, deps Dependencies, opts ...Option) (*Monitor, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"configuration is required", nil)
	}
	m := &Monitor{
		cfg:      cfg,
		fetcher:  deps.Fetcher,
		renderer: deps.Renderer,
		snaps:    deps.Snapshots,
		store:    deps.Episodes,
		host:     deps.Host,
		wallet:   deps.Wallet,
		notifier: deps.Notifier,
		webhooks: deps.Webhooks,
		boost: boost.Params{
			SatsPerMinute:     cfg.Boost.SatsPerMinute,
			MaxReductionHours: cfg.Boost.MaxReductionHours,
			StartHour:         cfg.Boost.StartHour,
			EarliestHour:      cfg.Boost.EarliestHour,
		},
		logger: logging.NewComponentLogger(deps.Logger, "monitor"),
		now:    time.Now,
		state:  StateNormal,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.host == nil {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"host client is required", nil)
	}
	if m.store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"episode store is required", nil)
	}
	if m.notifier == nil {
		m.notifier = notifications.NewService(nil)
	}
	if m.webhooks == nil {
		m.webhooks = backend.NewConfiguredService(nil)
	}

	if cfg.Monitor.Source == config.SourceWallet {
		if m.wallet == nil {
			return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
				"wallet client is required when monitor.source is wallet", nil)
		}
		return m, nil
	}

	if strings.TrimSpace(cfg.Monitor.CampaignURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"monitor.campaign_url is not configured", nil)
	}
	if m.fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"page fetcher is required", nil)
	}
	if m.snaps == nil {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"snapshot store is required", nil)
	}
	if m.renderer == nil || !cfg.Monitor.BrowserEnabled {
		m.renderer = nil
		m.state = StateDegraded
	}
	return m, nil
}

// NewFromConfig builds a Monitor with the real fetcher, renderer, snapshot
// store, and service clients derived from configuration. A nil host gets a
// fresh PodHome client; the daemon passes its own so both share a session.
func NewFromConfig(cfg *config.Config, store *episodes.Store, host podhome.Service, logger *slog.Logger, opts ...Option) (*Monitor, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
			"configuration is required", nil)
	}
	if host == nil {
		host = podhome.NewClient(cfg.PodHome.BaseURL, cfg.PodHome.APIKey, cfg.PodHomeTimeout())
	}
	deps := Dependencies{
		Episodes: store,
		Host:     host,
		Notifier: notifications.NewService(cfg),
		Webhooks: backend.NewConfiguredService(cfg),
		Logger:   logger,
	}
	if cfg.Monitor.Source == config.SourceWallet {
		deps.Wallet = alby.NewClient(cfg.Wallet.BalanceURL, cfg.Wallet.AccessToken, cfg.WalletTimeout())
	} else {
		deps.Fetcher = fetch.NewClient(fetch.ClientOptions{
			UserAgent:  cfg.Monitor.UserAgent,
			Timeout:    cfg.FetchTimeout(),
			Attempts:   cfg.Monitor.FetchRetries,
			RetryDelay: cfg.RetryDelay(),
		})
		snaps, err := snapshot.NewStore(cfg.SnapshotDir())
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "monitor", "configure",
				"prepare snapshot directory", err)
		}
		deps.Snapshots = snaps
		if cfg.Monitor.BrowserEnabled {
			deps.Renderer = fetch.NewRenderer(cfg.BrowserBinary(), cfg.Monitor.UserAgent, cfg.RenderTimeout())
		}
	}
	return New(cfg, deps, opts...)
}

// Status reports a point-in-time snapshot for IPC consumers.
func (m *Monitor) Status() api.MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := api.MonitorStatus{
		Running:         m.running,
		Source:          m.cfg.Monitor.Source,
		State:           m.state,
		CheckCount:      m.checkCount,
		BrowserFailures: m.renderFailures,
		GoalReached:     m.goalReached,
		LastDonations:   m.lastDonations,
		LastError:       m.lastError,
	}
	if status.Source != config.SourceWallet {
		status.CampaignURL = m.cfg.Monitor.CampaignURL
	}
	if !m.lastNewTime.IsZero() {
		status.LastPublishTime = api.FormatPublishTime(m.lastNewTime)
	}
	if !m.lastCheckAt.IsZero() {
		status.LastCheckAt = m.lastCheckAt.UTC().Format(time.RFC3339)
	}
	if !m.lastChangeAt.IsZero() {
		status.LastChangeAt = m.lastChangeAt.UTC().Format(time.RFC3339)
	}
	return status
}

func (m *Monitor) currentState() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
