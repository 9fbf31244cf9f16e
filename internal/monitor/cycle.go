package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/fetch"
	"podboost/internal/goalline"
	"podboost/internal/logging"
	"podboost/internal/notifications"
	"podboost/internal/services"
	"podboost/internal/snapshot"
)

// CheckNow runs a single check cycle on demand and reports what it found
// and did. The returned error describes why a cycle could not complete;
// the loop treats it as transient and retries on the next tick.
func (m *Monitor) CheckNow(ctx context.Context) (CheckResult, error) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	checkID := uuid.NewString()
	ctx = services.WithCheckID(ctx, checkID)
	logger := logging.WithContext(ctx, m.logger)

	m.mu.Lock()
	m.checkCount++
	m.lastCheckAt = m.now()
	count := m.checkCount
	m.mu.Unlock()

	source := m.cfg.Monitor.Source
	result := CheckResult{CheckID: checkID, Source: source}
	logger.Debug("check started", logging.Int64("check_nr", count))

	var err error
	if source == config.SourceWallet {
		err = m.walletCycle(ctx, logger, &result)
	} else {
		err = m.campaignCycle(ctx, logger, &result)
	}

	m.mu.Lock()
	m.lastError = ""
	if err != nil {
		m.lastError = err.Error()
	}
	if len(result.ChangedSources) > 0 {
		m.lastChangeAt = m.now()
	}
	if result.GoalReached {
		m.goalReached = true
	}
	if result.Donations > 0 {
		m.lastDonations = result.Donations
	}
	if !result.NewTime.IsZero() {
		m.lastNewTime = result.NewTime
	}
	result.State = m.state
	m.mu.Unlock()

	return result, err
}

// sourceChange pairs a fetch source with the goal-line summary it produced
// and the diff against its last capture.
type sourceChange struct {
	source  string
	summary goalline.Summary
	change  snapshot.Change
}

func (m *Monitor) campaignCycle(ctx context.Context, logger *slog.Logger, result *CheckResult) error {
	url := m.cfg.Monitor.CampaignURL

	markup, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		logging.WarnWithContext(logger, "campaign page fetch failed, skipping check", "fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldSource, fetch.SourceMarkup),
			logging.String(logging.FieldErrorHint, "check network access and monitor.campaign_url"),
			logging.String(logging.FieldImpact, "donation changes stay undetected until the next check"),
		)
		return err
	}

	changes := make([]sourceChange, 0, 2)
	detected, err := m.detect(logger, fetch.SourceMarkup, markup)
	if err != nil {
		return err
	}
	if detected.change.Changed {
		changes = append(changes, detected)
	}

	if m.currentState() == StateNormal && m.renderer != nil {
		rendered, renderErr := m.renderer.Render(ctx, url)
		if renderErr != nil {
			m.noteRenderFailure(ctx, logger, renderErr)
		} else {
			m.resetRenderFailures()
			detected, err = m.detect(logger, fetch.SourceRendered, rendered)
			if err != nil {
				return err
			}
			if detected.change.Changed {
				changes = append(changes, detected)
			}
		}
	}

	if len(changes) == 0 {
		logger.Debug("no change detected")
		return nil
	}

	// The last change wins: when both sources moved, the rendered DOM
	// carries the script-inserted donation counter.
	chosen := changes[len(changes)-1]
	for _, c := range changes {
		result.ChangedSources = append(result.ChangedSources, c.source)
	}
	result.Summary = chosen.summary.String()

	donations := chosen.summary.DonationAmount(m.cfg.Monitor.FinalGoal)
	if chosen.summary.Reached() {
		return m.act(ctx, logger, result, donations, true)
	}
	if donations <= 0 {
		logger.Info("change carries no parsable donation total",
			logging.String(logging.FieldSource, chosen.source),
			logging.String("summary", result.Summary),
		)
		return nil
	}
	return m.act(ctx, logger, result, donations, false)
}

func (m *Monitor) walletCycle(ctx context.Context, logger *slog.Logger, result *CheckResult) error {
	balance, err := m.wallet.Balance(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "wallet balance fetch failed, skipping check", "wallet_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check wallet.balance_url and wallet.access_token"),
			logging.String(logging.FieldImpact, "donation changes stay undetected until the next check"),
		)
		return err
	}

	episode, err := m.nextScheduled(ctx, logger)
	if err != nil {
		return err
	}
	if err := m.store.Upsert(ctx, episode); err != nil {
		return err
	}
	recorded, err := m.store.Donations(ctx, episode.EpisodeID)
	if err != nil {
		return err
	}
	if balance.Balance <= recorded {
		logger.Debug("wallet balance unchanged",
			logging.Int64("balance", balance.Balance),
			logging.Int64("recorded", recorded),
		)
		return nil
	}

	logger.Info("wallet balance grew",
		logging.Int64("balance", balance.Balance),
		logging.Int64("recorded", recorded),
		logging.String("unit", balance.Unit),
	)
	result.ChangedSources = append(result.ChangedSources, config.SourceWallet)
	result.Summary = fmt.Sprintf("wallet balance %s sats (was %s)",
		humanize.Comma(balance.Balance), humanize.Comma(recorded))

	goal := m.cfg.Monitor.FinalGoal
	reached := goal > 0 && balance.Balance >= goal
	return m.actOn(ctx, logger, result, episode, balance.Balance, reached)
}

// detect summarizes one source's goal line and diffs it against the last
// capture. The old capture rotates to previous before the new one is
// written, so consecutive checks always compare neighbor snapshots.
func (m *Monitor) detect(logger *slog.Logger, source, content string) (sourceChange, error) {
	lines, err := goalline.Extract(content)
	if err != nil {
		return sourceChange{}, err
	}
	summary := goalline.Summarize(lines, m.cfg.Monitor.FinalGoal)
	rendered := summary.String()

	baseline, hadBaseline, err := m.snaps.Current(source)
	if err != nil {
		return sourceChange{}, err
	}
	change := snapshot.Change{}
	if hadBaseline {
		change = snapshot.Compare(baseline, rendered)
		if err := m.snaps.Rotate(source); err != nil {
			return sourceChange{}, err
		}
	}
	if err := m.snaps.WriteCurrent(source, rendered); err != nil {
		return sourceChange{}, err
	}

	if change.Changed {
		logger.Info("goal line changed",
			logging.String(logging.FieldSource, source),
			logging.String("summary", rendered),
			logging.String("diff", change.Diff),
		)
	}
	return sourceChange{source: source, summary: summary, change: change}, nil
}

// act resolves the next scheduled episode and applies the donation total
// to it.
func (m *Monitor) act(ctx context.Context, logger *slog.Logger, result *CheckResult, donations int64, goalReached bool) error {
	episode, err := m.nextScheduled(ctx, logger)
	if err != nil {
		return err
	}
	if err := m.store.Upsert(ctx, episode); err != nil {
		return err
	}
	return m.actOn(ctx, logger, result, episode, donations, goalReached)
}

func (m *Monitor) nextScheduled(ctx context.Context, logger *slog.Logger) (api.Episode, error) {
	episode, err := m.host.NextScheduled(ctx)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(logger, "no scheduled episode to boost", "no_scheduled_episode",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "schedule the next episode on the host"),
				logging.String(logging.FieldImpact, "donations cannot move a publish time"),
			)
		}
		return api.Episode{}, err
	}
	return episode, nil
}

func (m *Monitor) actOn(ctx context.Context, logger *slog.Logger, result *CheckResult, episode api.Episode, donations int64, goalReached bool) error {
	ctx = services.WithEpisode(ctx, episode.EpisodeNr)
	logger = logger.With(
		logging.Int(logging.FieldEpisode, episode.EpisodeNr),
		logging.String(logging.FieldEpisodeID, episode.EpisodeID),
	)
	result.EpisodeID = episode.EpisodeID
	result.EpisodeNr = episode.EpisodeNr
	result.EpisodeTitle = episode.Title
	result.Donations = donations

	if goalReached {
		return m.actGoalReached(ctx, logger, result, episode, donations)
	}
	return m.reschedule(ctx, logger, result, episode, donations)
}

// actGoalReached handles a fully-met goal. The goal grants the whole
// reduction; the episode publishes immediately once the fully-reduced slot
// has passed, and moves to that slot when it is still ahead.
func (m *Monitor) actGoalReached(ctx context.Context, logger *slog.Logger, result *CheckResult, episode api.Episode, donations int64) error {
	original, err := episode.PublishTime()
	if err != nil {
		return services.Wrap(services.ErrValidation, "monitor", "parse publish date",
			fmt.Sprintf("episode %q carries an unreadable publish date %q", episode.EpisodeID, episode.PublishDate), err)
	}

	target := m.boost.MaxPublishTime(original)
	if m.now().Before(target) {
		return m.scheduleReached(ctx, logger, result, episode, donations, target)
	}

	if m.dryRun {
		logger.Info("dry-run: goal reached, would publish episode immediately",
			logging.Int64("donations", donations))
		result.GoalReached = true
		return nil
	}

	if err := m.host.PublishNow(ctx, episode.EpisodeID); err != nil {
		m.notifyFailure(ctx, logger,
			fmt.Sprintf("Publishing %q after the funding goal was reached failed: %v", episode.Title, err))
		return err
	}
	result.GoalReached = true
	result.Published = true

	logger.Info("funding goal reached, episode published",
		logging.Int64("donations", donations),
		logging.String(logging.FieldEventType, "goal_reached"),
	)

	if err := m.store.SetStatus(ctx, episode.EpisodeID, api.EpisodeStatusPublished); err != nil {
		logger.Warn("episode status update failed", logging.Error(err))
	}
	if err := m.store.SetDonations(ctx, episode.EpisodeID, donations); err != nil {
		logger.Warn("donation total not recorded", logging.Error(err))
	}
	m.notify(ctx, logger, notifications.EventGoalReached, notifications.Payload{
		Episode: episode.Title,
		Action:  "Published immediately, funding goal reached",
		Amount:  donations,
	})
	if err := m.webhooks.SyncEpisodes(ctx); err != nil {
		logger.Warn("backend episode sync failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "webhook_failed"),
		)
	}
	return nil
}

// scheduleReached moves a goal-reached episode to the fully-reduced slot
// that is still in the future.
func (m *Monitor) scheduleReached(ctx context.Context, logger *slog.Logger, result *CheckResult, episode api.Episode, donations int64, target time.Time) error {
	if m.dryRun {
		logger.Info("dry-run: goal reached, would reschedule episode to the earliest slot",
			logging.Int64("donations", donations),
			logging.Time("publish_date", target))
		result.GoalReached = true
		result.NewTime = target
		return nil
	}

	if err := m.host.Reschedule(ctx, episode.EpisodeID, target); err != nil {
		m.notifyFailure(ctx, logger,
			fmt.Sprintf("Rescheduling %q after the funding goal was reached failed: %v", episode.Title, err))
		return err
	}
	result.GoalReached = true
	result.Rescheduled = true
	result.NewTime = target

	logger.Info("funding goal reached, episode moved to the earliest slot",
		logging.Time("publish_date", target),
		logging.Int64("donations", donations),
		logging.String(logging.FieldEventType, "goal_reached"),
	)

	if err := m.store.SetPublishDate(ctx, episode.EpisodeID, target); err != nil {
		logger.Warn("publish date not recorded", logging.Error(err))
	}
	if err := m.store.SetDonations(ctx, episode.EpisodeID, donations); err != nil {
		logger.Warn("donation total not recorded", logging.Error(err))
	}
	m.notify(ctx, logger, notifications.EventGoalReached, notifications.Payload{
		Episode: episode.Title,
		Action:  "Funding goal reached, publishing at " + api.DisplayTime(target, m.cfg.DisplayLocation()),
		Amount:  donations,
	})
	if err := m.webhooks.SyncEpisodes(ctx); err != nil {
		logger.Warn("backend episode sync failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "webhook_failed"),
		)
	}
	return nil
}

func (m *Monitor) reschedule(ctx context.Context, logger *slog.Logger, result *CheckResult, episode api.Episode, donations int64) error {
	original, err := episode.PublishTime()
	if err != nil {
		return services.Wrap(services.ErrValidation, "monitor", "parse publish date",
			fmt.Sprintf("episode %q carries an unreadable publish date %q", episode.EpisodeID, episode.PublishDate), err)
	}

	newTime, moved := m.boost.PublishTime(original, donations)
	if !moved {
		logger.Info("donation total does not move the publish time",
			logging.Int64("donations", donations),
			logging.Time("publish_date", original),
		)
		if err := m.store.SetDonations(ctx, episode.EpisodeID, donations); err != nil {
			logger.Warn("donation total not recorded", logging.Error(err))
		}
		m.notify(ctx, logger, notifications.EventGoalChanged, notifications.Payload{
			Episode: episode.Title,
			Action:  fmt.Sprintf("Donations at %s sats, publish time unchanged", humanize.Comma(donations)),
			Amount:  donations,
		})
		return nil
	}

	if m.dryRun {
		logger.Info("dry-run: would reschedule episode",
			logging.Int64("donations", donations),
			logging.Time("publish_date", newTime))
		result.NewTime = newTime
		return nil
	}

	if err := m.host.Reschedule(ctx, episode.EpisodeID, newTime); err != nil {
		m.notifyFailure(ctx, logger,
			fmt.Sprintf("Rescheduling %q failed: %v", episode.Title, err))
		return err
	}
	result.Rescheduled = true
	result.NewTime = newTime

	logger.Info("episode rescheduled",
		logging.Time("publish_date", newTime),
		logging.Duration("reduction", m.boost.Reduction(donations)),
		logging.Int64("donations", donations),
		logging.String(logging.FieldEventType, "rescheduled"),
	)

	if err := m.store.SetPublishDate(ctx, episode.EpisodeID, newTime); err != nil {
		logger.Warn("publish date not recorded", logging.Error(err))
	}
	if err := m.store.SetDonations(ctx, episode.EpisodeID, donations); err != nil {
		logger.Warn("donation total not recorded", logging.Error(err))
	}
	m.notify(ctx, logger, notifications.EventRescheduled, notifications.Payload{
		Episode: episode.Title,
		Action:  "Rescheduled to " + api.DisplayTime(newTime, m.cfg.DisplayLocation()),
		Amount:  donations,
	})
	if err := m.webhooks.UpdateDonations(ctx, episode.EpisodeID, donations); err != nil {
		logger.Warn("backend donation update failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "webhook_failed"),
		)
	}
	return nil
}

func (m *Monitor) noteRenderFailure(ctx context.Context, logger *slog.Logger, cause error) {
	limit := m.cfg.Monitor.BrowserFailureLimit
	if limit <= 0 {
		limit = 3
	}

	m.mu.Lock()
	m.renderFailures++
	failures := m.renderFailures
	degraded := false
	if m.state == StateNormal && failures >= limit {
		m.state = StateDegraded
		degraded = true
	}
	m.mu.Unlock()

	logging.WarnWithContext(logger, "rendered page fetch failed", "render_failed",
		logging.Error(cause),
		logging.String(logging.FieldSource, fetch.SourceRendered),
		logging.Int("consecutive_failures", failures),
		logging.String(logging.FieldErrorHint, "check the browser binary and its sandbox"),
		logging.String(logging.FieldImpact, "script-inserted donation totals may go unseen"),
	)
	if degraded {
		logging.ErrorWithContext(logger, "browser checks disabled for the rest of the run", "monitor_degraded",
			logging.Int("failures", failures),
			logging.String(logging.FieldErrorHint, "restart the daemon after fixing the browser"),
		)
		m.notify(ctx, logger, notifications.EventMonitorDegraded, notifications.Payload{
			Message: fmt.Sprintf("Browser fetch failed %d times in a row; continuing on plain HTTP checks until restart.", failures),
		})
	}
}

func (m *Monitor) resetRenderFailures() {
	m.mu.Lock()
	if m.state == StateNormal {
		m.renderFailures = 0
	}
	m.mu.Unlock()
}

func (m *Monitor) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown interrupted notification", logging.String("event", string(event)))
			return
		}
		logger.Warn("notification failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}

func (m *Monitor) notifyFailure(ctx context.Context, logger *slog.Logger, message string) {
	m.notify(ctx, logger, notifications.EventCheckFailed, notifications.Payload{Message: message})
}
