package monitor

import (
	"context"
	"errors"
	"time"

	"podboost/internal/logging"
)

// Start launches the check loop in the background. The first check runs
// immediately, the rest on monitor.check_interval. The loop ends when the
// context is canceled or the funding goal is reached.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("monitor already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop cancels the loop and waits for the in-flight check to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running || m.cancel == nil {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.running = false
		done := m.done
		m.mu.Unlock()
		close(done)
	}()

	interval := m.cfg.CheckInterval()
	attrs := []logging.Attr{
		logging.String("source", m.cfg.Monitor.Source),
		logging.Duration("check_interval", interval),
		logging.String("state", m.currentState()),
	}
	if url := m.cfg.Monitor.CampaignURL; url != "" {
		attrs = append(attrs, logging.String("campaign_url", url))
	}
	m.logger.Info("monitor started", logging.Args(attrs...)...)

	if m.runOnce(ctx) {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			if m.runOnce(ctx) {
				return
			}
		}
	}
}

// runOnce runs one check. True means the loop is finished, either because
// the goal was reached or the context ended.
func (m *Monitor) runOnce(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	result, err := m.CheckNow(ctx)
	if err != nil {
		// Failed checks keep the loop alive; the next tick retries.
		return errors.Is(err, context.Canceled)
	}
	if result.GoalReached {
		m.logger.Info("funding goal reached, monitor loop complete",
			logging.String(logging.FieldCheckID, result.CheckID),
			logging.Int64("donations", result.Donations),
		)
		return true
	}
	return false
}
