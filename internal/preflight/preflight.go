package preflight

import (
	"context"
	"strings"

	"podboost/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results,
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	)
	if cfg.Paths.VideoDir != "" {
		results = append(results, CheckDirectoryAccess("Video directory", cfg.Paths.VideoDir))
	}
	if cfg.Paths.AudioDir != "" {
		results = append(results, CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir))
	}

	// Donation source: the monitor reads exactly one of these per run.
	if cfg.Monitor.Source == config.SourceWallet {
		results = append(results, CheckWallet(ctx, cfg))
	} else {
		results = append(results, CheckCampaignURL(cfg.Monitor.CampaignURL))
	}

	if strings.TrimSpace(cfg.PodHome.APIKey) != "" {
		results = append(results, CheckPodHome(ctx, cfg))
	}

	if cfg.Telegram.Enabled {
		results = append(results, CheckTelegramFromConfig(cfg))
	}

	return results
}
