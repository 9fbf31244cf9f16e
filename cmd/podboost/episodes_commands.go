package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"podboost/internal/api"
	"podboost/internal/config"
	"podboost/internal/episodes"
	"podboost/internal/ipc"
	"podboost/internal/services"
	"podboost/internal/services/podhome"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "episodes",
		Aliases: []string{"episode"},
		Short:   "Inspect and refresh the cached episode plan",
	}
	cmd.AddCommand(newEpisodesSyncCommand(ctx))
	cmd.AddCommand(newEpisodesListCommand(ctx))
	cmd.AddCommand(newEpisodesShowCommand(ctx))
	return cmd
}

func newEpisodesSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the episode cache from the podcast host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEpisodeAccess(func(client *ipc.Client, store *episodes.Store) error {
				var summary ipc.EpisodeSyncResponse
				if client != nil {
					resp, err := client.EpisodeSync()
					if err != nil {
						return err
					}
					summary = *resp
				} else {
					cfg := ctx.configValue()
					host := podhome.NewClient(cfg.PodHome.BaseURL, cfg.PodHome.APIKey, cfg.PodHomeTimeout())
					result, err := store.Sync(cmd.Context(), host)
					if err != nil {
						return err
					}
					summary = ipc.EpisodeSyncResponse{
						Fetched:  result.Fetched,
						Inserted: result.Inserted,
						Updated:  result.Updated,
					}
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, summary)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d episodes (%d new, %d updated)\n",
					summary.Fetched, summary.Inserted, summary.Updated)
				return nil
			})
		},
	}
}

func newEpisodesListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range statusFilters {
				if _, ok := api.ParseStatus(name); !ok {
					return services.Wrap(services.ErrValidation, "cli", "list episodes",
						fmt.Sprintf("unknown status %q (expected draft, scheduled, or published)", name), nil)
				}
			}

			return ctx.withEpisodeAccess(func(client *ipc.Client, store *episodes.Store) error {
				var eps []api.Episode
				if client != nil {
					resp, err := client.EpisodeList(statusFilters)
					if err != nil {
						return err
					}
					eps = resp.Episodes
				} else {
					codes := make([]int, 0, len(statusFilters))
					for _, name := range statusFilters {
						code, _ := api.ParseStatus(name)
						codes = append(codes, code)
					}
					listed, err := store.List(cmd.Context(), codes...)
					if err != nil {
						return err
					}
					eps = listed
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, api.EpisodeListResponse{Episodes: eps})
				}

				stdout := cmd.OutOrStdout()
				if len(eps) == 0 {
					fmt.Fprintln(stdout, "No episodes cached (run `podboost episodes sync`)")
					return nil
				}

				rows := make([][]string, 0, len(eps))
				for _, ep := range eps {
					rows = append(rows, episodeRow(ep, ctx.configValue()))
				}
				table := renderTable(
					[]string{"Nr", "Title", "Status", "Publish", "Donations"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Filter by status name (draft, scheduled, published)")
	return cmd
}

func newEpisodesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <episode-nr>",
		Short: "Show one cached episode in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "show episode",
					fmt.Sprintf("invalid episode number %q", args[0]), nil)
			}

			return ctx.withEpisodeAccess(func(client *ipc.Client, store *episodes.Store) error {
				var ep api.Episode
				if client != nil {
					resp, err := client.EpisodeShow(number)
					if err != nil {
						return err
					}
					ep = resp.Episode
				} else {
					found, err := store.GetByNumber(cmd.Context(), number)
					if err != nil {
						return err
					}
					if found == nil {
						return services.Wrap(services.ErrNotFound, "cli", "show episode",
							fmt.Sprintf("episode %d is not cached (run `podboost episodes sync`)", number), nil)
					}
					ep = *found
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, api.EpisodeResponse{Episode: ep})
				}
				printEpisodeDetail(cmd, ep, ctx.configValue())
				return nil
			})
		},
	}
}

func episodeRow(ep api.Episode, cfg *config.Config) []string {
	donations := ""
	if ep.Donations > 0 {
		donations = humanize.Comma(ep.Donations)
	}
	return []string{
		strconv.Itoa(ep.EpisodeNr),
		ep.Title,
		api.StatusName(ep.Status),
		displayPublishDate(ep.PublishDate, cfg),
		donations,
	}
}

func printEpisodeDetail(cmd *cobra.Command, ep api.Episode, cfg *config.Config) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader(fmt.Sprintf("Episode %d", ep.EpisodeNr), colorize) {
		fmt.Fprintln(stdout, line)
	}

	fields := []struct {
		label string
		value string
	}{
		{"Title", ep.Title},
		{"Episode ID", ep.EpisodeID},
		{"Status", api.StatusName(ep.Status)},
		{"Publish", displayPublishDate(ep.PublishDate, cfg)},
		{"Season", nonZero(ep.SeasonNr)},
		{"Duration", ep.Duration},
		{"Donations", donationDetail(ep.Donations)},
		{"Audio", ep.EnclosureURL},
		{"Link", ep.Link},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		fmt.Fprintln(stdout, renderStatusLine(field.label, statusInfo, field.value, colorize))
	}

	if desc := strings.TrimSpace(ep.Description); desc != "" {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, desc)
	}
}

func displayPublishDate(raw string, cfg *config.Config) string {
	ts, err := api.ParsePublishTime(raw)
	if err != nil {
		return raw
	}
	if cfg == nil {
		return api.DisplayTime(ts, nil)
	}
	return api.DisplayTime(ts, cfg.DisplayLocation())
}

func donationDetail(amount int64) string {
	if amount <= 0 {
		return ""
	}
	return humanize.Comma(amount) + " sats"
}

func nonZero(value int) string {
	if value == 0 {
		return ""
	}
	return strconv.Itoa(value)
}
