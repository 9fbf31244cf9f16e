package episodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"podboost/internal/api"
)

const episodeColumns = "episode_id, episode_nr, title, description, status, publish_date, duration, enclosure_url, season_nr, link, image_url, donations"

// Lister provides the host episode list for Sync. The PodHome client
// satisfies it.
type Lister interface {
	Episodes(ctx context.Context) ([]api.Episode, error)
}

// SyncResult summarizes one host synchronization.
type SyncResult struct {
	Fetched  int
	Inserted int
	Updated  int
}

// Upsert inserts or updates an episode row. The stored donation total is
// preserved on update; the host API knows nothing about donations.
func (s *Store) Upsert(ctx context.Context, ep api.Episode) error {
	if strings.TrimSpace(ep.EpisodeID) == "" {
		return errors.New("episode id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO episodes (
            episode_id, episode_nr, title, description, status, publish_date,
            duration, enclosure_url, season_nr, link, image_url, donations,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(episode_id) DO UPDATE SET
            episode_nr = excluded.episode_nr,
            title = excluded.title,
            description = excluded.description,
            status = excluded.status,
            publish_date = excluded.publish_date,
            duration = excluded.duration,
            enclosure_url = excluded.enclosure_url,
            season_nr = excluded.season_nr,
            link = excluded.link,
            image_url = excluded.image_url,
            updated_at = excluded.updated_at`,
		ep.EpisodeID,
		ep.EpisodeNr,
		ep.Title,
		ep.Description,
		ep.Status,
		ep.PublishDate,
		ep.Duration,
		ep.EnclosureURL,
		ep.SeasonNr,
		ep.Link,
		ep.ImageURL,
		ep.Donations,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert episode: %w", err)
	}
	return nil
}

// Get fetches an episode by host identifier. Returns nil when absent.
func (s *Store) Get(ctx context.Context, episodeID string) (*api.Episode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE episode_id = ?`, episodeID)
	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return ep, nil
}

// GetByNumber fetches an episode by its episode number. Returns nil when
// absent; the lowest season wins when a number repeats across seasons.
func (s *Store) GetByNumber(ctx context.Context, number int) (*api.Episode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE episode_nr = ? ORDER BY season_nr, episode_id LIMIT 1`, number)
	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode by number: %w", err)
	}
	return ep, nil
}

// List returns episodes, optionally filtered by status, ordered by episode
// number then publish date.
func (s *Store) List(ctx context.Context, statuses ...int) ([]api.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY episode_nr, publish_date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []api.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, *ep)
	}
	return episodes, rows.Err()
}

// NextScheduled returns the scheduled episode with the earliest parsed
// publish time, or nil when nothing is scheduled. Episodes with unparseable
// publish dates sort last.
func (s *Store) NextScheduled(ctx context.Context) (*api.Episode, error) {
	scheduled, err := s.List(ctx, api.EpisodeStatusScheduled)
	if err != nil {
		return nil, err
	}
	if len(scheduled) == 0 {
		return nil, nil
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		ti, erri := scheduled[i].PublishTime()
		tj, errj := scheduled[j].PublishTime()
		switch {
		case erri == nil && errj == nil:
			return ti.Before(tj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return scheduled[i].PublishDate < scheduled[j].PublishDate
		}
	})
	next := scheduled[0]
	return &next, nil
}

// Donations returns the stored donation total for an episode.
func (s *Store) Donations(ctx context.Context, episodeID string) (int64, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx,
		`SELECT donations FROM episodes WHERE episode_id = ?`, episodeID).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("episode %q not found", episodeID)
	}
	if err != nil {
		return 0, fmt.Errorf("read donations: %w", err)
	}
	return amount, nil
}

// SetDonations records a new donation total for an episode.
func (s *Store) SetDonations(ctx context.Context, episodeID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("donation total must be >= 0, got %d", amount)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE episodes SET donations = ?, updated_at = ? WHERE episode_id = ?`,
		amount, now, episodeID)
	if err != nil {
		return fmt.Errorf("set donations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set donations: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("episode %q not found", episodeID)
	}
	return nil
}

// SetStatus updates an episode's status after a publish or reschedule call.
func (s *Store) SetStatus(ctx context.Context, episodeID string, status int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE episodes SET status = ?, updated_at = ? WHERE episode_id = ?`,
		status, now, episodeID)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("episode %q not found", episodeID)
	}
	return nil
}

// SetPublishDate records the publish timestamp the host accepted.
func (s *Store) SetPublishDate(ctx context.Context, episodeID string, publishAt time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE episodes SET publish_date = ?, updated_at = ? WHERE episode_id = ?`,
		api.FormatPublishTime(publishAt), now, episodeID)
	if err != nil {
		return fmt.Errorf("set publish date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set publish date: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("episode %q not found", episodeID)
	}
	return nil
}

// Stats returns episode counts keyed by status name.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM episodes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("episode stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[api.StatusName(status)] = count
	}
	return stats, rows.Err()
}

// Sync pulls the host episode list and upserts every entry, preserving
// stored donation totals.
func (s *Store) Sync(ctx context.Context, host Lister) (SyncResult, error) {
	if host == nil {
		return SyncResult{}, errors.New("episode sync requires a host client")
	}
	remote, err := host.Episodes(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{Fetched: len(remote)}
	for _, ep := range remote {
		existing, err := s.Get(ctx, ep.EpisodeID)
		if err != nil {
			return result, err
		}
		if err := s.Upsert(ctx, ep); err != nil {
			return result, err
		}
		if existing == nil {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*api.Episode, error) {
	var (
		episodeID    string
		episodeNr    sql.NullInt64
		title        sql.NullString
		description  sql.NullString
		status       sql.NullInt64
		publishDate  sql.NullString
		duration     sql.NullString
		enclosureURL sql.NullString
		seasonNr     sql.NullInt64
		link         sql.NullString
		imageURL     sql.NullString
		donations    sql.NullInt64
	)

	if err := scanner.Scan(
		&episodeID,
		&episodeNr,
		&title,
		&description,
		&status,
		&publishDate,
		&duration,
		&enclosureURL,
		&seasonNr,
		&link,
		&imageURL,
		&donations,
	); err != nil {
		return nil, err
	}

	return &api.Episode{
		EpisodeID:    episodeID,
		EpisodeNr:    int(episodeNr.Int64),
		Title:        title.String,
		Description:  description.String,
		Status:       int(status.Int64),
		PublishDate:  publishDate.String,
		Duration:     duration.String,
		EnclosureURL: enclosureURL.String,
		SeasonNr:     int(seasonNr.Int64),
		Link:         link.String,
		ImageURL:     imageURL.String,
		Donations:    donations.Int64,
	}, nil
}
