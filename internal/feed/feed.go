// Package feed resolves podcast episodes from the show's RSS feed. The feed
// is the source of truth for enclosure audio, cover art, and show notes used
// by the video and description generators.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"podboost/internal/config"
	"podboost/internal/services"
)

// Item is one podcast episode as described by the feed.
type Item struct {
	Number      int
	Title       string
	Description string
	AudioURL    string
	ImageURL    string
	Duration    string
	Published   time.Time
}

// Reader fetches and parses the configured RSS feed.
type Reader struct {
	url    string
	parser *gofeed.Parser
}

// NewReader builds a Reader over the configured feed URL.
func NewReader(cfg *config.Config) *Reader {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.Monitor.UserAgent
	parser.Client = &http.Client{Timeout: cfg.FeedTimeout()}
	return &Reader{
		url:    strings.TrimSpace(cfg.Feed.URL),
		parser: parser,
	}
}

// Episode resolves the feed item carrying the given episode number. The
// iTunes episode tag wins; items without one fall back to a number parsed
// from the title. ErrNotFound when the number is absent from the feed.
func (r *Reader) Episode(ctx context.Context, number int) (*Item, error) {
	if number <= 0 {
		return nil, services.Wrap(services.ErrValidation, "feed", "resolve episode",
			fmt.Sprintf("episode numbers start at 1, got %d", number), nil)
	}
	items, err := r.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Number == number {
			return &items[i], nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "feed", "resolve episode",
		fmt.Sprintf("episode %d is not in the feed", number), nil)
}

// Items fetches the feed and returns every item in feed order.
func (r *Reader) Items(ctx context.Context) ([]Item, error) {
	if r.url == "" {
		return nil, services.Wrap(services.ErrConfiguration, "feed", "fetch feed", "feed.url is not configured", nil)
	}
	parsed, err := r.parser.ParseURLWithContext(r.url, ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "feed", "fetch feed", "parse failed", err)
	}
	if parsed == nil || len(parsed.Items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "feed", "fetch feed", "feed contains no items", nil)
	}

	feedImage := feedLevelImage(parsed)
	items := make([]Item, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		if raw == nil {
			continue
		}
		item := Item{
			Number:      episodeNumber(raw),
			Title:       strings.TrimSpace(raw.Title),
			Description: itemDescription(raw),
			AudioURL:    audioEnclosure(raw),
			ImageURL:    itemImage(raw, feedImage),
			Duration:    itunesDuration(raw),
		}
		if raw.PublishedParsed != nil {
			item.Published = raw.PublishedParsed.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}

// Titles carry the number when the feed lacks itunes:episode tags, in forms
// like "E42 - ...", "Folge 42: ...", "#42 ...", or a bare leading "42 - ...".
var titleNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:episode|folge|ep\.?|e)\s*(\d{1,4})\b`),
	regexp.MustCompile(`^\s*#?(\d{1,4})\b`),
}

func episodeNumber(item *gofeed.Item) int {
	if item.ITunesExt != nil {
		if nr, err := strconv.Atoi(strings.TrimSpace(item.ITunesExt.Episode)); err == nil && nr > 0 {
			return nr
		}
	}
	for _, pattern := range titleNumberPatterns {
		if match := pattern.FindStringSubmatch(item.Title); match != nil {
			if nr, err := strconv.Atoi(match[1]); err == nil && nr > 0 {
				return nr
			}
		}
	}
	return 0
}

func audioEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return enc.URL
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func itemDescription(item *gofeed.Item) string {
	if desc := strings.TrimSpace(item.Description); desc != "" {
		return desc
	}
	return strings.TrimSpace(item.Content)
}

func itemImage(item *gofeed.Item, fallback string) string {
	if item.ITunesExt != nil && strings.TrimSpace(item.ITunesExt.Image) != "" {
		return strings.TrimSpace(item.ITunesExt.Image)
	}
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	return fallback
}

func itunesDuration(item *gofeed.Item) string {
	if item.ITunesExt == nil {
		return ""
	}
	return strings.TrimSpace(item.ITunesExt.Duration)
}

func feedLevelImage(feed *gofeed.Feed) string {
	if feed.ITunesExt != nil && strings.TrimSpace(feed.ITunesExt.Image) != "" {
		return strings.TrimSpace(feed.ITunesExt.Image)
	}
	if feed.Image != nil {
		return strings.TrimSpace(feed.Image.URL)
	}
	return ""
}
