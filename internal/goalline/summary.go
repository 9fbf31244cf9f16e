package goalline

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Plausible satoshi donation values. Numbers outside this range are page
// noise (years, pixel sizes, phone numbers).
const (
	minPlausibleAmount = 1
	maxPlausibleAmount = 10_000_000
)

const textPreviewRunes = 300

var (
	satsSuffixPattern = regexp.MustCompile(`(?i)\s+sats\b`)
	numberPattern     = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*(?:\.\d+)?\b`)
	reachedPattern    = regexp.MustCompile(`(?i)100%|abgeschlossen`)
	satsAmountPattern = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*)\s*(?:sats?|satoshis?)\b`)
	btcAmountPattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*btc\b`)
)

// Summary condenses a goal line set into comparable campaign figures.
// Goal or Current are zero when the page yielded no plausible value.
type Summary struct {
	Goal    int64
	Current int64
	Text    string
}

// Summarize cleans the joined goal lines and derives goal and current
// donation amounts. With two or more plausible numbers the largest is the
// goal and the second largest the current total; when the two lie within
// ten percent of each other the text order decides instead. A single
// number is treated as the current total against finalGoal.
func Summarize(lines []string, finalGoal int64) Summary {
	joined := strings.Join(lines, "\n")
	cleaned := satsSuffixPattern.ReplaceAllString(joined, "")
	cleaned = normalizeSpace(strings.ReplaceAll(cleaned, "\n", " "))

	amounts := plausibleAmounts(cleaned)

	summary := Summary{Text: previewText(cleaned)}
	switch {
	case len(amounts) >= 2:
		unique := uniqueDescending(amounts)
		summary.Goal = unique[0]
		if len(unique) > 1 {
			summary.Current = unique[1]
		}
		if summary.Goal > 0 && summary.Current > 0 &&
			math.Abs(float64(summary.Goal-summary.Current)) < float64(summary.Goal)*0.1 {
			ordered := uniqueInOrder(amounts)
			if len(ordered) >= 2 {
				summary.Goal = ordered[0]
				summary.Current = ordered[1]
			}
		}
	case len(amounts) == 1:
		summary.Current = amounts[0]
		summary.Goal = finalGoal
	}
	return summary
}

// String renders the summary in the form compared across snapshots.
func (s Summary) String() string {
	parts := make([]string, 0, 3)
	if s.Goal > 0 {
		parts = append(parts, "Goal: "+humanize.Comma(s.Goal))
	}
	if s.Current > 0 {
		parts = append(parts, "Current: "+humanize.Comma(s.Current))
	}
	if s.Text != "" {
		parts = append(parts, "Text: "+s.Text)
	}
	return strings.Join(parts, " | ")
}

// Empty reports whether the summary carries no content at all.
func (s Summary) Empty() bool {
	return s.Goal == 0 && s.Current == 0 && strings.TrimSpace(s.Text) == ""
}

// Reached reports whether the campaign goal appears to be met: the page
// shows a completion marker, or the summary is empty (a campaign page
// cleared after completion).
func (s Summary) Reached() bool {
	rendered := s.String()
	if strings.TrimSpace(rendered) == "" {
		return true
	}
	return reachedPattern.MatchString(rendered)
}

// DonationAmount returns the satoshi total driving the reschedule formula,
// or zero when none can be derived. Preference order: the current total,
// then a goal that differs from the configured final goal, then explicit
// sats or BTC figures in the text.
func (s Summary) DonationAmount(finalGoal int64) int64 {
	if s.Current > 0 {
		return s.Current
	}
	if s.Goal > 0 && s.Goal != finalGoal {
		return s.Goal
	}
	if match := satsAmountPattern.FindStringSubmatch(s.Text); match != nil {
		if value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			return int64(value)
		}
	}
	if match := btcAmountPattern.FindStringSubmatch(s.Text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return int64(value * 100_000_000)
		}
	}
	return 0
}

// Fingerprint returns a short stable digest of a summary rendering, used to
// reference snapshot content in logs.
func Fingerprint(rendered string) string {
	sum := sha256.Sum256([]byte(rendered))
	return hex.EncodeToString(sum[:])[:12]
}

func plausibleAmounts(text string) []int64 {
	matches := numberPattern.FindAllString(text, -1)
	amounts := make([]int64, 0, len(matches))
	for _, match := range matches {
		value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			continue
		}
		amount := int64(value)
		if amount < minPlausibleAmount || amount > maxPlausibleAmount {
			continue
		}
		amounts = append(amounts, amount)
	}
	return amounts
}

func uniqueDescending(amounts []int64) []int64 {
	unique := uniqueInOrder(amounts)
	sort.Slice(unique, func(i, j int) bool { return unique[i] > unique[j] })
	return unique
}

func uniqueInOrder(amounts []int64) []int64 {
	seen := make(map[int64]struct{}, len(amounts))
	unique := make([]int64, 0, len(amounts))
	for _, amount := range amounts {
		if _, ok := seen[amount]; ok {
			continue
		}
		seen[amount] = struct{}{}
		unique = append(unique, amount)
	}
	return unique
}

func previewText(cleaned string) string {
	runes := []rune(cleaned)
	if len(runes) <= textPreviewRunes {
		return cleaned
	}
	return string(runes[:textPreviewRunes]) + "..."
}
