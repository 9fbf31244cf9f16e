package goalline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"podboost/internal/services"
)

// MaxLines caps the extracted goal line set.
const MaxLines = 50

const (
	maxElementTextLen = 500
	maxLineLen        = 200
	minLineLen        = 2
)

var (
	keywordPattern      = regexp.MustCompile(`(?i)goal|target|raised|funded|%|bitcoin|btc|sats|progress|funding|campaign`)
	numericTokenPattern = regexp.MustCompile(`(?i)\d+(?:,\d{3})*(?:\.\d+)?\s*(?:%|btc|sats|bitcoin|\$|€|USD)`)
)

// Attribute fragments that mark an element as fundraising-related.
var hintFragments = []string{
	"goal", "progress", "fund", "target", "amount", "raised", "percent", "campaign",
}

var strippedElements = "script,style,noscript,iframe,embed,object"

// Extract parses markup and returns the normalized goal line set:
// deduplicated, sorted, capped at MaxLines.
func Extract(markup string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "goalline", "parse markup", "Failed to parse page markup", err)
	}
	doc.Find(strippedElements).Remove()

	seen := make(map[string]struct{})

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if !hasGoalHint(sel) {
			return
		}
		text := normalizeSpace(sel.Text())
		if text == "" || len(text) >= maxElementTextLen {
			return
		}
		seen[text] = struct{}{}
	})

	bodyText := doc.Text()
	for _, line := range splitLines(bodyText) {
		line = normalizeSpace(line)
		if line == "" || len(line) >= maxLineLen {
			continue
		}
		if keywordPattern.MatchString(line) {
			seen[line] = struct{}{}
		}
	}

	for _, token := range numericTokenPattern.FindAllString(bodyText, -1) {
		token = normalizeSpace(token)
		if token != "" {
			seen[token] = struct{}{}
		}
	}

	lines := make([]string, 0, len(seen))
	for line := range seen {
		if len(line) <= minLineLen {
			continue
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	if len(lines) > MaxLines {
		lines = lines[:MaxLines]
	}
	return lines, nil
}

func hasGoalHint(sel *goquery.Selection) bool {
	for _, attr := range []string{"class", "id", "data-testid"} {
		value, ok := sel.Attr(attr)
		if !ok || value == "" {
			continue
		}
		value = strings.ToLower(value)
		for _, fragment := range hintFragments {
			if strings.Contains(value, fragment) {
				return true
			}
		}
	}
	return false
}

func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

// normalizeSpace trims, collapses runs of whitespace, and applies NFC so
// visually identical snapshots compare equal.
func normalizeSpace(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}
