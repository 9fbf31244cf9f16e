// Package describe turns HTML show notes into the plain-text description a
// video platform expects: anchors flattened to "text: url", bullets
// preserved, URLs on their own lines, length-capped, disclaimer appended.
package describe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"podboost/internal/config"
	"podboost/internal/feed"
	"podboost/internal/services"
	"podboost/internal/textutil"
)

// Options controls description length and the trailing disclaimer block.
type Options struct {
	// MaxLength caps the final description, disclaimer included.
	MaxLength int
	// Disclaimer is appended after a blank line. Its length is reserved
	// before the show notes are truncated.
	Disclaimer string
}

// FromConfig builds Options from the describe config section.
func FromConfig(cfg *config.Config) Options {
	opts := Options{
		MaxLength:  cfg.Describe.MaxLength,
		Disclaimer: strings.TrimSpace(cfg.Describe.Disclaimer),
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = 5000
	}
	return opts
}

// Generate renders the upload description for a feed item.
func Generate(item feed.Item, opts Options) (string, error) {
	notes := strings.TrimSpace(item.Description)
	if notes == "" {
		return "", services.Wrap(services.ErrNotFound, "describe", "generate description",
			fmt.Sprintf("episode %d has no show notes", item.Number), nil)
	}

	text, err := flattenHTML(notes)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "describe", "generate description", "unparsable show notes", err)
	}
	text = normalize(text)
	if text == "" {
		return "", services.Wrap(services.ErrNotFound, "describe", "generate description",
			fmt.Sprintf("episode %d show notes are empty after cleanup", item.Number), nil)
	}

	budget := opts.MaxLength
	suffix := ""
	if opts.Disclaimer != "" {
		suffix = "\n\n" + opts.Disclaimer
		budget -= len(suffix)
	}
	switch {
	case budget <= 0:
		text = ""
	case len(text) > budget:
		text = textutil.TruncateAtLineBoundary(text, budget)
	}

	return strings.TrimSpace(text + suffix), nil
}

// flattenHTML converts show-note markup into newline-structured plain text.
// Anchors become "text: url" (bare-link anchors collapse to the URL), list
// items become "- " bullets, block elements and <br> become line breaks, and
// everything else contributes only its text.
func flattenHTML(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return
		}
		label := strings.TrimSpace(sel.Text())
		if label == "" || label == href {
			sel.SetText(href)
			return
		}
		sel.SetText(label + ": " + href)
	})

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("\n- ")
		sel.AppendHtml("\n")
	})
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, ul, ol, blockquote, table").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n\n")
	})

	return doc.Text(), nil
}

var (
	markdownLeftovers = regexp.MustCompile("[*_`]+")
	urlToken          = regexp.MustCompile(`https?://\S+`)
	spaceRuns         = regexp.MustCompile(`[ \t]{2,}`)
)

func normalize(text string) string {
	text = markdownLeftovers.ReplaceAllString(text, "")
	// Every URL stands on its own line so platforms linkify it cleanly.
	text = urlToken.ReplaceAllString(text, "\n$0\n")
	text = spaceRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return textutil.CollapseBlankLines(strings.Join(lines, "\n"))
}
