package textutil

import (
	"regexp"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

// CollapseBlankLines reduces runs of three or more newlines to a single blank
// line and trims surrounding whitespace.
func CollapseBlankLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TruncateAtLineBoundary shortens text to at most max bytes, cutting at the
// last complete line that fits. When no full line fits, the text is cut hard
// at max. Non-positive max returns the text unchanged.
func TruncateAtLineBoundary(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := strings.LastIndex(text[:max], "\n")
	if cut <= 0 {
		return strings.TrimSpace(text[:max])
	}
	return strings.TrimSpace(text[:cut])
}
