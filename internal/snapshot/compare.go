package snapshot

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change describes how a snapshot summary moved between two checks.
type Change struct {
	// Changed reports whether the summaries differ at all.
	Changed bool
	// Added holds lines present now but not before.
	Added []string
	// Removed holds lines present before but not now.
	Removed []string
	// Diff is a human-readable rendering of the change, empty when the
	// difference is whitespace only.
	Diff string
}

// Compare diffs two snapshot summaries. Summaries are compared as exact
// strings; the rendered diff ignores leading and trailing whitespace.
func Compare(previous, current string) Change {
	change := Change{Changed: previous != current}
	if !change.Changed {
		return change
	}
	change.Added, change.Removed = lineDelta(previous, current)
	change.Diff = DiffText(previous, current)
	return change
}

// DiffText renders a semantic diff between two texts. It returns the empty
// string when the texts match after trimming surrounding whitespace.
func DiffText(before, after string) string {
	if strings.TrimSpace(before) == strings.TrimSpace(after) {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return renderDiff(diffs)
}

func renderDiff(diffs []diffmatchpatch.Diff) string {
	var buf bytes.Buffer
	for _, diff := range diffs {
		text := strings.TrimSpace(diff.Text)
		if text == "" {
			continue
		}
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			buf.WriteString("+ ")
			buf.WriteString(text)
			buf.WriteString("\n")
		case diffmatchpatch.DiffDelete:
			buf.WriteString("- ")
			buf.WriteString(text)
			buf.WriteString("\n")
		case diffmatchpatch.DiffEqual:
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func lineDelta(previous, current string) (added, removed []string) {
	before := lineSet(previous)
	after := lineSet(current)
	for _, line := range splitLines(current) {
		if !before[line] {
			added = append(added, line)
			before[line] = true
		}
	}
	for _, line := range splitLines(previous) {
		if !after[line] {
			removed = append(removed, line)
			after[line] = true
		}
	}
	return added, removed
}

func lineSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range splitLines(text) {
		set[line] = true
	}
	return set
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
