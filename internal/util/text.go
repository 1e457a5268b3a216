// Package util holds small text helpers shared by the renderers and
// generators.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// WordCount counts whitespace-separated words, the unit speech budgets are
// quoted in.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Squash collapses every run of whitespace, newlines included, to one space.
func Squash(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TruncateString cuts s to at most maxLen runes, ending in "..." when cut.
// It ignores ANSI escapes; styled text goes through TruncateANSI.
func TruncateString(s string, maxLen int) string {
	if maxLen <= len(ellipsis) {
		return ellipsis
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// TruncateANSI cuts styled text to maxWidth terminal columns, keeping escape
// sequences intact and counting wide characters as two columns.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, ellipsis)
}
