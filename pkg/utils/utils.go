package utils

import (
	"strings"
	"unicode/utf8"
)

// CollapseWhitespace trims a string and folds every internal whitespace run
// into a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes cuts a string to n runes, appending an ellipsis marker when
// anything was removed.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

// HardCutRunes cuts a string to n runes with no marker and no word-boundary
// awareness.
func HardCutRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
