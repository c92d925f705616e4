// Package pool derives the set of names eligible for a draw and the
// fixed board width used to render them.
package pool

import (
	"strings"
	"unicode/utf8"
)

// MinDisplayWidth is the floor for the board width regardless of pool content.
const MinDisplayWidth = 5

// Resolve produces the active name pool from a source list: entries are
// trimmed, empty results dropped, order preserved. Duplicates are kept;
// a roster may legitimately contain the same name twice.
func Resolve(source []string) []string {
	out := make([]string, 0, len(source))
	for _, entry := range source {
		trimmed := strings.TrimSpace(entry)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Contains reports whether name is in the pool, case-insensitively.
func Contains(pool []string, name string) bool {
	return Find(pool, name) != ""
}

// Find returns the pool's own spelling of name (case-insensitive match),
// or "" when absent.
func Find(pool []string, name string) string {
	for _, entry := range pool {
		if strings.EqualFold(entry, name) {
			return entry
		}
	}
	return ""
}

// MaxNameLen returns the length in runes of the longest name in the
// list. Names are measured in runes, not bytes, so accented names take
// the width they actually occupy on the board.
func MaxNameLen(names []string) int {
	longest := 0
	for _, n := range names {
		if l := utf8.RuneCountInString(n); l > longest {
			longest = l
		}
	}
	return longest
}

// DisplayWidth computes the board width: at least MinDisplayWidth, at
// least stickyMax (the longest name ever configured on the global list,
// so switching between class and global contexts never resizes the
// board), and at least the longest name in the active pool.
func DisplayWidth(activePool []string, stickyMax int) int {
	width := MinDisplayWidth
	if stickyMax > width {
		width = stickyMax
	}
	if longest := MaxNameLen(activePool); longest > width {
		width = longest
	}
	return width
}

// Center pads s with spaces to exactly width runes, centered.
// Strings longer than width are returned unchanged.
func Center(s string, width int) string {
	total := width - utf8.RuneCountInString(s)
	if total <= 0 {
		return s
	}
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// ParseNames splits newline-separated text into a global name list:
// trimmed, empties dropped, deduplicated case-insensitively keeping
// first occurrence order.
func ParseNames(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, line := range splitLines(text) {
		key := strings.ToUpper(line)
		if !seen[key] {
			seen[key] = true
			out = append(out, line)
		}
	}
	return out
}

// ParseRoster splits newline-separated text into a student list.
// Unlike ParseNames it does not deduplicate.
func ParseRoster(text string) []string {
	return splitLines(text)
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
