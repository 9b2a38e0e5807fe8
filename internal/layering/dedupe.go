package layering

import (
	"strings"

	"github.com/matthewbaird/signatures/internal/types"
)

// lineKey is the equality key for add-on lines: case-insensitive with
// surrounding and repeated whitespace ignored.
func lineKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// dedupeLines drops empty lines and later duplicates, keeping the first
// occurrence in its position. Kept lines are trimmed.
func dedupeLines(lines []types.CandidateLine) []types.CandidateLine {
	seen := make(map[string]bool, len(lines))
	out := make([]types.CandidateLine, 0, len(lines))
	for _, l := range lines {
		key := lineKey(l.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		l.Text = strings.TrimSpace(l.Text)
		out = append(out, l)
	}
	return out
}

// dedupeStrings drops empty and repeated reasons, preserving order.
func dedupeStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
