package memory

import (
	"fmt"
	"sort"
	"strings"
)

const (
	summaryTopPerCategory = 3
	summaryContentPrefix  = 100
)

// Summary groups entries by category and renders the top entries of each,
// most important first. Displayed content is truncated to a fixed prefix.
func Summary(entries []Entry) string {
	if len(entries) == 0 {
		return "No memories stored yet."
	}

	byCategory := make(map[Category][]Entry)
	for _, e := range entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	categories := make([]Category, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var b strings.Builder
	b.WriteString("Memory summary:\n")
	for _, c := range categories {
		items := byCategory[c]
		sortEntries(items)
		if len(items) > summaryTopPerCategory {
			items = items[:summaryTopPerCategory]
		}

		name := string(c)
		if name == "" {
			name = "uncategorized"
		}
		fmt.Fprintf(&b, "\n%s (%d items):\n", titleCase(name), len(byCategory[c]))
		for _, e := range items {
			fmt.Fprintf(&b, "  [%d] %s %s\n", e.ID, truncate(e.Content, summaryContentPrefix), importanceMarker(e.Importance))
		}
	}
	return b.String()
}

// FormatSearchResults renders search hits for display, or a friendly
// no-results line. No results is a normal outcome, not an error.
func FormatSearchResults(query string, entries []Entry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No memories found matching %q", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)
	for _, e := range entries {
		fmt.Fprintf(&b, "[%d] %s (%s) %s\n", e.ID, e.Content, e.Category, importanceMarker(e.Importance))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func importanceMarker(importance int) string {
	return strings.Repeat("*", clampImportance(importance))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
