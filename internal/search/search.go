// Package search filters in-memory collections by case-insensitive
// substring match over their textual fields.
package search

import "strings"

// Filter returns the items with at least one field containing query,
// ignoring case, in their original order. A blank query returns items as is.
func Filter[T any](items []T, query string, fields func(*T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for i := range items {
		if matches(fields(&items[i]), q) {
			out = append(out, items[i])
		}
	}
	return out
}

func matches(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
