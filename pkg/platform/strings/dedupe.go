// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  Gardening ", "Tutor", "Gardening", "", "  "})
//	// Returns: []string{"Gardening", "Tutor"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// UpperKey normalizes a value for use inside an index key: surrounding
// whitespace is dropped and the rest uppercased.
func UpperKey(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// LastField returns the last whitespace-separated field of s, or "" when s
// holds no fields. "Bearer abc" and "abc" both yield "abc".
func LastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
