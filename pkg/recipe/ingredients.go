package recipe

import "strings"

// ParseIngredients splits a raw comma-separated ingredients string into
// trimmed, non-empty tokens, preserving first-seen order. Duplicates are
// kept here; the bulk insert skips them on conflict.
func ParseIngredients(raw string) []string {
	var tokens []string
	for _, part := range strings.Split(raw, ",") {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
