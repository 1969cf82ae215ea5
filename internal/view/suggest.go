package view

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"herbar/client/internal/catalog"
)

// Suggest returns up to n record names that fuzzily match query, best match
// first. It backs the "did you mean" hint shown for empty results.
func Suggest(records []catalog.Record, query string, n int) []string {
	query = strings.TrimSpace(query)
	if query == "" || n <= 0 || len(records) == 0 {
		return nil
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for _, m := range matches {
		if _, ok := seen[m.Str]; ok {
			continue
		}
		seen[m.Str] = struct{}{}
		out = append(out, m.Str)
		if len(out) == n {
			break
		}
	}
	return out
}
