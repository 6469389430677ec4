// Package strings provides parsing helpers for list-valued settings.
package strings

import "strings"

// SplitList splits a comma-separated value, trimming entries and dropping
// empties and repeats. Order is preserved.
//
//	SplitList(" a:9092, b:9092 ,a:9092,,") // []string{"a:9092", "b:9092"}
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SplitPairs parses "key=value" entries from a comma-separated list. Entries
// without '=' are skipped; later keys win.
func SplitPairs(value string) map[string]string {
	pairs := make(map[string]string)
	for _, entry := range SplitList(value) {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" {
			continue
		}
		pairs[k] = v
	}
	return pairs
}
