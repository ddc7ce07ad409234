package store

import (
	"sort"
	"strings"
)

// normalizeTags lowercases, trims, dedupes and sorts. Tag sets have no
// meaningful insertion order, so a canonical form keeps comparisons cheap.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	set := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
