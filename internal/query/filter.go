package query

import (
	"fmt"
	"sort"
	"strings"

	"satchel-cli/internal/model"
)

// ValidationError rejects a malformed filter axis before anything is applied.
type ValidationError struct {
	Axis  string
	Value string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Axis, e.Value)
}

// Validate checks filter axis values. Pure computations downstream never
// throw for out-of-range inputs, so malformed state is rejected here,
// synchronously, with the active state left unchanged.
func Validate(f model.FilterState) error {
	for _, t := range f.Types {
		if !model.KnownItemType(t) {
			return ValidationError{Axis: "type", Value: string(t)}
		}
	}
	if f.SortBy != "" && !model.KnownSortKey(f.SortBy) {
		return ValidationError{Axis: "sort", Value: string(f.SortBy)}
	}
	if f.DateRange.From != nil && f.DateRange.To != nil && f.DateRange.To.Before(*f.DateRange.From) {
		return ValidationError{Axis: "dateRange", Value: "to before from"}
	}
	return nil
}

// Matches applies the structural axes (type, space, tags, date) to one item.
// An empty set on any axis is "no constraint", never "match nothing".
// Tags use AND semantics: the item's tag set must be a superset of the
// filter's tags. Filters stack as refinements in the UI, so each selected
// tag narrows the result rather than widening it.
func Matches(it model.Item, f model.FilterState) bool {
	if len(f.Types) > 0 && !containsType(f.Types, it.Type) {
		return false
	}
	if len(f.Spaces) > 0 {
		if it.SpaceID == nil || !containsString(f.Spaces, *it.SpaceID) {
			return false
		}
	}
	for _, tag := range f.Tags {
		if !it.HasTag(tag) {
			return false
		}
	}
	if !f.DateRange.IsZero() && !f.DateRange.Contains(it.CreatedAt) {
		return false
	}
	return true
}

// matchesSearch is the free-text pass, applied after the structural filters:
// case-insensitive substring match against the title or any tag.
func matchesSearch(it model.Item, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), search) {
		return true
	}
	for _, t := range it.Tags {
		if strings.Contains(strings.ToLower(t), search) {
			return true
		}
	}
	return false
}

// Apply filters, searches and sorts items. The input slice is not modified.
func Apply(items []model.Item, f model.FilterState, search string) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !Matches(it, f) {
			continue
		}
		if !matchesSearch(it, search) {
			continue
		}
		out = append(out, it)
	}
	SortItems(out, f.SortBy)
	return out
}

// SortItems sorts in place by the given key. Ties always break by id
// ascending so the order is deterministic and pagination stays stable.
// An empty key sorts newest-first.
func SortItems(items []model.Item, key model.SortKey) {
	less := func(a, b model.Item) bool {
		switch key {
		case model.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case model.SortTitleAZ:
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta < tb
			}
		case model.SortTitleZA:
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta > tb
			}
		default: // newest
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// Vocabulary returns the union of tags across items, lowercased, sorted.
// This drives tag autocomplete for the current scope and is recomputed
// whenever the scope's collection changes.
func Vocabulary(items []model.Item) []string {
	set := map[string]bool{}
	for _, it := range items {
		for _, t := range it.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				set[t] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func containsType(ts []model.ItemType, t model.ItemType) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
