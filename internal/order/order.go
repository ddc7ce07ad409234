package order

import "strings"

type Position string

const (
	PositionAbove Position = "above"
	PositionBelow Position = "below"
)

// Map holds the persisted ordering overlay: one ordered list of space ids per
// category, and one global ordered list of category ids.
//
// Both are partial permutations: ids present in a list are ordered as listed,
// ids that exist in the domain but are absent are appended afterward in their
// natural (creation) order. Materialize enforces that invariant.
type Map struct {
	Spaces     map[string][]string `json:"spaces,omitempty"`
	Categories []string            `json:"categories,omitempty"`
}

// Materialize overlays orderedSubset onto domainIDs.
//
// The result contains every id of domainIDs exactly once: ids named by
// orderedSubset first (in that order, skipping ids no longer in the domain and
// duplicates), then the remaining domain ids in their given natural order.
func Materialize(domainIDs, orderedSubset []string) []string {
	domain := make(map[string]bool, len(domainIDs))
	for _, id := range domainIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			domain[id] = true
		}
	}

	out := make([]string, 0, len(domainIDs))
	seen := make(map[string]bool, len(domainIDs))
	for _, id := range orderedSubset {
		id = strings.TrimSpace(id)
		if id == "" || !domain[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range domainIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// SpaceOrder returns the materialized order list for one category.
// domainIDs is the category's current space ids in natural order.
func (m *Map) SpaceOrder(categoryID string, domainIDs []string) []string {
	if m == nil {
		return Materialize(domainIDs, nil)
	}
	return Materialize(domainIDs, m.Spaces[categoryID])
}

// CategoryOrder returns the materialized global category order.
func (m *Map) CategoryOrder(domainIDs []string) []string {
	if m == nil {
		return Materialize(domainIDs, nil)
	}
	return Materialize(domainIDs, m.Categories)
}

// ReorderSpace realizes a drag-and-drop of movedID relative to targetID.
//
// domain maps each category id to its current space ids in natural order;
// sourceCat/targetCat name the categories involved (equal for an in-category
// reorder). Order lists are materialized lazily before editing so the
// partial-permutation invariant holds afterward. Dropping an id onto itself is
// a no-op. The caller owns updating Space.Category on a cross-category move.
func (m *Map) ReorderSpace(domain map[string][]string, movedID, targetID string, pos Position, sourceCat, targetCat string) {
	movedID = strings.TrimSpace(movedID)
	if m == nil || movedID == "" || movedID == strings.TrimSpace(targetID) {
		return
	}
	if m.Spaces == nil {
		m.Spaces = map[string][]string{}
	}

	src := removeID(m.SpaceOrder(sourceCat, domain[sourceCat]), movedID)

	if sourceCat == targetCat {
		m.Spaces[sourceCat] = insertRelative(src, movedID, targetID, pos)
		return
	}

	m.Spaces[sourceCat] = src

	// Materialize the target from its natural order before inserting, so
	// spaces that were never explicitly ordered don't vanish.
	dst := removeID(m.SpaceOrder(targetCat, domain[targetCat]), movedID)
	m.Spaces[targetCat] = insertRelative(dst, movedID, targetID, pos)
}

// ReorderCategory applies the same algorithm to the single global category list.
func (m *Map) ReorderCategory(domainIDs []string, movedID, targetID string, pos Position) {
	movedID = strings.TrimSpace(movedID)
	if m == nil || movedID == "" || movedID == strings.TrimSpace(targetID) {
		return
	}
	cur := removeID(m.CategoryOrder(domainIDs), movedID)
	m.Categories = insertRelative(cur, movedID, targetID, pos)
}

// Prune drops every id no longer present in the domain from all order lists.
// Persisted ordering can reference deleted spaces/categories; pruning on load
// and before persistence keeps the lists dangling-free without surfacing an
// error to the user.
func (m *Map) Prune(domain map[string][]string, categoryIDs []string) {
	if m == nil {
		return
	}

	live := map[string]bool{}
	for _, ids := range domain {
		for _, id := range ids {
			live[strings.TrimSpace(id)] = true
		}
	}
	for cat, ids := range m.Spaces {
		kept := make([]string, 0, len(ids))
		seen := map[string]bool{}
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" || !live[id] || seen[id] {
				continue
			}
			seen[id] = true
			kept = append(kept, id)
		}
		if len(kept) == 0 {
			delete(m.Spaces, cat)
			continue
		}
		m.Spaces[cat] = kept
	}
	// Drop order lists for categories that no longer exist.
	liveCats := map[string]bool{}
	for _, id := range categoryIDs {
		liveCats[strings.TrimSpace(id)] = true
	}
	for cat := range m.Spaces {
		if !liveCats[cat] {
			delete(m.Spaces, cat)
		}
	}

	keptCats := make([]string, 0, len(m.Categories))
	seen := map[string]bool{}
	for _, id := range m.Categories {
		id = strings.TrimSpace(id)
		if id == "" || !liveCats[id] || seen[id] {
			continue
		}
		seen[id] = true
		keptCats = append(keptCats, id)
	}
	m.Categories = keptCats
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == id {
			continue
		}
		out = append(out, v)
	}
	return out
}

// insertRelative inserts movedID at index(targetID) + (below ? 1 : 0).
// An empty or unknown target appends (drop past the end of the list).
func insertRelative(ids []string, movedID, targetID string, pos Position) []string {
	targetID = strings.TrimSpace(targetID)
	at := len(ids)
	if targetID != "" {
		for i, v := range ids {
			if v == targetID {
				at = i
				if pos == PositionBelow {
					at = i + 1
				}
				break
			}
		}
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:at]...)
	out = append(out, movedID)
	out = append(out, ids[at:]...)
	return out
}
