package order

import (
	"reflect"
	"testing"
)

func TestMaterialize_OverlaysPartialPermutation(t *testing.T) {
	domain := []string{"s1", "s2", "s3", "s4"}

	got := Materialize(domain, []string{"s3", "s1"})
	want := []string{"s3", "s1", "s2", "s4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("materialize: got %v, want %v", got, want)
	}
}

func TestMaterialize_DropsDanglingAndDuplicates(t *testing.T) {
	domain := []string{"s1", "s2"}

	got := Materialize(domain, []string{"s2", "gone", "s2", "s1"})
	want := []string{"s2", "s1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("materialize: got %v, want %v", got, want)
	}
}

func TestMaterialize_EmptySubsetKeepsNaturalOrder(t *testing.T) {
	domain := []string{"s1", "s2", "s3"}
	got := Materialize(domain, nil)
	if !reflect.DeepEqual(got, domain) {
		t.Fatalf("materialize: got %v, want natural order %v", got, domain)
	}
}

func TestReorderSpace_WithinCategory(t *testing.T) {
	domain := map[string][]string{"personal": {"s1", "s2", "s3"}}
	m := &Map{Spaces: map[string][]string{"personal": {"s1", "s2", "s3"}}}

	m.ReorderSpace(domain, "s3", "s1", PositionAbove, "personal", "personal")
	want := []string{"s3", "s1", "s2"}
	if !reflect.DeepEqual(m.Spaces["personal"], want) {
		t.Fatalf("after move above: got %v, want %v", m.Spaces["personal"], want)
	}

	m.ReorderSpace(domain, "s3", "s1", PositionBelow, "personal", "personal")
	want = []string{"s1", "s3", "s2"}
	if !reflect.DeepEqual(m.Spaces["personal"], want) {
		t.Fatalf("after move below: got %v, want %v", m.Spaces["personal"], want)
	}
}

func TestReorderSpace_SelfDropIsNoOp(t *testing.T) {
	domain := map[string][]string{"personal": {"s1", "s2", "s3"}}
	m := &Map{Spaces: map[string][]string{"personal": {"s2", "s1", "s3"}}}

	m.ReorderSpace(domain, "s2", "s2", PositionAbove, "personal", "personal")
	want := []string{"s2", "s1", "s3"}
	if !reflect.DeepEqual(m.Spaces["personal"], want) {
		t.Fatalf("self drop (above) changed order: got %v, want %v", m.Spaces["personal"], want)
	}

	m.ReorderSpace(domain, "s2", "s2", PositionBelow, "personal", "personal")
	if !reflect.DeepEqual(m.Spaces["personal"], want) {
		t.Fatalf("self drop (below) changed order: got %v, want %v", m.Spaces["personal"], want)
	}
}

func TestReorderSpace_LazilyMaterializesUnorderedSource(t *testing.T) {
	// No explicit order list yet for "personal": the reorder should overlay
	// the natural order before editing, not start from an empty list.
	domain := map[string][]string{"personal": {"s1", "s2", "s3"}}
	m := &Map{}

	m.ReorderSpace(domain, "s1", "s3", PositionBelow, "personal", "personal")
	want := []string{"s2", "s3", "s1"}
	if !reflect.DeepEqual(m.Spaces["personal"], want) {
		t.Fatalf("got %v, want %v", m.Spaces["personal"], want)
	}
}

func TestReorderSpace_AcrossCategories_AppendsToMaterializedTarget(t *testing.T) {
	// "shared" has an explicit order; "team" does not and holds t1, t2.
	// Moving s2 into "team" with no drop target must materialize team's
	// natural order first and append s2 last.
	domain := map[string][]string{
		"shared": {"s1", "s2"},
		"team":   {"t1", "t2"},
	}
	m := &Map{Spaces: map[string][]string{"shared": {"s1", "s2"}}}

	m.ReorderSpace(domain, "s2", "", PositionBelow, "shared", "team")

	if want := []string{"s1"}; !reflect.DeepEqual(m.Spaces["shared"], want) {
		t.Fatalf("source order: got %v, want %v", m.Spaces["shared"], want)
	}
	if want := []string{"t1", "t2", "s2"}; !reflect.DeepEqual(m.Spaces["team"], want) {
		t.Fatalf("target order: got %v, want %v", m.Spaces["team"], want)
	}
}

func TestReorderSpace_AcrossCategories_InsertAboveTarget(t *testing.T) {
	domain := map[string][]string{
		"work": {"w1", "w2"},
		"team": {"t1", "t2"},
	}
	m := &Map{}

	m.ReorderSpace(domain, "w2", "t2", PositionAbove, "work", "team")

	if want := []string{"w1"}; !reflect.DeepEqual(m.Spaces["work"], want) {
		t.Fatalf("source order: got %v, want %v", m.Spaces["work"], want)
	}
	if want := []string{"t1", "w2", "t2"}; !reflect.DeepEqual(m.Spaces["team"], want) {
		t.Fatalf("target order: got %v, want %v", m.Spaces["team"], want)
	}
}

func TestReorderCategory(t *testing.T) {
	domain := []string{"personal", "work", "shared", "team"}
	m := &Map{}

	m.ReorderCategory(domain, "team", "personal", PositionAbove)
	want := []string{"team", "personal", "work", "shared"}
	if !reflect.DeepEqual(m.Categories, want) {
		t.Fatalf("got %v, want %v", m.Categories, want)
	}

	// Self drop: unchanged.
	m.ReorderCategory(domain, "work", "work", PositionBelow)
	if !reflect.DeepEqual(m.Categories, want) {
		t.Fatalf("self drop changed order: got %v, want %v", m.Categories, want)
	}
}

func TestPrune_RemovesDanglingIDs(t *testing.T) {
	m := &Map{
		Spaces: map[string][]string{
			"personal": {"s1", "gone", "s2", "s1"},
			"orphan":   {"x1"},
		},
		Categories: []string{"personal", "deleted-cat", "work"},
	}

	m.Prune(map[string][]string{"personal": {"s1", "s2"}, "work": nil}, []string{"personal", "work"})

	if want := []string{"s1", "s2"}; !reflect.DeepEqual(m.Spaces["personal"], want) {
		t.Fatalf("personal: got %v, want %v", m.Spaces["personal"], want)
	}
	if _, ok := m.Spaces["orphan"]; ok {
		t.Fatalf("expected orphan category order list to be dropped")
	}
	if want := []string{"personal", "work"}; !reflect.DeepEqual(m.Categories, want) {
		t.Fatalf("categories: got %v, want %v", m.Categories, want)
	}
}

func TestPrune_EveryLiveIDAppearsExactlyOnce(t *testing.T) {
	domain := map[string][]string{
		"personal": {"s1", "s2"},
		"work":     {"s3"},
	}
	m := &Map{Spaces: map[string][]string{
		"personal": {"s2", "s2", "stale"},
		"work":     {},
	}}
	m.Prune(domain, []string{"personal", "work"})

	counts := map[string]int{}
	for cat, ids := range domain {
		for _, id := range m.SpaceOrder(cat, ids) {
			counts[id]++
		}
	}
	for _, id := range []string{"s1", "s2", "s3"} {
		if counts[id] != 1 {
			t.Fatalf("id %s appears %d times, want exactly once", id, counts[id])
		}
	}
}

func TestDrag_RejectsSecondStart(t *testing.T) {
	var d Drag
	if err := d.Start(DragSpace, "s1", "personal"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := d.Start(DragCategory, "work", ""); err != ErrDragActive {
		t.Fatalf("second start: got %v, want ErrDragActive", err)
	}

	info, ok := d.Drop()
	if !ok {
		t.Fatalf("expected active drag on drop")
	}
	if info.Kind != DragSpace || info.ID != "s1" || info.SourceParent != "personal" {
		t.Fatalf("unexpected drag info: %+v", info)
	}
	if _, ok := d.Drop(); ok {
		t.Fatalf("drop after drop should report no active drag")
	}
}

func TestDrag_CancelReturnsToIdle(t *testing.T) {
	var d Drag
	if err := d.Start(DragCategory, "work", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	d.Cancel()
	if _, ok := d.Active(); ok {
		t.Fatalf("expected idle after cancel")
	}
	if err := d.Start(DragSpace, "s1", "personal"); err != nil {
		t.Fatalf("start after cancel: %v", err)
	}
}
