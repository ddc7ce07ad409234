package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"satchel-cli/internal/model"
	"satchel-cli/internal/order"
)

func TestDiskv_RoundTrip(t *testing.T) {
	kv := OpenDiskv(t.TempDir())
	p := New(kv, zerolog.Nop())

	f := model.FilterState{
		Types:  []model.ItemType{model.ItemTypePDF},
		Tags:   []string{"research"},
		SortBy: model.SortTitleAZ,
	}
	p.SetScopeFilter("space-abc", f)

	got, ok := p.ScopeFilter("space-abc")
	if !ok {
		t.Fatalf("expected persisted filter")
	}
	if !reflect.DeepEqual(got, f) {
		t.Fatalf("got %+v, want %+v", got, f)
	}

	p.ClearScopeFilter("space-abc")
	if _, ok := p.ScopeFilter("space-abc"); ok {
		t.Fatalf("expected filter cleared")
	}
}

func TestDiskv_OrderingMapRoundTrip(t *testing.T) {
	kv := OpenDiskv(t.TempDir())
	p := New(kv, zerolog.Nop())

	m := order.Map{
		Spaces:     map[string][]string{"personal": {"s2", "s1"}},
		Categories: []string{"work", "personal"},
	}
	p.SetOrderingMap(m)

	got := p.OrderingMap()
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestDiskv_MissingEntryFallsBackToDefaults(t *testing.T) {
	kv := OpenDiskv(t.TempDir())
	p := New(kv, zerolog.Nop())

	if _, ok := p.ScopeFilter("never-written"); ok {
		t.Fatalf("expected ok=false for missing scope filter")
	}
	m := p.OrderingMap()
	if len(m.Spaces) != 0 || len(m.Categories) != 0 {
		t.Fatalf("expected empty ordering map, got %+v", m)
	}
	if list := p.SavedFilters(); len(list) != 0 {
		t.Fatalf("expected no saved filters, got %v", list)
	}
	if tab := p.LastCreationTab(); tab != "" {
		t.Fatalf("expected empty creation tab, got %q", tab)
	}
}

func TestDiskv_MalformedEntryTreatedAsMissing(t *testing.T) {
	dir := t.TempDir()
	kv := OpenDiskv(dir)
	p := New(kv, zerolog.Nop())

	// Write garbage where the ordering map lives.
	if err := os.MkdirAll(filepath.Join(dir, "ordering"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ordering", "map.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := p.OrderingMap()
	if len(m.Spaces) != 0 || len(m.Categories) != 0 {
		t.Fatalf("expected defaults for malformed entry, got %+v", m)
	}
}

type failingKV struct{}

func (failingKV) Get(string, any) (bool, error) { return false, errors.New("backend down") }
func (failingKV) Set(string, any) error         { return errors.New("backend down") }
func (failingKV) Delete(string) error           { return errors.New("backend down") }

func TestPrefs_BackendFailuresAreSwallowed(t *testing.T) {
	p := New(failingKV{}, zerolog.Nop())

	// None of these may panic or surface an error.
	p.SetScopeFilter("s", model.FilterState{SortBy: model.SortNewest})
	if _, ok := p.ScopeFilter("s"); ok {
		t.Fatalf("expected ok=false from failing backend")
	}
	p.SetOrderingMap(order.Map{Categories: []string{"a"}})
	if m := p.OrderingMap(); len(m.Categories) != 0 {
		t.Fatalf("expected empty map from failing backend, got %+v", m)
	}
	p.SetSavedFilters([]model.SavedFilter{{ID: "filter-x", Name: "x", CreatedAt: time.Now()}})
	if list := p.SavedFilters(); list != nil {
		t.Fatalf("expected nil saved filters from failing backend, got %v", list)
	}
	p.ClearScopeFilter("s")
}

func TestMemory_RoundTrip(t *testing.T) {
	p := New(NewMemory(), zerolog.Nop())
	p.SetLastCreationTab("link")
	if got := p.LastCreationTab(); got != "link" {
		t.Fatalf("got %q, want %q", got, "link")
	}
}
