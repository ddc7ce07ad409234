package tui

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"satchel-cli/internal/model"
	"satchel-cli/internal/mutate"
	"satchel-cli/internal/prefs"
	"satchel-cli/internal/store"
)

func newTestApp(t *testing.T) (appModel, *store.DB, *prefs.Prefs) {
	t.Helper()
	s := store.Store{Dir: t.TempDir()}
	db, err := store.Open(context.Background(), s)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	p := prefs.New(prefs.NewMemory(), zerolog.Nop())
	m := newAppModel(s, db, p, zerolog.Nop(), mutate.NopNotifier{})
	return m, db, p
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.Msg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		res, _ := m.Update(msg)
		m = res.(appModel)
	}
	return m
}

func TestEnterScopeRestoresPersistedFilter(t *testing.T) {
	m, db, p := newTestApp(t)

	if _, err := db.CreateItem(context.Background(), store.ItemDraft{Title: "a note", Type: "note"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateItem(context.Background(), store.ItemDraft{Title: "a paper", Type: "pdf"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	p.SetScopeFilter("all", model.FilterState{Types: []model.ItemType{model.ItemTypePDF}})

	m.enterScope(store.Scope{}, "All items")

	if len(m.filter.Types) != 1 || m.filter.Types[0] != model.ItemTypePDF {
		t.Fatalf("filter not restored: %+v", m.filter)
	}
	if len(m.filtered) != 1 || m.filtered[0].Title != "a paper" {
		t.Fatalf("filtered view: %+v", m.filtered)
	}
}

func TestDeleteThenUndoKeys(t *testing.T) {
	m, db, _ := newTestApp(t)

	if _, err := db.CreateItem(context.Background(), store.ItemDraft{Title: "ephemeral", Type: "note"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	m.enterScope(store.Scope{}, "All items")
	if len(m.filtered) != 1 {
		t.Fatalf("setup: %d items", len(m.filtered))
	}

	m = press(t, m, "d")
	if len(m.filtered) != 0 {
		t.Fatalf("delete did not remove the item: %+v", m.filtered)
	}
	if m.undoRemaining() == 0 {
		t.Fatalf("no undo countdown after delete")
	}

	m = press(t, m, "u")
	if len(m.filtered) != 1 || m.filtered[0].Title != "ephemeral" {
		t.Fatalf("undo did not restore the item: %+v", m.filtered)
	}
	if m.undoRemaining() != 0 {
		t.Fatalf("countdown still running after undo")
	}

	// Nothing left to undo.
	m = press(t, m, "u")
	if len(m.filtered) != 1 {
		t.Fatalf("second undo changed the list: %+v", m.filtered)
	}
}

func TestSidebarGrabAndDropReordersSpaces(t *testing.T) {
	m, db, p := newTestApp(t)

	alpha, err := db.CreateSpace(context.Background(), "Alpha", "", "work")
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	beta, err := db.CreateSpace(context.Background(), "Beta", "", "work")
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	m.refreshSidebar()

	selectSpace := func(id string) {
		for i, row := range m.sidebarList.Items() {
			if sp, ok := row.(spaceRow); ok && sp.space.ID == id {
				m.sidebarList.Select(i)
				return
			}
		}
		t.Fatalf("space %s not in sidebar", id)
	}

	selectSpace(beta.ID)
	m = press(t, m, "g")
	if _, active := m.drag.Active(); !active {
		t.Fatalf("grab did not start a drag")
	}

	selectSpace(alpha.ID)
	m = press(t, m, "g")
	if _, active := m.drag.Active(); active {
		t.Fatalf("drop did not end the drag")
	}

	got := p.OrderingMap().Spaces["work"]
	want := []string{beta.ID, alpha.ID}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("work order: got %v, want %v", got, want)
	}
}

func TestSidebarEscCancelsDrag(t *testing.T) {
	m, db, p := newTestApp(t)

	sp, err := db.CreateSpace(context.Background(), "Solo", "", "personal")
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	m.refreshSidebar()
	for i, row := range m.sidebarList.Items() {
		if r, ok := row.(spaceRow); ok && r.space.ID == sp.ID {
			m.sidebarList.Select(i)
		}
	}

	m = press(t, m, "g", "esc")
	if _, active := m.drag.Active(); active {
		t.Fatalf("esc did not cancel the drag")
	}
	if len(p.OrderingMap().Spaces) != 0 {
		t.Fatalf("canceled drag wrote an ordering: %v", p.OrderingMap().Spaces)
	}
}

func TestPageSizeCycleKeepsFirstItemVisible(t *testing.T) {
	m, db, _ := newTestApp(t)

	for i := 0; i < 60; i++ {
		if _, err := db.CreateItem(context.Background(), store.ItemDraft{Title: fmt.Sprintf("item %02d", i), Type: "note"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	m.enterScope(store.Scope{}, "All items")

	m = press(t, m, "]", "]")
	if m.pageInfo.CurrentPage != 3 {
		t.Fatalf("page: got %d, want 3", m.pageInfo.CurrentPage)
	}

	m = press(t, m, "p")
	if m.pageSize != 50 {
		t.Fatalf("page size: got %d, want 50", m.pageSize)
	}
	// First item of old page 3 (index 50) lands on page 2 at size 50.
	if m.pageInfo.CurrentPage != 2 {
		t.Fatalf("retargeted page: got %d, want 2", m.pageInfo.CurrentPage)
	}
}

func TestSearchModalFiltersItems(t *testing.T) {
	m, db, _ := newTestApp(t)

	if _, err := db.CreateItem(context.Background(), store.ItemDraft{Title: "Go generics", Type: "note"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateItem(context.Background(), store.ItemDraft{Title: "Gardening", Type: "note"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	m.enterScope(store.Scope{}, "All items")

	m = press(t, m, "/")
	if m.modal != modalSearch {
		t.Fatalf("search modal not open")
	}
	m = press(t, m, "g", "e", "n", "e", "r", "enter")
	if m.modal != modalNone {
		t.Fatalf("modal still open after enter")
	}
	if len(m.filtered) != 1 || m.filtered[0].Title != "Go generics" {
		t.Fatalf("search result: %+v", m.filtered)
	}
}
