package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"satchel-cli/internal/model"
	"satchel-cli/internal/mutate"
	"satchel-cli/internal/order"
	"satchel-cli/internal/prefs"
	"satchel-cli/internal/query"
	"satchel-cli/internal/store"
)

type view int

const (
	viewSidebar view = iota
	viewItems
	viewDetail
	viewMovePicker
)

type modalKind int

const (
	modalNone modalKind = iota
	modalNewItem
	modalSearch
)

type undoExpiredMsg struct{ itemIDs []string }

type undoTickMsg struct{}

type appModel struct {
	s     store.Store
	db    *store.DB
	prefs *prefs.Prefs

	engine   *query.Engine
	registry *query.Registry
	coord    *mutate.Coordinator
	drag     order.Drag

	width  int
	height int

	view  view
	modal modalKind

	sidebarList list.Model
	itemsList   list.Model
	pickerList  list.Model

	scope      store.Scope
	scopeTitle string

	allItems []model.Item
	filtered []model.Item
	filter   model.FilterState
	search   string
	page     int
	pageSize int
	pageInfo query.Page

	spaceNames map[string]string

	input       textinput.Model
	newItemType model.ItemType

	status       string
	statusIsErr  bool
	undoDeadline time.Time
}

func newAppModel(s store.Store, db *store.DB, p *prefs.Prefs, log zerolog.Logger, notify mutate.Notifier) appModel {
	m := appModel{
		s:        s,
		db:       db,
		prefs:    p,
		engine:   query.NewEngine(p),
		registry: query.NewRegistry(p),
		coord:    mutate.New(db, notify, log),
		view:     viewSidebar,
		page:     1,
		pageSize: query.DefaultPageSize,
	}

	m.sidebarList = newList(nil)
	m.itemsList = newList(nil)
	m.pickerList = newList(nil)

	m.input = textinput.New()

	m.newItemType = model.ItemTypeNote
	if t := model.ItemType(p.LastCreationTab()); model.KnownItemType(t) {
		m.newItemType = t
	}

	m.refreshSidebar()
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case undoExpiredMsg:
		if m.coord.PendingUndo() == 0 {
			m.undoDeadline = time.Time{}
			m.setStatus(fmt.Sprintf("%d item(s) gone for good", len(msg.itemIDs)), false)
		}
		return m, nil

	case undoTickMsg:
		if m.coord.PendingUndo() == 0 {
			m.undoDeadline = time.Time{}
			return m, nil
		}
		return m, tickUndo()

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateKey(msg)
	}
	return m.updateActiveList(msg)
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	switch m.view {
	case viewSidebar:
		return m.updateSidebarKey(msg)
	case viewItems:
		return m.updateItemsKey(msg)
	case viewDetail:
		switch msg.String() {
		case "esc", "backspace":
			m.view = viewItems
			return m, nil
		}
		return m, nil
	case viewMovePicker:
		return m.updateMovePickerKey(msg)
	}
	return m, nil
}

func (m appModel) updateSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if _, active := m.drag.Active(); active {
			m.drag.Cancel()
			m.refreshSidebar()
			m.setStatus("move canceled", false)
		}
		return m, nil

	case "g":
		return m.grabOrDrop()

	case "enter":
		if _, active := m.drag.Active(); active {
			return m.grabOrDrop()
		}
		switch row := m.sidebarList.SelectedItem().(type) {
		case scopeRow:
			m.enterScope(row.scope, row.label)
			return m, nil
		case spaceRow:
			m.enterScope(store.Scope{SpaceID: row.space.ID}, row.space.Name)
			return m, nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.sidebarList, cmd = m.sidebarList.Update(msg)
	return m, cmd
}

func (m appModel) updateItemsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.view = viewSidebar
		return m, nil

	case "enter":
		if _, ok := m.itemsList.SelectedItem().(itemRow); ok {
			m.view = viewDetail
		}
		return m, nil

	case "]":
		m.page++
		m.applyQuery()
		return m, nil

	case "[":
		if m.page > 1 {
			m.page--
			m.applyQuery()
		}
		return m, nil

	case "p":
		next := nextPageSize(m.pageSize)
		m.page = query.RetargetPage(m.pageInfo.CurrentPage, m.pageSize, next)
		m.pageSize = next
		m.applyQuery()
		return m, nil

	case "s":
		m.filter.SortBy = nextSortKey(m.filter.SortBy)
		m.page = 1
		m.applyQuery()
		return m, nil

	case "t":
		m.filter.Types = nextTypeFilter(m.filter.Types)
		m.page = 1
		m.applyQuery()
		return m, nil

	case "f":
		m.filter = model.FilterState{}
		m.search = ""
		m.engine.Clear(m.scope.Key())
		m.page = 1
		m.applyQuery()
		m.setStatus("filters cleared", false)
		return m, nil

	case "/":
		m.modal = modalSearch
		m.input.Placeholder = "Search titles and tags"
		m.input.SetValue(m.search)
		m.input.Focus()
		return m, nil

	case "n":
		m.modal = modalNewItem
		m.input.Placeholder = "Title"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case "m":
		if _, ok := m.itemsList.SelectedItem().(itemRow); ok {
			m.refreshMovePicker()
			m.view = viewMovePicker
		}
		return m, nil

	case "d":
		row, ok := m.itemsList.SelectedItem().(itemRow)
		if !ok {
			return m, nil
		}
		after, err := m.coord.DeleteItems(context.Background(), m.allItems, []string{row.item.ID})
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.allItems = after
		m.undoDeadline = time.Now().Add(mutate.UndoWindow)
		m.applyQuery()
		return m, tickUndo()

	case "u":
		restored, ok, err := m.coord.Undo(context.Background(), m.allItems)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if !ok {
			m.setStatus("nothing to undo", false)
			return m, nil
		}
		m.allItems = restored
		m.undoDeadline = time.Time{}
		m.applyQuery()
		m.setStatus("restored", false)
		return m, nil
	}

	var cmd tea.Cmd
	m.itemsList, cmd = m.itemsList.Update(msg)
	return m, cmd
}

func (m appModel) updateMovePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.view = viewItems
		return m, nil

	case "enter":
		pick, ok := m.pickerList.SelectedItem().(spacePickRow)
		if !ok {
			return m, nil
		}
		row, ok := m.itemsList.SelectedItem().(itemRow)
		if !ok {
			m.view = viewItems
			return m, nil
		}
		var target *string
		label := "Overview"
		if !pick.overview {
			id := pick.space.ID
			target = &id
			label = pick.space.Name
		}
		after, err := m.coord.MoveItems(context.Background(), m.allItems, []string{row.item.ID}, target)
		if err != nil {
			m.setStatus(err.Error(), true)
			m.view = viewItems
			return m, nil
		}
		m.allItems = after
		// A scoped view no longer contains the moved item.
		if m.scope.SpaceID != "" || m.scope.Overview {
			m.reloadScopeItems()
		}
		m.applyQuery()
		m.view = viewItems
		m.setStatus(fmt.Sprintf("moved %s %s", glyphArrow(), label), false)
		return m, nil
	}

	var cmd tea.Cmd
	m.pickerList, cmd = m.pickerList.Update(msg)
	return m, cmd
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.input.Blur()
		return m, nil

	case "tab":
		if m.modal == modalNewItem {
			m.newItemType = nextItemType(m.newItemType)
		}
		return m, nil

	case "enter":
		switch m.modal {
		case modalSearch:
			m.search = strings.TrimSpace(m.input.Value())
			m.page = 1
			m.applyQuery()
		case modalNewItem:
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				break
			}
			draft := store.ItemDraft{Title: title, Type: m.newItemType}
			if m.scope.SpaceID != "" {
				id := m.scope.SpaceID
				draft.SpaceID = &id
			}
			if _, err := m.db.CreateItem(context.Background(), draft); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.prefs.SetLastCreationTab(string(m.newItemType))
				m.reloadScopeItems()
				m.applyQuery()
				m.setStatus("created "+title, false)
			}
		}
		m.modal = modalNone
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewSidebar:
		m.sidebarList, cmd = m.sidebarList.Update(msg)
	case viewItems:
		m.itemsList, cmd = m.itemsList.Update(msg)
	case viewMovePicker:
		m.pickerList, cmd = m.pickerList.Update(msg)
	}
	return m, cmd
}

// grabOrDrop implements keyboard reordering in the sidebar: the first press
// grabs the selected row, the second drops it relative to the selection.
func (m appModel) grabOrDrop() (tea.Model, tea.Cmd) {
	if info, active := m.drag.Active(); active {
		m.drag.Drop()
		m.applyDrop(info)
		m.refreshSidebar()
		return m, nil
	}

	switch row := m.sidebarList.SelectedItem().(type) {
	case spaceRow:
		if err := m.drag.Start(order.DragSpace, row.space.ID, row.space.Category); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
	case categoryRow:
		if err := m.drag.Start(order.DragCategory, row.category.ID, ""); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
	default:
		return m, nil
	}
	m.refreshSidebar()
	m.setStatus("move: select a destination, press g to drop, esc to cancel", false)
	return m, nil
}

func (m *appModel) applyDrop(info order.DragInfo) {
	ctx := context.Background()

	switch info.Kind {
	case order.DragSpace:
		moved, err := m.db.GetSpace(ctx, info.ID)
		if err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		var targetID, targetCat string
		switch row := m.sidebarList.SelectedItem().(type) {
		case spaceRow:
			targetID = row.space.ID
			targetCat = row.space.Category
		case categoryRow:
			targetCat = row.category.ID
		default:
			m.setStatus("cannot drop there", true)
			return
		}
		if err := m.reorderSpace(ctx, moved, targetID, targetCat); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.setStatus("moved "+moved.Name, false)

	case order.DragCategory:
		row, ok := m.sidebarList.SelectedItem().(categoryRow)
		if !ok {
			m.setStatus("cannot drop there", true)
			return
		}
		categories, err := m.db.ListCategories(ctx)
		if err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		catIDs := make([]string, len(categories))
		for i, c := range categories {
			catIDs[i] = c.ID
		}
		om := m.prefs.OrderingMap()
		om.ReorderCategory(catIDs, info.ID, row.category.ID, order.PositionAbove)
		m.prefs.SetOrderingMap(om)
		m.setStatus("moved category", false)
	}
}

func (m *appModel) reorderSpace(ctx context.Context, moved model.Space, targetID, targetCat string) error {
	spaces, err := m.db.ListSpaces(ctx)
	if err != nil {
		return err
	}
	domain := map[string][]string{}
	for _, sp := range spaces {
		domain[sp.Category] = append(domain[sp.Category], sp.ID)
	}

	om := m.prefs.OrderingMap()
	om.ReorderSpace(domain, moved.ID, targetID, order.PositionAbove, moved.Category, targetCat)
	if moved.Category != targetCat {
		if err := m.db.SetSpaceCategory(ctx, moved.ID, targetCat); err != nil {
			return err
		}
	}
	m.prefs.SetOrderingMap(om)
	return nil
}

func (m *appModel) refreshSidebar() {
	ctx := context.Background()
	categories, err := m.db.ListCategories(ctx)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	spaces, err := m.db.ListSpaces(ctx)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}

	m.spaceNames = make(map[string]string, len(spaces))
	for _, sp := range spaces {
		m.spaceNames[sp.ID] = sp.Name
	}

	domain := map[string][]string{}
	byID := map[string]model.Space{}
	for _, sp := range spaces {
		domain[sp.Category] = append(domain[sp.Category], sp.ID)
		byID[sp.ID] = sp
	}
	catIDs := make([]string, len(categories))
	catByID := map[string]model.Category{}
	for i, c := range categories {
		catIDs[i] = c.ID
		catByID[c.ID] = c
	}

	grabbedID := ""
	if info, active := m.drag.Active(); active {
		grabbedID = info.ID
	}

	om := m.prefs.OrderingMap()
	rows := []list.Item{
		scopeRow{label: "All items", scope: store.Scope{}},
		scopeRow{label: "Overview", scope: store.Scope{Overview: true}},
	}
	for _, catID := range om.CategoryOrder(catIDs) {
		cat := catByID[catID]
		rows = append(rows, categoryRow{category: cat, grabbed: cat.ID == grabbedID})
		for _, spID := range om.SpaceOrder(catID, domain[catID]) {
			rows = append(rows, spaceRow{space: byID[spID], grabbed: spID == grabbedID})
		}
	}

	cur := m.sidebarList.Index()
	m.sidebarList.SetItems(rows)
	if cur >= 0 && cur < len(rows) {
		m.sidebarList.Select(cur)
	}
}

func (m *appModel) refreshMovePicker() {
	spaces, err := m.db.ListSpaces(context.Background())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	rows := []list.Item{spacePickRow{overview: true}}
	for _, sp := range spaces {
		rows = append(rows, spacePickRow{space: sp})
	}
	m.pickerList.SetItems(rows)
	m.pickerList.Select(0)
}

func (m *appModel) enterScope(scope store.Scope, title string) {
	m.scope = scope
	m.scopeTitle = title
	m.filter = m.engine.Restore(scope.Key())
	m.search = ""
	m.page = 1
	m.view = viewItems
	m.reloadScopeItems()
	m.applyQuery()
}

func (m *appModel) reloadScopeItems() {
	items, err := m.db.ListItems(context.Background(), m.scope)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.allItems = items
}

func (m *appModel) applyQuery() {
	filtered, err := m.engine.Apply(m.allItems, m.filter, m.search, m.scope.Key())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.filtered = filtered

	pg, err := query.Paginate(filtered, m.page, m.pageSize)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.page = pg.CurrentPage
	m.pageInfo = pg

	curID := ""
	if row, ok := m.itemsList.SelectedItem().(itemRow); ok {
		curID = row.item.ID
	}
	rows := make([]list.Item, 0, len(pg.Items))
	for _, it := range pg.Items {
		name := ""
		if it.SpaceID != nil {
			name = m.spaceNames[*it.SpaceID]
		}
		rows = append(rows, itemRow{item: it, spaceName: name})
	}
	m.itemsList.SetItems(rows)
	for i, r := range rows {
		if r.(itemRow).item.ID == curID {
			m.itemsList.Select(i)
			break
		}
	}
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.sidebarList.SetSize(w, h)
	m.itemsList.SetSize(w, h)
	m.pickerList.SetSize(w, h)
}

func tickUndo() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return undoTickMsg{} })
}

func nextPageSize(size int) int {
	for i, s := range query.PageSizes {
		if s == size {
			return query.PageSizes[(i+1)%len(query.PageSizes)]
		}
	}
	return query.DefaultPageSize
}

func nextSortKey(k model.SortKey) model.SortKey {
	switch k {
	case "", model.SortNewest:
		return model.SortOldest
	case model.SortOldest:
		return model.SortTitleAZ
	case model.SortTitleAZ:
		return model.SortTitleZA
	default:
		return model.SortNewest
	}
}

func nextItemType(t model.ItemType) model.ItemType {
	switch t {
	case model.ItemTypeNote:
		return model.ItemTypePDF
	case model.ItemTypePDF:
		return model.ItemTypeLink
	case model.ItemTypeLink:
		return model.ItemTypeImage
	default:
		return model.ItemTypeNote
	}
}

// nextTypeFilter cycles the type axis through the single-type filters and
// back to unconstrained.
func nextTypeFilter(types []model.ItemType) []model.ItemType {
	if len(types) == 0 {
		return []model.ItemType{model.ItemTypeNote}
	}
	next := nextItemType(types[len(types)-1])
	if next == model.ItemTypeNote {
		return nil
	}
	return []model.ItemType{next}
}

func (m appModel) undoRemaining() int {
	if m.undoDeadline.IsZero() {
		return 0
	}
	left := time.Until(m.undoDeadline)
	if left <= 0 {
		return 0
	}
	return int(left.Round(time.Second) / time.Second)
}
