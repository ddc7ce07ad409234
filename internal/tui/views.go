package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"satchel-cli/internal/format"
	"satchel-cli/internal/model"
)

func (m appModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.headerLine())

	var body string
	switch m.view {
	case viewSidebar:
		body = m.sidebarList.View()
	case viewItems:
		body = m.itemsList.View()
	case viewDetail:
		body = m.viewDetail()
	case viewMovePicker:
		body = m.pickerList.View()
	}

	if m.modal != modalNone {
		body = m.viewModal()
	}

	return strings.Join([]string{header, body, m.footerLine()}, "\n\n")
}

func (m appModel) headerLine() string {
	switch m.view {
	case viewSidebar:
		return fmt.Sprintf("Satchel  %s", m.s.Dir)
	case viewMovePicker:
		return "Move to..."
	default:
		title := m.scopeTitle
		if title == "" {
			title = "All items"
		}
		line := fmt.Sprintf("Satchel %s %s", glyphArrow(), title)
		if summary := format.FilterSummary(m.filter); summary != "(everything)" {
			line += "  " + styleMuted().Render(summary)
		}
		if m.search != "" {
			line += "  " + styleMuted().Render(fmt.Sprintf("search:%q", m.search))
		}
		return line
	}
}

func (m appModel) footerLine() string {
	var help string
	switch m.view {
	case viewSidebar:
		help = "enter: open  g: grab/drop  esc: cancel move  q: quit"
	case viewItems:
		pager := fmt.Sprintf("page %d/%d %s %d item(s) %s %d/page",
			m.pageInfo.CurrentPage, m.pageInfo.TotalPages, glyphBullet(), m.pageInfo.TotalItems, glyphBullet(), m.pageSize)
		help = pager + "\n" + "enter: open  n: new  d: delete  u: undo  m: move  /: search  t: type  s: sort  f: clear  [/]: page  p: page size  esc: back"
	case viewDetail:
		help = "esc: back"
	case viewMovePicker:
		help = "enter: move here  esc: cancel"
	}

	lines := []string{styleMuted().Render(help)}
	if remaining := m.undoRemaining(); remaining > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorAccent).Render(
			fmt.Sprintf("deleted %s press u to undo (%ds)", glyphBullet(), remaining)))
	} else if m.status != "" {
		st := styleMuted()
		if m.statusIsErr {
			st = lipgloss.NewStyle().Foreground(colorErrorFg)
		}
		lines = append(lines, st.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewDetail() string {
	row, ok := m.itemsList.SelectedItem().(itemRow)
	if !ok {
		return "No item selected."
	}
	it := row.item

	w := m.width - 4
	if w < 30 {
		w = 30
	}

	title := xansi.Truncate(it.Title, w, "…")
	head := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(title)

	meta := []string{string(it.Type), it.CreatedAt.Format("2006-01-02 15:04")}
	if row.spaceName != "" {
		meta = append(meta, row.spaceName)
	}
	for _, tag := range it.Tags {
		meta = append(meta, "#"+tag)
	}
	if it.SourceOrigin != "" {
		meta = append(meta, it.SourceOrigin)
	}
	metaLine := styleMuted().Render(strings.Join(meta, "  "))

	var body string
	switch it.Type {
	case model.ItemTypeNote:
		body = renderMarkdown(it.Content, w)
	case model.ItemTypeLink:
		body = lipgloss.NewStyle().Foreground(colorAccent).Underline(true).Render(it.Content)
	default:
		body = styleMuted().Render(it.Content)
	}
	if strings.TrimSpace(body) == "" {
		body = styleMuted().Render("(no content)")
	}

	return strings.Join([]string{head, metaLine, "", body}, "\n")
}

func (m appModel) viewModal() string {
	var title string
	switch m.modal {
	case modalSearch:
		title = "Search"
	case modalNewItem:
		title = fmt.Sprintf("New %s (tab to change type)", m.newItemType)
	}
	head := styleHeading().Render(title)
	return strings.Join([]string{head, "", m.input.View(), "", styleMuted().Render("enter: confirm  esc: cancel")}, "\n")
}
