package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"satchel-cli/internal/model"
	"satchel-cli/internal/store"
)

type scopeRow struct {
	label string
	scope store.Scope
}

func (i scopeRow) FilterValue() string { return i.label }
func (i scopeRow) Title() string       { return i.label }
func (i scopeRow) Description() string { return "" }

type categoryRow struct {
	category model.Category
	grabbed  bool
}

func (i categoryRow) FilterValue() string { return i.category.Name }
func (i categoryRow) Title() string {
	t := styleHeading().Render(i.category.Name)
	if i.grabbed {
		return glyphGrab() + " " + t
	}
	return t
}
func (i categoryRow) Description() string { return "" }

type spaceRow struct {
	space   model.Space
	grabbed bool
}

func (i spaceRow) FilterValue() string { return i.space.Name }
func (i spaceRow) Title() string {
	t := i.space.Name
	if i.space.Emoji != "" {
		t = i.space.Emoji + " " + t
	}
	t = "  " + t
	if i.grabbed {
		return glyphGrab() + t
	}
	return t
}
func (i spaceRow) Description() string { return "" }

type itemRow struct {
	item      model.Item
	spaceName string
}

func (i itemRow) FilterValue() string { return i.item.Title }
func (i itemRow) Title() string {
	title := strings.TrimSpace(i.item.Title)
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s %s", typeBadge(i.item.Type), title)
}
func (i itemRow) Description() string {
	parts := make([]string, 0, 4)
	if i.spaceName != "" {
		parts = append(parts, i.spaceName)
	}
	for _, tag := range i.item.Tags {
		parts = append(parts, "#"+tag)
	}
	parts = append(parts, i.item.CreatedAt.Format("2006-01-02"))
	return strings.Join(parts, "  ")
}

func typeBadge(t model.ItemType) string {
	switch t {
	case model.ItemTypeNote:
		return styleMuted().Render("[note]")
	case model.ItemTypePDF:
		return styleMuted().Render("[pdf] ")
	case model.ItemTypeLink:
		return styleMuted().Render("[link]")
	case model.ItemTypeImage:
		return styleMuted().Render("[img] ")
	default:
		return styleMuted().Render("[?]   ")
	}
}

type spacePickRow struct {
	space    model.Space
	overview bool
}

func (i spacePickRow) FilterValue() string {
	if i.overview {
		return "overview"
	}
	return i.space.Name
}
func (i spacePickRow) Title() string {
	if i.overview {
		return "Overview (no space)"
	}
	t := i.space.Name
	if i.space.Emoji != "" {
		t = i.space.Emoji + " " + t
	}
	return t
}
func (i spacePickRow) Description() string {
	if i.overview {
		return ""
	}
	return i.space.Category
}

func newList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// We render our own header/footer and run our own search, so keep the
	// list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	return l
}
