package publish

import (
	"bytes"
	"strconv"
	"strings"

	"satchel-cli/internal/model"
)

// RenderItemMarkdown renders one item as a standalone markdown document.
// spaceName may be empty for overview items.
func RenderItemMarkdown(item model.Item, spaceName string) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "(untitled)"
	}
	writeLn("# " + title)
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + item.ID)
	writeLn("- Type: " + string(item.Type))
	if spaceName != "" {
		writeLn("- Space: " + spaceName)
	}
	if len(item.Tags) > 0 {
		writeLn("- Tags: " + strings.Join(item.Tags, ", "))
	}
	writeLn("- Created: " + item.CreatedAt.Format("2006-01-02 15:04"))
	if strings.TrimSpace(item.SourceOrigin) != "" {
		writeLn("- Origin: " + strings.TrimSpace(item.SourceOrigin))
	}

	content := strings.TrimSpace(item.Content)
	if content != "" {
		writeLn("")
		switch item.Type {
		case model.ItemTypeLink:
			writeLn("## Link")
			writeLn("")
			writeLn("<" + content + ">")
		default:
			writeLn("## Content")
			writeLn("")
			writeLn(content)
		}
	}

	return buf.String()
}

// RenderSpaceMarkdown renders a space index: one heading plus a bulleted
// list of its items in the given order.
func RenderSpaceMarkdown(space model.Space, items []model.Item) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	name := strings.TrimSpace(space.Name)
	if space.Emoji != "" {
		name = space.Emoji + " " + name
	}
	writeLn("# " + name)
	writeLn("")
	writeLn("- Category: " + space.Category)
	writeLn("- Items: " + strconv.Itoa(len(items)))
	writeLn("")

	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = "(untitled)"
		}
		line := "- [" + string(it.Type) + "] " + title
		if len(it.Tags) > 0 {
			line += "  (" + strings.Join(it.Tags, ", ") + ")"
		}
		writeLn(line)
	}

	return buf.String()
}
