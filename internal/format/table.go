package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"satchel-cli/internal/model"
	"satchel-cli/internal/query"
)

const dateLayout = "2006-01-02"

// ItemsTable renders one page of items plus a pagination footer.
// spaceNames maps space ids to display names; unassigned items show "-".
func ItemsTable(w io.Writer, page query.Page, spaceNames map[string]string) error {
	if page.TotalItems == 0 {
		faint := color.New(color.Faint, color.Italic)
		_, err := faint.Fprintln(w, "no items")
		return err
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "TITLE", "TYPE", "SPACE", "TAGS", "CREATED")
	for _, it := range page.Items {
		space := "-"
		if it.SpaceID != nil {
			space = *it.SpaceID
			if name, ok := spaceNames[*it.SpaceID]; ok {
				space = name
			}
		}
		tbl.AddRow(it.ID, it.Title, string(it.Type), space, strings.Join(it.Tags, ","), it.CreatedAt.Format(dateLayout))
	}
	if _, err := fmt.Fprintln(w, tbl); err != nil {
		return err
	}

	faint := color.New(color.Faint)
	_, err := faint.Fprintf(w, "page %d/%d, %d item(s)\n", page.CurrentPage, page.TotalPages, page.TotalItems)
	return err
}

// SpacesTable renders spaces grouped under their categories, in the given
// order. Orderings come from the caller so the table mirrors the TUI sidebar.
func SpacesTable(w io.Writer, categories []model.Category, spacesByCategory map[string][]model.Space) error {
	header := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint, color.Italic)

	for i, cat := range categories {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := header.Fprintln(w, cat.Name); err != nil {
			return err
		}
		spaces := spacesByCategory[cat.ID]
		if len(spaces) == 0 {
			if _, err := faint.Fprintln(w, " none"); err != nil {
				return err
			}
			continue
		}
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, sp := range spaces {
			name := sp.Name
			if sp.Emoji != "" {
				name = sp.Emoji + " " + name
			}
			tbl.AddRow(sp.ID, name)
		}
		if _, err := fmt.Fprintln(w, tbl); err != nil {
			return err
		}
	}
	return nil
}

// SavedFiltersTable lists saved filters oldest first.
func SavedFiltersTable(w io.Writer, filters []model.SavedFilter) error {
	if len(filters) == 0 {
		faint := color.New(color.Faint, color.Italic)
		_, err := faint.Fprintln(w, "no saved filters")
		return err
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID", "NAME", "FILTERS", "CREATED")
	for _, f := range filters {
		tbl.AddRow(f.ID, f.Name, FilterSummary(f.Filters), f.CreatedAt.Format(dateLayout))
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

// TagsTable prints the tag vocabulary one per line.
func TagsTable(w io.Writer, tags []string) error {
	if len(tags) == 0 {
		faint := color.New(color.Faint, color.Italic)
		_, err := faint.Fprintln(w, "no tags")
		return err
	}
	for _, t := range tags {
		if _, err := fmt.Fprintln(w, t); err != nil {
			return err
		}
	}
	return nil
}

// FilterSummary renders a FilterState as a compact one-line description,
// e.g. "types=pdf,note tags=go date=2026-01-01.. sort=oldest".
func FilterSummary(f model.FilterState) string {
	var parts []string
	if len(f.Types) > 0 {
		ts := make([]string, len(f.Types))
		for i, t := range f.Types {
			ts[i] = string(t)
		}
		parts = append(parts, "types="+strings.Join(ts, ","))
	}
	if len(f.Spaces) > 0 {
		parts = append(parts, "spaces="+strings.Join(f.Spaces, ","))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(f.Tags, ","))
	}
	if !f.DateRange.IsZero() {
		parts = append(parts, "date="+rangeSummary(f.DateRange))
	}
	if f.SortBy != "" && f.SortBy != model.SortNewest {
		parts = append(parts, "sort="+string(f.SortBy))
	}
	if len(parts) == 0 {
		return "(everything)"
	}
	return strings.Join(parts, " ")
}

func rangeSummary(r model.DateRange) string {
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dateLayout)
	}
	return format(r.From) + ".." + format(r.To)
}
