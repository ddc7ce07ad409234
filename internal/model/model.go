package model

import (
	"strings"
	"time"
)

type ItemType string

const (
	ItemTypeNote  ItemType = "note"
	ItemTypePDF   ItemType = "pdf"
	ItemTypeLink  ItemType = "link"
	ItemTypeImage ItemType = "image"
)

// KnownItemType reports whether t is one of the supported item types.
func KnownItemType(t ItemType) bool {
	switch t {
	case ItemTypeNote, ItemTypePDF, ItemTypeLink, ItemTypeImage:
		return true
	}
	return false
}

// Item is a single piece of captured knowledge: a note, a PDF, a link or an image.
//
// SpaceID is optional; items without a space belong to the "overview" scope.
type Item struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Type  ItemType `json:"type"`

	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	SpaceID *string `json:"spaceId,omitempty"`

	CreatedAt    time.Time `json:"createdAt"`
	SourceOrigin string    `json:"sourceOrigin,omitempty"`
	SizeBytes    *int64    `json:"sizeBytes,omitempty"`
}

// HasTag reports whether the item carries the given tag (case-insensitive).
func (it Item) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}
	for _, t := range it.Tags {
		if strings.ToLower(strings.TrimSpace(t)) == tag {
			return true
		}
	}
	return false
}

// Space groups items under a category. Category membership is a field on the
// space; the per-category order list is a view over it, not a container.
type Space struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji,omitempty"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// Slug returns the key-safe form of the space name:
// lowercase, with runs of non-alphanumeric characters collapsed to "-".
func (s Space) Slug() string {
	return Slugify(s.Name)
}

func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	prevDash := true // suppress a leading dash
	for _, r := range name {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Category is a top-level grouping of spaces. It holds no items directly;
// its space membership is expressed through Space.Category plus the order list.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// BuiltinCategories returns the fixed set of categories every workspace starts with.
func BuiltinCategories() []Category {
	return []Category{
		{ID: "personal", Name: "Personal", Icon: "home", Color: "blue"},
		{ID: "work", Name: "Work", Icon: "briefcase", Color: "green"},
		{ID: "shared", Name: "Shared", Icon: "users", Color: "purple"},
		{ID: "team", Name: "Team", Icon: "flag", Color: "orange"},
	}
}

type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortTitleAZ SortKey = "title-az"
	SortTitleZA SortKey = "title-za"
)

func KnownSortKey(k SortKey) bool {
	switch k {
	case SortNewest, SortOldest, SortTitleAZ, SortTitleZA:
		return true
	}
	return false
}

// DateRange bounds CreatedAt inclusively on both sides; a nil bound is open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r DateRange) IsZero() bool { return r.From == nil && r.To == nil }

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// FilterState is one multi-axis query. An empty set on any axis means
// "no constraint on that axis", never "match nothing".
type FilterState struct {
	Types     []ItemType `json:"types,omitempty"`
	Spaces    []string   `json:"spaces,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	DateRange DateRange  `json:"dateRange"`
	SortBy    SortKey    `json:"sortBy,omitempty"`
}

// IsZero reports whether the filter constrains nothing (sort order aside).
func (f FilterState) IsZero() bool {
	return len(f.Types) == 0 && len(f.Spaces) == 0 && len(f.Tags) == 0 && f.DateRange.IsZero()
}

// Clone returns a deep copy so snapshots can be edited without aliasing.
func (f FilterState) Clone() FilterState {
	out := f
	if f.Types != nil {
		out.Types = append([]ItemType{}, f.Types...)
	}
	if f.Spaces != nil {
		out.Spaces = append([]string{}, f.Spaces...)
	}
	if f.Tags != nil {
		out.Tags = append([]string{}, f.Tags...)
	}
	if f.DateRange.From != nil {
		t := *f.DateRange.From
		out.DateRange.From = &t
	}
	if f.DateRange.To != nil {
		t := *f.DateRange.To
		out.DateRange.To = &t
	}
	return out
}

// SavedFilter is a named FilterState snapshot. Name is a label; ID is identity,
// so duplicate names are allowed.
type SavedFilter struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Filters   FilterState `json:"filters"`
	CreatedAt time.Time   `json:"createdAt"`
}
