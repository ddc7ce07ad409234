package model

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Side Projects", "side-projects"},
		{"  Reading   List  ", "reading-list"},
		{"Go/Rust (2026)", "go-rust-2026"},
		{"---", ""},
		{"already-slugged", "already-slugged"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Fatalf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDateRangeContains(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	from, to := day(10), day(20)

	r := DateRange{From: &from, To: &to}
	// Bounds are inclusive.
	if !r.Contains(from) || !r.Contains(to) {
		t.Fatalf("bounds should be inside the range")
	}
	if r.Contains(day(9)) || r.Contains(day(21)) {
		t.Fatalf("out-of-range dates matched")
	}

	open := DateRange{From: &from}
	if !open.Contains(day(25)) {
		t.Fatalf("open To bound should match later dates")
	}
	if !(DateRange{}).Contains(day(1)) {
		t.Fatalf("zero range should match everything")
	}
}

func TestHasTag(t *testing.T) {
	it := Item{Tags: []string{"go", "databases"}}
	if !it.HasTag("GO") {
		t.Fatalf("tag match should be case-insensitive")
	}
	if it.HasTag("") || it.HasTag("rust") {
		t.Fatalf("unexpected tag match")
	}
}

func TestFilterStateClone(t *testing.T) {
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := FilterState{
		Types:     []ItemType{ItemTypePDF},
		Tags:      []string{"go"},
		DateRange: DateRange{From: &from},
	}
	c := f.Clone()
	c.Types[0] = ItemTypeNote
	c.Tags[0] = "rust"
	*c.DateRange.From = from.AddDate(1, 0, 0)

	if f.Types[0] != ItemTypePDF || f.Tags[0] != "go" || !f.DateRange.From.Equal(from) {
		t.Fatalf("Clone aliased the original: %+v", f)
	}
}
