package query

import (
	"fmt"

	"satchel-cli/internal/model"
)

// PageSizes is the closed set of allowed page sizes. Values outside the set
// are rejected, not clamped.
var PageSizes = []int{25, 50, 100}

// DefaultPageSize is the smallest allowed size.
const DefaultPageSize = 25

type InvalidPageSizeError struct {
	Size int
}

func (e InvalidPageSizeError) Error() string {
	return fmt.Sprintf("invalid page size %d (allowed: 25, 50, 100)", e.Size)
}

func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Page is one slice of an ordered item sequence plus display metadata.
// StartIndex is the 0-based offset of the first item in the full sequence;
// EndIndex is exclusive. Both are 0 for an empty sequence.
type Page struct {
	Items       []model.Item
	CurrentPage int
	TotalPages  int
	TotalItems  int
	StartIndex  int
	EndIndex    int
	HasNext     bool
	HasPrev     bool
}

// Paginate slices items into the requested page.
//
// TotalPages is at least 1 even for an empty sequence. An out-of-range page
// clamps to the nearest valid page rather than erroring; only a size outside
// PageSizes is rejected.
func Paginate(items []model.Item, page, size int) (Page, error) {
	if !ValidPageSize(size) {
		return Page{}, InvalidPageSizeError{Size: size}
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:       append([]model.Item{}, items[start:end]...),
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		StartIndex:  start,
		EndIndex:    end,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}, nil
}

// RetargetPage returns the page that keeps the first item of the old page
// visible after a page-size change. The result may still be clamped by
// Paginate when the collection shrank in the meantime.
func RetargetPage(oldPage, oldSize, newSize int) int {
	if oldPage < 1 {
		oldPage = 1
	}
	if oldSize < 1 || newSize < 1 {
		return 1
	}
	firstIndex := (oldPage - 1) * oldSize
	return firstIndex/newSize + 1
}
