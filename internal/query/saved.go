package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"satchel-cli/internal/model"
	"satchel-cli/internal/prefs"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Registry manages named FilterState snapshots. Saved filters live
// independently of any space or category and are only changed by explicit
// user action. Duplicate names are allowed: the name is a label, the id is
// the identity.
type Registry struct {
	prefs *prefs.Prefs

	now   func() time.Time
	newID func() string
}

func NewRegistry(p *prefs.Prefs) *Registry {
	return &Registry{
		prefs: p,
		now:   time.Now,
		newID: func() string { return "filter-" + uuid.NewString()[:8] },
	}
}

// Save snapshots the filter under a fresh id.
func (r *Registry) Save(name string, f model.FilterState) model.SavedFilter {
	sf := model.SavedFilter{
		ID:        r.newID(),
		Name:      strings.TrimSpace(name),
		Filters:   f.Clone(),
		CreatedAt: r.now().UTC(),
	}
	list := r.prefs.SavedFilters()
	list = append(list, sf)
	r.prefs.SetSavedFilters(list)
	return sf
}

// List returns all saved filters, oldest first (ties by id).
func (r *Registry) List() []model.SavedFilter {
	list := r.prefs.SavedFilters()
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *Registry) Rename(id, name string) error {
	list := r.prefs.SavedFilters()
	for i := range list {
		if list[i].ID == id {
			list[i].Name = strings.TrimSpace(name)
			r.prefs.SetSavedFilters(list)
			return nil
		}
	}
	return NotFoundError{Kind: "saved filter", ID: id}
}

func (r *Registry) Delete(id string) error {
	list := r.prefs.SavedFilters()
	for i := range list {
		if list[i].ID == id {
			r.prefs.SetSavedFilters(append(list[:i], list[i+1:]...))
			return nil
		}
	}
	return NotFoundError{Kind: "saved filter", ID: id}
}

// Load returns a copy of the snapshot for local editing. It does not apply
// the filter to any view; applying is a separate, explicit action, so a load
// is a pure read.
func (r *Registry) Load(id string) (model.FilterState, error) {
	for _, sf := range r.prefs.SavedFilters() {
		if sf.ID == id {
			return sf.Filters.Clone(), nil
		}
	}
	return model.FilterState{}, NotFoundError{Kind: "saved filter", ID: id}
}
