package query

import (
	"satchel-cli/internal/model"
	"satchel-cli/internal/prefs"
)

// Engine binds the pure filter/sort functions to per-scope persistence.
//
// Scope is the active space/category context ("overview" when none). Applying
// a filter remembers it for that scope so returning to the scope restores the
// last-applied state; clearing forgets it. Persistence is best effort via
// prefs, so a broken backend degrades to in-memory behavior only.
type Engine struct {
	prefs *prefs.Prefs
}

func NewEngine(p *prefs.Prefs) *Engine {
	return &Engine{prefs: p}
}

// Apply validates, filters, sorts and persists the filter for the scope.
// On a validation error nothing is persisted and nil items are returned.
func (e *Engine) Apply(items []model.Item, f model.FilterState, search, scope string) ([]model.Item, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	out := Apply(items, f, search)
	e.prefs.SetScopeFilter(scope, f)
	return out, nil
}

// Clear removes the persisted filter for the scope.
func (e *Engine) Clear(scope string) {
	e.prefs.ClearScopeFilter(scope)
}

// Restore returns the last filter applied in the scope, or a zero filter.
func (e *Engine) Restore(scope string) model.FilterState {
	f, ok := e.prefs.ScopeFilter(scope)
	if !ok {
		return model.FilterState{}
	}
	if Validate(f) != nil {
		// Stale or hand-edited persisted state: fall back to defaults.
		return model.FilterState{}
	}
	return f
}
