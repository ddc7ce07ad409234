// Package prefs persists small, user-facing preferences: the last-applied
// filter per scope, the ordering overlay, saved filters and the last-used
// creation tab.
//
// Everything here is best effort: a missing or malformed entry falls back to
// a zero value, and write failures are logged and ignored. Configuration is
// at stake, never data, so the engine must keep working without a usable
// preference backend.
package prefs

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"satchel-cli/internal/model"
	"satchel-cli/internal/order"
)

// KV is the raw key-value contract Prefs runs on. Keys are slash-separated
// paths; values are opaque JSON blobs.
type KV interface {
	// Get unmarshals the value for key into v. ok=false means absent.
	Get(key string, v any) (ok bool, err error)
	Set(key string, v any) error
	Delete(key string) error
}

const (
	keyOrderingMap     = "ordering/map"
	keySavedFilters    = "filters/saved"
	keyLastCreationTab = "ui/last-creation-tab"
	keyLastDeleted     = "items/last-deleted"
	keyScopeFilterPfx  = "filters/scope/"
)

// Prefs wraps a KV with typed accessors and default fallback. Methods never
// return errors; failures are logged through the injected logger.
type Prefs struct {
	kv  KV
	log zerolog.Logger
}

func New(kv KV, log zerolog.Logger) *Prefs {
	return &Prefs{kv: kv, log: log}
}

// ScopeFilter returns the last filter applied in the given scope.
// ok=false means no filter was persisted (or it could not be read).
func (p *Prefs) ScopeFilter(scope string) (model.FilterState, bool) {
	var f model.FilterState
	ok, err := p.kv.Get(keyScopeFilterPfx+scope, &f)
	if err != nil {
		p.log.Warn().Err(err).Str("scope", scope).Msg("prefs: read scope filter")
		return model.FilterState{}, false
	}
	return f, ok
}

func (p *Prefs) SetScopeFilter(scope string, f model.FilterState) {
	if err := p.kv.Set(keyScopeFilterPfx+scope, f); err != nil {
		p.log.Warn().Err(err).Str("scope", scope).Msg("prefs: write scope filter")
	}
}

func (p *Prefs) ClearScopeFilter(scope string) {
	if err := p.kv.Delete(keyScopeFilterPfx + scope); err != nil {
		p.log.Warn().Err(err).Str("scope", scope).Msg("prefs: clear scope filter")
	}
}

// OrderingMap returns the persisted ordering overlay, empty when absent.
func (p *Prefs) OrderingMap() order.Map {
	var m order.Map
	ok, err := p.kv.Get(keyOrderingMap, &m)
	if err != nil {
		p.log.Warn().Err(err).Msg("prefs: read ordering map")
		return order.Map{}
	}
	if !ok {
		return order.Map{}
	}
	return m
}

func (p *Prefs) SetOrderingMap(m order.Map) {
	if err := p.kv.Set(keyOrderingMap, m); err != nil {
		p.log.Warn().Err(err).Msg("prefs: write ordering map")
	}
}

func (p *Prefs) SavedFilters() []model.SavedFilter {
	var list []model.SavedFilter
	ok, err := p.kv.Get(keySavedFilters, &list)
	if err != nil {
		p.log.Warn().Err(err).Msg("prefs: read saved filters")
		return nil
	}
	if !ok {
		return nil
	}
	return list
}

func (p *Prefs) SetSavedFilters(list []model.SavedFilter) {
	if list == nil {
		list = []model.SavedFilter{}
	}
	if err := p.kv.Set(keySavedFilters, list); err != nil {
		p.log.Warn().Err(err).Msg("prefs: write saved filters")
	}
}

func (p *Prefs) LastCreationTab() string {
	var tab string
	ok, err := p.kv.Get(keyLastCreationTab, &tab)
	if err != nil {
		p.log.Warn().Err(err).Msg("prefs: read last creation tab")
		return ""
	}
	if !ok {
		return ""
	}
	return tab
}

func (p *Prefs) SetLastCreationTab(tab string) {
	if err := p.kv.Set(keyLastCreationTab, tab); err != nil {
		p.log.Warn().Err(err).Msg("prefs: write last creation tab")
	}
}

// LastDeleted returns the ids of the most recent delete batch. The slot holds
// one batch; each delete replaces it.
func (p *Prefs) LastDeleted() []string {
	var ids []string
	ok, err := p.kv.Get(keyLastDeleted, &ids)
	if err != nil {
		p.log.Warn().Err(err).Msg("prefs: read last deleted")
		return nil
	}
	if !ok {
		return nil
	}
	return ids
}

func (p *Prefs) SetLastDeleted(ids []string) {
	if err := p.kv.Set(keyLastDeleted, ids); err != nil {
		p.log.Warn().Err(err).Msg("prefs: write last deleted")
	}
}

func (p *Prefs) ClearLastDeleted() {
	if err := p.kv.Delete(keyLastDeleted); err != nil {
		p.log.Warn().Err(err).Msg("prefs: clear last deleted")
	}
}

// Memory is an in-process KV for tests and for running without a workspace.
type Memory struct {
	m map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: map[string][]byte{}}
}

func (s *Memory) Get(key string, v any) (bool, error) {
	b, ok := s.m[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Memory) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.m[key] = b
	return nil
}

func (s *Memory) Delete(key string) error {
	delete(s.m, key)
	return nil
}
