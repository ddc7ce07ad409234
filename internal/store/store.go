package store

import (
	"context"
	"os"
	"path/filepath"

	"satchel-cli/internal/model"
)

const workspaceDirName = ".satchel"

// Store locates a satchel workspace on disk. The workspace directory holds
// the sqlite index and the prefs store.
type Store struct {
	Dir string
}

// DiscoverDir walks upward from start looking for a .satchel directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the discovered workspace dir, or the would-be location
// under the current directory when none exists yet.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

// DirAt returns the workspace path directly under base, whether or not it
// exists yet.
func DirAt(base string) string {
	return filepath.Join(base, workspaceDirName)
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// PrefsDir is where the diskv-backed preference store lives.
func (s Store) PrefsDir() string {
	return filepath.Join(s.Dir, "prefs")
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, "index.sqlite")
}

// Scope selects which items a view lists: one space, the unassigned
// "overview", or (zero value) everything.
type Scope struct {
	SpaceID  string
	Overview bool
}

// Key is the stable identifier filters and view state are persisted under.
func (sc Scope) Key() string {
	if sc.Overview {
		return "overview"
	}
	if sc.SpaceID != "" {
		return sc.SpaceID
	}
	return "all"
}

// ItemDraft is the creation payload for a new item.
type ItemDraft struct {
	Title        string
	Type         model.ItemType
	Content      string
	Tags         []string
	SpaceID      *string
	SourceOrigin string
	SizeBytes    *int64
}

// ItemPatch updates a subset of item fields; nil fields are left alone.
type ItemPatch struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// ItemStore is the remote persistence collaborator for items. The local
// sqlite implementation stands in for a backend-as-a-service; callers treat
// every call as fallible.
type ItemStore interface {
	ListItems(ctx context.Context, scope Scope) ([]model.Item, error)
	CreateItem(ctx context.Context, draft ItemDraft) (model.Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) error
	MoveItem(ctx context.Context, id string, targetSpaceID *string) error
	DeleteItem(ctx context.Context, id string) error
	RestoreItem(ctx context.Context, id string) error
}

// TagStore maintains the tag vocabulary alongside items.
type TagStore interface {
	UpsertTag(ctx context.Context, name string) error
	SetItemTags(ctx context.Context, itemID string, tags []string) error
	ListTags(ctx context.Context) ([]string, error)
}
