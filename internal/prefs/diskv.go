package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv is the on-disk KV backend. One file per preference key, JSON values,
// keyed by slash-separated paths under the workspace prefs directory.
type Diskv struct {
	d *diskv.Diskv
}

// OpenDiskv opens (and lazily creates) the prefs store rooted at basePath.
func OpenDiskv(basePath string) *Diskv {
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      64 * 1024,
	})}
}

func (s *Diskv) Get(key string, v any) (bool, error) {
	b, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		// Corrupted entries are treated as missing; the caller falls back
		// to defaults and the next write repairs the file.
		return false, err
	}
	return true, nil
}

func (s *Diskv) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.d.Write(key, b)
}

func (s *Diskv) Delete(key string) error {
	if err := s.d.Erase(key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1] + ".json",
	}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	name := strings.TrimSuffix(pk.FileName, ".json")
	if len(pk.Path) == 0 {
		return name
	}
	return strings.Join(pk.Path, "/") + "/" + name
}
