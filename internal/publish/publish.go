package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"satchel-cli/internal/store"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteItem exports one item to <toDir>/items/<item-id>.md.
func WriteItem(ctx context.Context, db *store.DB, itemID, toDir string, opt WriteOptions) (WriteResult, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return WriteResult{}, errors.New("missing item id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	items, err := db.ListItems(ctx, store.Scope{})
	if err != nil {
		return WriteResult{}, err
	}
	for _, it := range items {
		if it.ID != itemID {
			continue
		}
		spaceName := ""
		if it.SpaceID != nil {
			if sp, err := db.GetSpace(ctx, *it.SpaceID); err == nil {
				spaceName = sp.Name
			}
		}
		md := RenderItemMarkdown(it, spaceName)

		outDir := filepath.Join(toDir, "items")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return WriteResult{}, err
		}
		outPath := filepath.Join(outDir, it.ID+".md")
		if err := writeFile(outPath, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		return WriteResult{Written: []string{outPath}}, nil
	}
	return WriteResult{}, store.NotFoundError{Kind: "item", ID: itemID}
}

// WriteSpace exports a space index plus each of its items under
// <toDir>/spaces/<slug>/.
func WriteSpace(ctx context.Context, db *store.DB, spaceID, toDir string, opt WriteOptions) (WriteResult, error) {
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return WriteResult{}, errors.New("missing space id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}

	sp, err := db.GetSpace(ctx, spaceID)
	if err != nil {
		return WriteResult{}, err
	}
	items, err := db.ListItems(ctx, store.Scope{SpaceID: spaceID})
	if err != nil {
		return WriteResult{}, err
	}

	outDir := filepath.Join(filepath.Clean(toDir), "spaces", sp.Slug())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	var written []string
	indexPath := filepath.Join(outDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderSpaceMarkdown(sp, items)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written = append(written, indexPath)

	for _, it := range items {
		p := filepath.Join(outDir, it.ID+".md")
		if err := writeFile(p, []byte(RenderItemMarkdown(it, sp.Name)), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("refusing to overwrite " + path + " (use --overwrite)")
		}
	}
	return os.WriteFile(path, b, 0o644)
}
