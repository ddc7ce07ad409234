package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"satchel-cli/internal/model"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// DB is the sqlite-backed workspace index. It implements ItemStore and
// TagStore and also persists spaces and categories.
//
// Rows keep the full JSON document plus a few extracted columns for listing;
// the JSON is the source of truth.
type DB struct {
	sql *sql.DB
}

// Open opens (creating if needed) the workspace index.
func Open(ctx context.Context, s Store) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness with concurrent CLI invocations.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	d := &DB{sql: db}
	if err := d.seedBuiltinCategories(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			space_id TEXT,
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_space ON items(space_id, deleted);`,
		`CREATE TABLE IF NOT EXISTS spaces (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tags (
			name TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS item_tags (
			item_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (item_id, tag)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) seedBuiltinCategories(ctx context.Context) error {
	for _, c := range model.BuiltinCategories() {
		raw, _ := json.Marshal(c)
		if _, err := d.sql.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories(id, json) VALUES(?, ?)`, c.ID, string(raw)); err != nil {
			return err
		}
	}
	return nil
}

// ListItems returns the live items in scope, in natural (creation) order.
func (d *DB) ListItems(ctx context.Context, scope Scope) ([]model.Item, error) {
	q := `SELECT json FROM items WHERE deleted = 0`
	var args []any
	switch {
	case scope.Overview:
		q += ` AND space_id IS NULL`
	case scope.SpaceID != "":
		q += ` AND space_id = ?`
		args = append(args, scope.SpaceID)
	}
	q += ` ORDER BY created_at_unixms ASC, id ASC`

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var it model.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (d *DB) CreateItem(ctx context.Context, draft ItemDraft) (model.Item, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return model.Item{}, errors.New("item title required")
	}
	if !model.KnownItemType(draft.Type) {
		return model.Item{}, fmt.Errorf("unknown item type: %q", draft.Type)
	}
	it := model.Item{
		ID:           NewID("item"),
		Title:        strings.TrimSpace(draft.Title),
		Type:         draft.Type,
		Content:      draft.Content,
		Tags:         normalizeTags(draft.Tags),
		SpaceID:      draft.SpaceID,
		CreatedAt:    time.Now().UTC(),
		SourceOrigin: draft.SourceOrigin,
		SizeBytes:    draft.SizeBytes,
	}
	if err := d.writeItem(ctx, it); err != nil {
		return model.Item{}, err
	}
	if err := d.SetItemTags(ctx, it.ID, it.Tags); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (d *DB) UpdateItem(ctx context.Context, id string, patch ItemPatch) error {
	it, deleted, err := d.getItem(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		return NotFoundError{Kind: "item", ID: id}
	}
	if patch.Title != nil {
		it.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		it.Content = *patch.Content
	}
	if patch.Tags != nil {
		it.Tags = normalizeTags(*patch.Tags)
		if err := d.SetItemTags(ctx, id, it.Tags); err != nil {
			return err
		}
	}
	return d.writeItem(ctx, it)
}

func (d *DB) MoveItem(ctx context.Context, id string, targetSpaceID *string) error {
	it, deleted, err := d.getItem(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		return NotFoundError{Kind: "item", ID: id}
	}
	if targetSpaceID != nil {
		if _, err := d.GetSpace(ctx, *targetSpaceID); err != nil {
			return err
		}
	}
	it.SpaceID = targetSpaceID
	return d.writeItem(ctx, it)
}

// DeleteItem soft-deletes so the row can be restored during the undo window.
func (d *DB) DeleteItem(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `UPDATE items SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "item", ID: id}
	}
	return nil
}

func (d *DB) RestoreItem(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `UPDATE items SET deleted = 0 WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "item", ID: id}
	}
	return nil
}

func (d *DB) getItem(ctx context.Context, id string) (model.Item, bool, error) {
	var raw string
	var deleted int
	err := d.sql.QueryRowContext(ctx, `SELECT json, deleted FROM items WHERE id = ?`, id).Scan(&raw, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, false, NotFoundError{Kind: "item", ID: id}
	}
	if err != nil {
		return model.Item{}, false, err
	}
	var it model.Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		return model.Item{}, false, err
	}
	return it, deleted != 0, nil
}

// writeItem upserts a live item row. Delete/restore flip the deleted flag
// in place and never go through here.
func (d *DB) writeItem(ctx context.Context, it model.Item) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return err
	}
	var spaceID any
	if it.SpaceID != nil {
		spaceID = *it.SpaceID
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO items(id, title, type, space_id, deleted, created_at_unixms, json)
		 VALUES(?, ?, ?, ?, 0, ?, ?)`,
		it.ID, it.Title, string(it.Type), spaceID, it.CreatedAt.UnixMilli(), string(raw))
	return err
}

// UpsertTag adds a tag to the vocabulary; re-upserting is a no-op.
func (d *DB) UpsertTag(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return errors.New("tag name required")
	}
	_, err := d.sql.ExecContext(ctx, `INSERT OR IGNORE INTO tags(name) VALUES(?)`, name)
	return err
}

// SetItemTags replaces the item's tag links and upserts each tag.
func (d *DB) SetItemTags(ctx context.Context, itemID string, tags []string) error {
	tags = normalizeTags(tags)
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags(name) VALUES(?)`, t); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO item_tags(item_id, tag) VALUES(?, ?)`, itemID, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListTags(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ListSpaces returns all spaces in natural (creation) order.
func (d *DB) ListSpaces(ctx context.Context) ([]model.Space, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT json FROM spaces ORDER BY created_at_unixms ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Space
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var sp model.Space
		if err := json.Unmarshal([]byte(raw), &sp); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (d *DB) GetSpace(ctx context.Context, id string) (model.Space, error) {
	var raw string
	err := d.sql.QueryRowContext(ctx, `SELECT json FROM spaces WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Space{}, NotFoundError{Kind: "space", ID: id}
	}
	if err != nil {
		return model.Space{}, err
	}
	var sp model.Space
	if err := json.Unmarshal([]byte(raw), &sp); err != nil {
		return model.Space{}, err
	}
	return sp, nil
}

func (d *DB) CreateSpace(ctx context.Context, name, emoji, category string) (model.Space, error) {
	if strings.TrimSpace(name) == "" {
		return model.Space{}, errors.New("space name required")
	}
	if _, err := d.GetCategory(ctx, category); err != nil {
		return model.Space{}, err
	}
	sp := model.Space{
		ID:        NewID("space"),
		Name:      strings.TrimSpace(name),
		Emoji:     emoji,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	return sp, d.writeSpace(ctx, sp)
}

func (d *DB) RenameSpace(ctx context.Context, id, name string) error {
	sp, err := d.GetSpace(ctx, id)
	if err != nil {
		return err
	}
	sp.Name = strings.TrimSpace(name)
	return d.writeSpace(ctx, sp)
}

// SetSpaceCategory updates category membership (the cross-category half of a
// space move; the order lists are the ordering engine's concern).
func (d *DB) SetSpaceCategory(ctx context.Context, id, category string) error {
	sp, err := d.GetSpace(ctx, id)
	if err != nil {
		return err
	}
	if _, err := d.GetCategory(ctx, category); err != nil {
		return err
	}
	sp.Category = category
	return d.writeSpace(ctx, sp)
}

// DeleteSpace removes the space; its items become unassigned (overview).
func (d *DB) DeleteSpace(ctx context.Context, id string) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "space", ID: id}
	}

	// Unassign items pointing at the deleted space. The JSON column is
	// rewritten lazily on the next item write; listing uses space_id.
	rows, err := tx.QueryContext(ctx, `SELECT json FROM items WHERE space_id = ?`, id)
	if err != nil {
		return err
	}
	var patched []model.Item
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return err
		}
		var it model.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			rows.Close()
			return err
		}
		it.SpaceID = nil
		patched = append(patched, it)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, it := range patched {
		raw, _ := json.Marshal(it)
		if _, err := tx.ExecContext(ctx, `UPDATE items SET space_id = NULL, json = ? WHERE id = ?`, string(raw), it.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) writeSpace(ctx context.Context, sp model.Space) error {
	raw, err := json.Marshal(sp)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO spaces(id, name, category, created_at_unixms, json) VALUES(?, ?, ?, ?, ?)`,
		sp.ID, sp.Name, sp.Category, sp.CreatedAt.UnixMilli(), string(raw))
	return err
}

// ListCategories returns builtins plus user-defined categories.
// Builtins come first in their fixed order; user categories follow by id.
func (d *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT json FROM categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[string]model.Category{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c model.Category
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []model.Category
	for _, b := range model.BuiltinCategories() {
		if c, ok := byID[b.ID]; ok {
			out = append(out, c)
			delete(byID, b.ID)
		}
	}
	var rest []model.Category
	for _, c := range byID {
		rest = append(rest, c)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].ID < rest[j].ID })
	return append(out, rest...), nil
}

func (d *DB) GetCategory(ctx context.Context, id string) (model.Category, error) {
	var raw string
	err := d.sql.QueryRowContext(ctx, `SELECT json FROM categories WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, NotFoundError{Kind: "category", ID: id}
	}
	if err != nil {
		return model.Category{}, err
	}
	var c model.Category
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// CreateCategory adds a user-defined category. The id is derived from the
// name so category ids stay readable ("reading-group"), with a numeric
// suffix on collision.
func (d *DB) CreateCategory(ctx context.Context, name, icon, color string) (model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return model.Category{}, errors.New("category name required")
	}
	base := model.Slugify(name)
	if base == "" {
		return model.Category{}, fmt.Errorf("category name yields empty id: %q", name)
	}
	id := base
	for n := 2; ; n++ {
		if _, err := d.GetCategory(ctx, id); err != nil {
			var nf NotFoundError
			if errors.As(err, &nf) {
				break
			}
			return model.Category{}, err
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	c := model.Category{ID: id, Name: strings.TrimSpace(name), Icon: icon, Color: color}
	raw, _ := json.Marshal(c)
	if _, err := d.sql.ExecContext(ctx, `INSERT INTO categories(id, json) VALUES(?, ?)`, c.ID, string(raw)); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

