package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"satchel-cli/internal/format"
	"satchel-cli/internal/model"
	"satchel-cli/internal/mutate"
	"satchel-cli/internal/publish"
	"satchel-cli/internal/query"
	"satchel-cli/internal/store"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Item commands",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	cmd.AddCommand(newItemsRestoreCmd(app))
	cmd.AddCommand(newItemsUndoCmd(app))
	cmd.AddCommand(newItemsExportCmd(app))
	return cmd
}

func newItemsExportCmd(app *App) *cobra.Command {
	var (
		to        string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "export <item-id>...",
		Short: "Export items as markdown files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			var written []string
			for _, id := range args {
				res, err := publish.WriteItem(cmd.Context(), e.db, id, to, publish.WriteOptions{Overwrite: overwrite})
				if err != nil {
					return writeErr(cmd, err)
				}
				written = append(written, res.Written...)
			}
			if tableFormat(app) {
				for _, path := range written {
					cmd.Println(path)
				}
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"written": written}})
		},
	}

	cmd.Flags().StringVar(&to, "to", ".", "Directory to write markdown under")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var (
		in       string
		types    []string
		spaces   []string
		tags     []string
		fromStr  string
		toStr    string
		sortBy   string
		search   string
		page     int
		pageSize int
		saveName string
		filterID string
		clear    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items with filters, search and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			scope, err := parseScope(in)
			if err != nil {
				return writeErr(cmd, err)
			}
			engine := query.NewEngine(e.prefs)

			if clear {
				engine.Clear(scope.Key())
			}

			var f model.FilterState
			switch {
			case filterID != "":
				loaded, err := query.NewRegistry(e.prefs).Load(filterID)
				if err != nil {
					return writeErr(cmd, err)
				}
				f = loaded
			case filterFlagsSet(cmd):
				f, err = buildFilter(types, spaces, tags, fromStr, toStr, sortBy)
				if err != nil {
					return writeErr(cmd, err)
				}
			default:
				// Nothing given on the command line; pick up where the
				// last invocation for this scope left off.
				f = engine.Restore(scope.Key())
			}

			items, err := e.db.ListItems(cmd.Context(), scope)
			if err != nil {
				return writeErr(cmd, err)
			}
			filtered, err := engine.Apply(items, f, search, scope.Key())
			if err != nil {
				return writeErr(cmd, err)
			}

			pg, err := query.Paginate(filtered, page, pageSize)
			if err != nil {
				return writeErr(cmd, err)
			}

			if saveName != "" {
				saved := query.NewRegistry(e.prefs).Save(saveName, f)
				cmd.PrintErrf("saved filter %s (%s)\n", saved.ID, saved.Name)
			}

			if tableFormat(app) {
				names, err := spaceNames(cmd, e)
				if err != nil {
					return writeErr(cmd, err)
				}
				return format.ItemsTable(cmd.OutOrStdout(), pg, names)
			}
			return writeOut(cmd, app, map[string]any{
				"data": pg.Items,
				"meta": map[string]any{
					"page":       pg.CurrentPage,
					"totalPages": pg.TotalPages,
					"totalItems": pg.TotalItems,
					"filters":    f,
				},
			})
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Scope: a space id, or 'overview' for unassigned items (default: everything)")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Filter by item type (note|pdf|link|image), repeatable")
	cmd.Flags().StringSliceVar(&spaces, "space", nil, "Filter by space id, repeatable")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Filter by tag; multiple tags must all match")
	cmd.Flags().StringVar(&fromStr, "from", "", "Only items created on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "Only items created on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort order (newest|oldest|title-az|title-za)")
	cmd.Flags().StringVar(&search, "search", "", "Substring search over titles and tags")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", query.DefaultPageSize, "Items per page (25|50|100)")
	cmd.Flags().StringVar(&saveName, "save", "", "Save the effective filter under this name")
	cmd.Flags().StringVar(&filterID, "filter", "", "Apply a saved filter by id")
	cmd.Flags().BoolVar(&clear, "clear", false, "Forget the remembered filter for this scope first")

	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var (
		title   string
		typeStr string
		content string
		tags    []string
		in      string
		origin  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			draft := store.ItemDraft{
				Title:        title,
				Type:         model.ItemType(typeStr),
				Content:      content,
				Tags:         tags,
				SourceOrigin: origin,
			}
			if in != "" && in != "overview" {
				draft.SpaceID = &in
			}
			it, err := e.db.CreateItem(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}

			e.prefs.SetLastCreationTab(string(it.Type))

			if tableFormat(app) {
				cmd.Printf("created %s\n", it.ID)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Item title")
	cmd.Flags().StringVar(&typeStr, "type", envOr("SATCHEL_DEFAULT_TYPE", "note"), "Item type (note|pdf|link|image)")
	cmd.Flags().StringVar(&content, "content", "", "Item content (markdown for notes, URL for links)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag, repeatable")
	cmd.Flags().StringVar(&in, "in", "", "Space id to file the item under")
	cmd.Flags().StringVar(&origin, "origin", "", "Source origin, e.g. an import URL")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			items, err := e.db.ListItems(cmd.Context(), store.Scope{})
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, it := range items {
				if it.ID == args[0] {
					return writeOut(cmd, app, map[string]any{"data": it})
				}
			}
			return writeErr(cmd, store.NotFoundError{Kind: "item", ID: args[0]})
		},
	}
	return cmd
}

func newItemsMoveCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move <item-id>...",
		Short: "Move items to a space (or back to the overview)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			var target *string
			if to != "" && to != "overview" {
				if _, err := e.db.GetSpace(cmd.Context(), to); err != nil {
					return writeErr(cmd, err)
				}
				target = &to
			}

			items, err := e.db.ListItems(cmd.Context(), store.Scope{})
			if err != nil {
				return writeErr(cmd, err)
			}
			coord := mutate.New(e.db, nil, e.log)
			if _, err := coord.MoveItems(cmd.Context(), items, args, target); err != nil {
				return writeErr(cmd, err)
			}

			if tableFormat(app) {
				cmd.Printf("moved %d item(s)\n", len(args))
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"moved": args}})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target space id, or 'overview' to unassign")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <item-id>...",
		Short: "Delete items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			items, err := e.db.ListItems(cmd.Context(), store.Scope{})
			if err != nil {
				return writeErr(cmd, err)
			}
			coord := mutate.New(e.db, nil, e.log)
			before := len(items)
			after, err := coord.DeleteItems(cmd.Context(), items, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			deleted := before - len(after)
			// The CLI process exits before any timed window could expire, so
			// the reversible batch lives in the preference store instead and
			// `items undo` consumes it. Each delete replaces the slot.
			e.prefs.SetLastDeleted(args)

			if tableFormat(app) {
				cmd.Printf("deleted %d item(s); `satchel items undo` brings them back\n", deleted)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": deleted}})
		},
	}
	return cmd
}

func newItemsUndoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Bring back the most recently deleted items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			ids := e.prefs.LastDeleted()
			if len(ids) == 0 {
				cmd.Println("nothing to undo")
				return nil
			}
			for _, id := range ids {
				if err := e.db.RestoreItem(cmd.Context(), id); err != nil {
					return writeErr(cmd, err)
				}
			}
			e.prefs.ClearLastDeleted()

			if tableFormat(app) {
				cmd.Printf("restored %d item(s)\n", len(ids))
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"restored": ids}})
		},
	}
	return cmd
}

func newItemsRestoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <item-id>...",
		Short: "Restore deleted items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			for _, id := range args {
				if err := e.db.RestoreItem(cmd.Context(), id); err != nil {
					return writeErr(cmd, err)
				}
			}
			if tableFormat(app) {
				cmd.Printf("restored %d item(s)\n", len(args))
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"restored": args}})
		},
	}
	return cmd
}

func parseScope(in string) (store.Scope, error) {
	switch in {
	case "":
		return store.Scope{}, nil
	case "overview":
		return store.Scope{Overview: true}, nil
	default:
		return store.Scope{SpaceID: in}, nil
	}
}

func filterFlagsSet(cmd *cobra.Command) bool {
	for _, name := range []string{"type", "space", "tag", "from", "to", "sort"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func buildFilter(types, spaces, tags []string, fromStr, toStr, sortBy string) (model.FilterState, error) {
	var f model.FilterState
	for _, t := range types {
		f.Types = append(f.Types, model.ItemType(t))
	}
	f.Spaces = spaces
	f.Tags = tags
	f.SortBy = model.SortKey(sortBy)

	if fromStr != "" {
		t, err := parseDate(fromStr)
		if err != nil {
			return f, err
		}
		f.DateRange.From = &t
	}
	if toStr != "" {
		t, err := parseDate(toStr)
		if err != nil {
			return f, err
		}
		// --to names a day, so the bound covers its whole duration.
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.DateRange.To = &end
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func spaceNames(cmd *cobra.Command, e *env) (map[string]string, error) {
	spaces, err := e.db.ListSpaces(cmd.Context())
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(spaces))
	for _, sp := range spaces {
		names[sp.ID] = sp.Name
	}
	return names, nil
}
