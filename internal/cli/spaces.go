package cli

import (
	"github.com/spf13/cobra"

	"satchel-cli/internal/format"
	"satchel-cli/internal/model"
	"satchel-cli/internal/order"
	"satchel-cli/internal/publish"
)

func newSpacesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "Space commands",
	}
	cmd.AddCommand(newSpacesListCmd(app))
	cmd.AddCommand(newSpacesAddCmd(app))
	cmd.AddCommand(newSpacesRenameCmd(app))
	cmd.AddCommand(newSpacesMoveCmd(app))
	cmd.AddCommand(newSpacesReorderCmd(app))
	cmd.AddCommand(newSpacesDeleteCmd(app))
	cmd.AddCommand(newSpacesExportCmd(app))
	return cmd
}

func newSpacesExportCmd(app *App) *cobra.Command {
	var (
		to        string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "export <space-id>",
		Short: "Export a space and its items as markdown files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			res, err := publish.WriteSpace(cmd.Context(), e.db, args[0], to, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				for _, path := range res.Written {
					cmd.Println(path)
				}
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"written": res.Written}})
		},
	}

	cmd.Flags().StringVar(&to, "to", ".", "Directory to write markdown under")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	return cmd
}

// sidebar resolves the ordered category and space lists the way the TUI
// sidebar shows them: the ordering overlay on top of natural order.
func sidebar(e *env, categories []model.Category, spaces []model.Space) ([]model.Category, map[string][]model.Space) {
	m := e.prefs.OrderingMap()

	domain := map[string][]string{}
	byID := map[string]model.Space{}
	for _, sp := range spaces {
		domain[sp.Category] = append(domain[sp.Category], sp.ID)
		byID[sp.ID] = sp
	}

	catIDs := make([]string, len(categories))
	catByID := map[string]model.Category{}
	for i, c := range categories {
		catIDs[i] = c.ID
		catByID[c.ID] = c
	}

	orderedCats := make([]model.Category, 0, len(categories))
	for _, id := range m.CategoryOrder(catIDs) {
		orderedCats = append(orderedCats, catByID[id])
	}

	grouped := map[string][]model.Space{}
	for _, c := range orderedCats {
		for _, id := range m.SpaceOrder(c.ID, domain[c.ID]) {
			grouped[c.ID] = append(grouped[c.ID], byID[id])
		}
	}
	return orderedCats, grouped
}

func newSpacesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List spaces grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			categories, err := e.db.ListCategories(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			spaces, err := e.db.ListSpaces(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			orderedCats, grouped := sidebar(e, categories, spaces)

			if tableFormat(app) {
				return format.SpacesTable(cmd.OutOrStdout(), orderedCats, grouped)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"categories": orderedCats,
					"spaces":     grouped,
				},
			})
		},
	}
	return cmd
}

func newSpacesAddCmd(app *App) *cobra.Command {
	var (
		name     string
		emoji    string
		category string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a space",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			sp, err := e.db.CreateSpace(cmd.Context(), name, emoji, category)
			if err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("created %s\n", sp.ID)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": sp})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Space name")
	cmd.Flags().StringVar(&emoji, "emoji", "", "Space emoji")
	cmd.Flags().StringVar(&category, "category", "personal", "Category id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSpacesRenameCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <space-id>",
		Short: "Rename a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			if err := e.db.RenameSpace(cmd.Context(), args[0], name); err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("renamed %s\n", args[0])
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "name": name}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New space name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSpacesMoveCmd(app *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "move <space-id>",
		Short: "Move a space to another category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			sp, err := e.db.GetSpace(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := reorderSpace(cmd, e, sp, "", order.PositionBelow, category); err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("moved %s to %s\n", sp.ID, category)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": sp.ID, "category": category}})
		},
	}

	cmd.Flags().StringVar(&category, "to", "", "Target category id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSpacesReorderCmd(app *App) *cobra.Command {
	var (
		above string
		below string
	)

	cmd := &cobra.Command{
		Use:   "reorder <space-id>",
		Short: "Place a space above or below another space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (above == "") == (below == "") {
				return writeErr(cmd, errExactlyOneOf("--above", "--below"))
			}
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			moved, err := e.db.GetSpace(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			targetID := above
			pos := order.PositionAbove
			if below != "" {
				targetID = below
				pos = order.PositionBelow
			}
			target, err := e.db.GetSpace(cmd.Context(), targetID)
			if err != nil {
				return writeErr(cmd, err)
			}

			if err := reorderSpaceRelative(cmd, e, moved, target, pos); err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("reordered %s\n", moved.ID)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": moved.ID}})
		},
	}

	cmd.Flags().StringVar(&above, "above", "", "Place the space directly above this space id")
	cmd.Flags().StringVar(&below, "below", "", "Place the space directly below this space id")
	return cmd
}

func newSpacesDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <space-id>",
		Short: "Delete a space; its items return to the overview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			if err := e.db.DeleteSpace(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			pruneOrdering(cmd, e)

			if tableFormat(app) {
				cmd.Printf("deleted %s\n", args[0])
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}

// reorderSpaceRelative drops moved next to target, switching categories when
// they differ.
func reorderSpaceRelative(cmd *cobra.Command, e *env, moved, target model.Space, pos order.Position) error {
	return reorderSpaceInto(cmd, e, moved, target.ID, pos, target.Category)
}

// reorderSpace appends moved to the end of targetCat.
func reorderSpace(cmd *cobra.Command, e *env, moved model.Space, targetID string, pos order.Position, targetCat string) error {
	return reorderSpaceInto(cmd, e, moved, targetID, pos, targetCat)
}

func reorderSpaceInto(cmd *cobra.Command, e *env, moved model.Space, targetID string, pos order.Position, targetCat string) error {
	if _, err := e.db.GetCategory(cmd.Context(), targetCat); err != nil {
		return err
	}

	spaces, err := e.db.ListSpaces(cmd.Context())
	if err != nil {
		return err
	}
	domain := map[string][]string{}
	for _, sp := range spaces {
		domain[sp.Category] = append(domain[sp.Category], sp.ID)
	}

	m := e.prefs.OrderingMap()
	m.ReorderSpace(domain, moved.ID, targetID, pos, moved.Category, targetCat)
	if moved.Category != targetCat {
		if err := e.db.SetSpaceCategory(cmd.Context(), moved.ID, targetCat); err != nil {
			return err
		}
	}
	e.prefs.SetOrderingMap(m)
	return nil
}

func pruneOrdering(cmd *cobra.Command, e *env) {
	spaces, err := e.db.ListSpaces(cmd.Context())
	if err != nil {
		return
	}
	categories, err := e.db.ListCategories(cmd.Context())
	if err != nil {
		return
	}
	domain := map[string][]string{}
	for _, sp := range spaces {
		domain[sp.Category] = append(domain[sp.Category], sp.ID)
	}
	catIDs := make([]string, len(categories))
	for i, c := range categories {
		catIDs[i] = c.ID
	}
	m := e.prefs.OrderingMap()
	m.Prune(domain, catIDs)
	e.prefs.SetOrderingMap(m)
}
