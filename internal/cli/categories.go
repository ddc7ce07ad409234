package cli

import (
	"github.com/spf13/cobra"

	"satchel-cli/internal/order"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Category commands",
	}
	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesReorderCmd(app))
	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
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
			orderedCats, _ := sidebar(e, categories, spaces)

			if tableFormat(app) {
				for _, c := range orderedCats {
					cmd.Printf("%s\t%s\n", c.ID, c.Name)
				}
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": orderedCats})
		},
	}
	return cmd
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	var (
		name  string
		icon  string
		color string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			c, err := e.db.CreateCategory(cmd.Context(), name, icon, color)
			if err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("created %s\n", c.ID)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Category name")
	cmd.Flags().StringVar(&icon, "icon", "", "Category icon name")
	cmd.Flags().StringVar(&color, "color", "", "Category color name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCategoriesReorderCmd(app *App) *cobra.Command {
	var (
		above string
		below string
	)

	cmd := &cobra.Command{
		Use:   "reorder <category-id>",
		Short: "Place a category above or below another category",
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

			if _, err := e.db.GetCategory(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			targetID := above
			pos := order.PositionAbove
			if below != "" {
				targetID = below
				pos = order.PositionBelow
			}
			if _, err := e.db.GetCategory(cmd.Context(), targetID); err != nil {
				return writeErr(cmd, err)
			}

			categories, err := e.db.ListCategories(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			catIDs := make([]string, len(categories))
			for i, c := range categories {
				catIDs[i] = c.ID
			}

			m := e.prefs.OrderingMap()
			m.ReorderCategory(catIDs, args[0], targetID, pos)
			e.prefs.SetOrderingMap(m)

			if tableFormat(app) {
				cmd.Printf("reordered %s\n", args[0])
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0]}})
		},
	}

	cmd.Flags().StringVar(&above, "above", "", "Place the category directly above this category id")
	cmd.Flags().StringVar(&below, "below", "", "Place the category directly below this category id")
	return cmd
}
