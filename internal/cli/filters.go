package cli

import (
	"github.com/spf13/cobra"

	"satchel-cli/internal/format"
	"satchel-cli/internal/query"
)

func newFiltersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Saved filter commands",
	}
	cmd.AddCommand(newFiltersListCmd(app))
	cmd.AddCommand(newFiltersShowCmd(app))
	cmd.AddCommand(newFiltersRenameCmd(app))
	cmd.AddCommand(newFiltersDeleteCmd(app))
	return cmd
}

func newFiltersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			list := query.NewRegistry(e.prefs).List()
			if tableFormat(app) {
				return format.SavedFiltersTable(cmd.OutOrStdout(), list)
			}
			return writeOut(cmd, app, map[string]any{"data": list})
		},
	}
	return cmd
}

func newFiltersShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <filter-id>",
		Short: "Show a saved filter's state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			f, err := query.NewRegistry(e.prefs).Load(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Println(format.FilterSummary(f))
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": f})
		},
	}
	return cmd
}

func newFiltersRenameCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <filter-id>",
		Short: "Rename a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			if err := query.NewRegistry(e.prefs).Rename(args[0], name); err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("renamed %s\n", args[0])
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "name": name}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New filter name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newFiltersDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <filter-id>",
		Short: "Delete a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			if err := query.NewRegistry(e.prefs).Delete(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if tableFormat(app) {
				cmd.Printf("deleted %s\n", args[0])
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}
