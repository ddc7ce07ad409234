package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"satchel-cli/internal/format"
	"satchel-cli/internal/prefs"
	"satchel-cli/internal/store"
	"satchel-cli/internal/tui"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "satchel",
		Short:        "Satchel knowledge manager CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  satchel

  # Scriptable commands
  satchel items list --type pdf --tag research

  # Filter, keep it for next time
  satchel items list --tag go --sort oldest --save "go backlog"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("SATCHEL_DIR", ""), "Path to the .satchel workspace dir (default: discovered upward from the working directory)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SATCHEL_FORMAT", "table"), "Output format (table|json)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newSpacesCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newFiltersCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// env bundles the per-invocation collaborators every command needs.
type env struct {
	s     store.Store
	db    *store.DB
	prefs *prefs.Prefs
	log   zerolog.Logger
}

func loadEnv(cmd *cobra.Command, app *App) (*env, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
		app.Dir = dir
	}

	s := store.Store{Dir: dir}
	db, err := store.Open(cmd.Context(), s)
	if err != nil {
		return nil, err
	}

	log := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	p := prefs.New(prefs.OpenDiskv(s.PrefsDir()), log)
	return &env{s: s, db: db, prefs: p, log: log}, nil
}

func (e *env) close() {
	_ = e.db.Close()
}

func runTUI(app *App) error {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return err
		}
		dir = d
	}
	return tui.Run(store.Store{Dir: dir})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	cmd.PrintErrln(err.Error())
	return err
}

func tableFormat(app *App) bool {
	return app.Format == "" || app.Format == "table"
}
