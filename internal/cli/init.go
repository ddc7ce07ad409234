package cli

import (
	"os"

	"github.com/spf13/cobra"

	"satchel-cli/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var here bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a .satchel workspace in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Discovery walks upward, so running init inside an existing
			// workspace finds the parent. Report that instead of silently
			// reusing it; --here forces a fresh workspace in this directory.
			existing := false
			if app.Dir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return writeErr(cmd, err)
				}
				local := store.DirAt(cwd)
				if found, ok := store.DiscoverDir(cwd); ok && !here {
					app.Dir = found
					existing = found != local
				} else {
					app.Dir = local
				}
			}

			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			if tableFormat(app) {
				if existing {
					cmd.Printf("found existing workspace at %s (pass --here to create one in this directory)\n", e.s.Dir)
				} else {
					cmd.Printf("initialized workspace at %s\n", e.s.Dir)
				}
				return nil
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"dir": e.s.Dir, "existing": existing},
			})
		},
	}

	cmd.Flags().BoolVar(&here, "here", false, "Create a new workspace here even when a parent directory has one")
	return cmd
}
