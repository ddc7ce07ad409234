package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"satchel-cli/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Println("Topics:")
				for _, t := range docs.Topics() {
					cmd.Printf("  %s\n", t)
				}
				cmd.Println("\nRun `satchel docs <topic>` to read one.")
				return nil
			}

			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic %q (see `satchel docs`)", args[0]))
			}
			if plain {
				cmd.Print(md)
				return nil
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(80),
			)
			if err != nil {
				cmd.Print(md)
				return nil
			}
			out, err := r.Render(md)
			if err != nil {
				cmd.Print(md)
				return nil
			}
			cmd.Print(strings.TrimRight(out, "\n") + "\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown without terminal styling")
	return cmd
}
