package cli

import (
	"github.com/spf13/cobra"

	"satchel-cli/internal/format"
	"satchel-cli/internal/query"
)

func newTagsCmd(app *App) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tag vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.close()

			var tags []string
			if in == "" {
				// Full store vocabulary, including tags on deleted items.
				tags, err = e.db.ListTags(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
			} else {
				scope, err := parseScope(in)
				if err != nil {
					return writeErr(cmd, err)
				}
				items, err := e.db.ListItems(cmd.Context(), scope)
				if err != nil {
					return writeErr(cmd, err)
				}
				tags = query.Vocabulary(items)
			}

			if tableFormat(app) {
				return format.TagsTable(cmd.OutOrStdout(), tags)
			}
			return writeOut(cmd, app, map[string]any{"data": tags})
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Limit to one scope: a space id, or 'overview'")
	return cmd
}
