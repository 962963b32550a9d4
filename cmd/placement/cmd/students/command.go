// Package students provides the roster commands.
package students

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/cmd/output"
)

// NewCommand creates the students command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "students",
		GroupID: "core",
		Short:   "Show the student roster",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List students with their academic performance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			roster, err := client.Students(cmd.Context())
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), output.StudentsData(roster), roster)
		},
	})
	return cmd
}
