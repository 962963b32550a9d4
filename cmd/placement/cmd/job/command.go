// Package job provides the commands that add, edit and delete the jobs of
// a drive.
package job

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/cmd/cmdutil"
	"github.com/agentstation/placement/internal/cmd/output"
	"github.com/agentstation/placement/pkg/drives"
)

// NewCommand creates the job command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job",
		GroupID: "core",
		Short:   "Manage the jobs companies offer in a drive",
		Example: `  placement job add 66f1c2 66f1d9 --title "Software Engineer" --experience 0 --salary 600000
  placement job update 66f1c2 66f1e4 --loc Kochi
  placement job delete 66f1c2 66f1e4`,
	}

	cmd.AddCommand(newAddCommand(app))
	cmd.AddCommand(newUpdateCommand(app))
	cmd.AddCommand(newDeleteCommand(app))

	return cmd
}

func newAddCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.JobFlags
	cmd := &cobra.Command{
		Use:   "add <drive-id> <company-id>",
		Short: "Add a job for a company attached to the drive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := flags.Job(cmd)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			s, err := client.Drive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			created, err := s.AddJob(cmd.Context(), args[1], j)
			if err != nil {
				return err
			}
			return render(cmd, app, created)
		},
	}
	flags = cmdutil.AddJobFlags(cmd)
	return cmd
}

func newUpdateCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.JobFlags
	cmd := &cobra.Command{
		Use:   "update <drive-id> <job-id>",
		Short: "Update the job fields given as flags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.Patch(cmd)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			s, err := client.Drive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := s.UpdateJob(cmd.Context(), args[1], patch)
			if err != nil {
				return err
			}
			return render(cmd, app, updated)
		},
	}
	flags = cmdutil.AddJobFlags(cmd)
	return cmd
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <drive-id> <job-id>",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			s, err := client.Drive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteJob(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s deleted\n", args[1])
			return nil
		},
	}
}

func render(cmd *cobra.Command, app appcontext.Interface, j drives.Job) error {
	view := output.Data{
		Headers: []string{"ID", "Company", "Title", "Experience", "Progress"},
		Rows: [][]string{{
			j.ID, j.Company, j.Title, strconv.Itoa(j.Experience),
			fmt.Sprintf("%d%%", drives.JobProgress(j)),
		}},
	}
	return output.Render(cmd.OutOrStdout(), app.OutputFormat(), view, j)
}
