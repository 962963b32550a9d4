// Package drive provides the drive commands.
package drive

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/cmd/cmdutil"
	"github.com/agentstation/placement/internal/cmd/output"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/workflow"
)

// NewCommand creates the drive command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drive",
		GroupID: "core",
		Short:   "Show and edit placement drives",
		Example: `  placement drive show 66f1c2
  placement drive create --title "Campus 2026" --stage Aptitude --stage Interview
  placement drive delete 66f1c2 --yes`,
	}

	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newProgressCommand(app))
	cmd.AddCommand(newReportCommand(app))
	cmd.AddCommand(newCreateCommand(app))
	cmd.AddCommand(newUpdateCommand(app))
	cmd.AddCommand(newDeleteCommand(app))

	return cmd
}

func newShowCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "show <drive-id>",
		Short: "Show a drive with its companies and jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := load(cmd, app, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			format := app.OutputFormat()
			if format == string(output.FormatJSON) || format == string(output.FormatYAML) {
				return output.Render(w, format, output.Data{}, st)
			}

			if err := output.Render(w, format, output.DriveData(*st.Drive, st.DriveProgress), st.Drive); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nCompanies (%d)\n", len(st.Companies))
			if err := output.Render(w, format, output.CompaniesData(st), st.Companies); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nJobs (%d)\n", len(st.Jobs))
			return output.Render(w, format, output.JobsData(st, format == string(output.FormatWide)), st.Jobs)
		},
	}
}

func newProgressCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <drive-id>",
		Short: "Show how complete a drive and its companies and jobs are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := load(cmd, app, args[0])
			if err != nil {
				return err
			}
			raw := map[string]any{
				"drive":     st.DriveProgress,
				"companies": st.CompanyProgress,
				"jobs":      st.JobProgress,
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), output.ProgressData(st), raw)
		},
	}
}

func newReportCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "report <drive-id>",
		Short:   "Write a markdown report of a drive",
		Example: `  placement drive report 66f1c2 > campus-2026.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := load(cmd, app, args[0])
			if err != nil {
				return err
			}
			return output.DriveReport(cmd.OutOrStdout(), st)
		},
	}
}

func newCreateCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.DriveFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := flags.Drive(cmd)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			created, err := client.NewDrive().CreateDrive(cmd.Context(), d)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(),
				output.DriveData(created, drives.DriveProgress(created)), created)
		},
	}
	flags = cmdutil.AddDriveFlags(cmd)
	return cmd
}

func newUpdateCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.DriveFlags
	cmd := &cobra.Command{
		Use:   "update <drive-id>",
		Short: "Update the fields given as flags",
		Long: `Update merges the flags into the stored drive. Fields without a flag,
or with a blank value, keep their current value. --stage replaces the
whole stage list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.Patch(cmd)
			if err != nil {
				return err
			}
			s, err := session(cmd, app, args[0])
			if err != nil {
				return err
			}
			updated, err := s.UpdateDrive(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(),
				output.DriveData(updated, s.State().DriveProgress), updated)
		},
	}
	flags = cmdutil.AddDriveFlags(cmd)
	return cmd
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <drive-id>",
		Short: "Delete a drive with its jobs and company links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete drive %s without --yes", args[0])
			}
			s, err := session(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteDrive(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Drive %s deleted\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

// session loads a drive into a new workflow session.
func session(cmd *cobra.Command, app appcontext.Interface, driveID string) (*workflow.Session, error) {
	client, err := app.Client()
	if err != nil {
		return nil, err
	}
	return client.Drive(cmd.Context(), driveID)
}

func load(cmd *cobra.Command, app appcontext.Interface, driveID string) (workflow.State, error) {
	s, err := session(cmd, app, driveID)
	if err != nil {
		return workflow.State{}, err
	}
	return s.State(), nil
}
