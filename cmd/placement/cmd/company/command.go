// Package company provides the commands that attach, edit and detach the
// companies of a drive.
package company

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/cmd/cmdutil"
	"github.com/agentstation/placement/internal/cmd/output"
	"github.com/agentstation/placement/pkg/drives"
)

// NewCommand creates the company command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "company",
		GroupID: "core",
		Short:   "Manage the companies taking part in a drive",
		Example: `  placement company add 66f1c2 --name Acme --branch Kochi --site acme.example
  placement company remove 66f1c2 66f1d9`,
	}

	cmd.AddCommand(newAddCommand(app))
	cmd.AddCommand(newUpdateCommand(app))
	cmd.AddCommand(newRemoveCommand(app))

	return cmd
}

func newAddCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.CompanyFlags
	cmd := &cobra.Command{
		Use:   "add <drive-id>",
		Short: "Create a company and attach it to a drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.Company(cmd)
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
			created, err := s.AddCompanyToDrive(cmd.Context(), c)
			if err != nil {
				return err
			}
			return render(cmd, app, created)
		},
	}
	flags = cmdutil.AddCompanyFlags(cmd)
	return cmd
}

func newUpdateCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.CompanyFlags
	cmd := &cobra.Command{
		Use:   "update <drive-id> <company-id>",
		Short: "Update the company fields given as flags",
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
			updated, err := s.UpdateCompany(cmd.Context(), args[1], flags.Patch(cmd))
			if err != nil {
				return err
			}
			return render(cmd, app, updated)
		},
	}
	flags = cmdutil.AddCompanyFlags(cmd)
	return cmd
}

func newRemoveCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <drive-id> <company-id>",
		Short: "Detach a company from a drive, deleting its jobs there",
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
			if err := s.RemoveCompanyFromDrive(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Company %s removed from drive %s\n", args[1], args[0])
			return nil
		},
	}
}

func render(cmd *cobra.Command, app appcontext.Interface, c drives.Company) error {
	view := output.Data{
		Headers: []string{"ID", "Name", "Branch", "Site", "Progress"},
		Rows: [][]string{{
			c.ID, c.Name, c.Branch, c.Site,
			fmt.Sprintf("%d%%", drives.CompanyProgress(c)),
		}},
	}
	return output.Render(cmd.OutOrStdout(), app.OutputFormat(), view, c)
}
