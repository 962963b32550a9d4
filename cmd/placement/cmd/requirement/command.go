// Package requirement provides the command that sets a job's eligibility
// requirement.
package requirement

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/cmd/cmdutil"
	"github.com/agentstation/placement/internal/cmd/output"
	"github.com/agentstation/placement/pkg/drives"
)

// NewCommand creates the requirement command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requirement",
		GroupID: "core",
		Short:   "Manage job eligibility requirements",
	}
	cmd.AddCommand(newSetCommand(app))
	return cmd
}

func newSetCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.RequirementFlags
	cmd := &cobra.Command{
		Use:   "set <drive-id> <job-id>",
		Short: "Create or update the requirement of a job",
		Long: `Set creates the job's requirement when it has none and otherwise merges
the flags into the existing one. Fields without a flag keep their value.`,
		Example: `  placement requirement set 66f1c2 66f1e4 --degree-cgpa 7 --mca-cgpa 6.5,6.5 --skill go`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			s, err := client.Drive(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req, err := s.AddOrUpdateRequirement(cmd.Context(), args[1], flags.Patch(cmd))
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), view(req), req)
		},
	}
	flags = cmdutil.AddRequirementFlags(cmd)
	return cmd
}

func view(r drives.Requirement) output.Data {
	mca := make([]string, len(r.MCACGPA))
	for i, v := range r.MCACGPA {
		mca[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return output.Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", r.ID},
			{"Job", r.Job},
			{"Experience", strconv.Itoa(r.ExperienceRequired)},
			{"SSLC CGPA", number(r.SSLCCGPA)},
			{"Plus Two CGPA", number(r.PlusTwoCGPA)},
			{"Degree CGPA", number(r.DegreeCGPA)},
			{"MCA CGPA", strings.Join(mca, ", ")},
			{"Contract", number(r.Contract)},
			{"Skills", strings.Join(r.SkillsRequired, ", ")},
		},
	}
}

func number(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
