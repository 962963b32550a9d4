// Package publish provides the command that publishes a drive's eligible
// students.
package publish

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/appcontext"
	"github.com/agentstation/placement/internal/cmd/output"
	"github.com/agentstation/placement/pkg/errors"
	pub "github.com/agentstation/placement/pkg/publish"
)

// NewCommand creates the publish command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		add    []string
		remove []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "publish <drive-id>",
		GroupID: "core",
		Short:   "Publish the eligible students of every job in a drive",
		Long: `Publish loads the students the backend reports as eligible for each job
of the drive, applies the --add and --remove edits on top and sends the
result. Every job is included, with an empty list when nobody is eligible.

Edits are given as job=student pairs.`,
		Example: `  placement publish 66f1c2
  placement publish 66f1c2 --add 66f1e4=s17 --remove 66f1e4=s03 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adds, err := parsePairs("add", add)
			if err != nil {
				return err
			}
			removes, err := parsePairs("remove", remove)
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			s, err := client.Publish(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Prefetch(cmd.Context()); err != nil {
				return err
			}
			if err := apply(s, adds, removes); err != nil {
				return err
			}

			final := s.Finalize()
			if !dryRun {
				if final, err = s.Commit(cmd.Context()); err != nil {
					return err
				}
			}

			if err := output.Render(cmd.OutOrStdout(), app.OutputFormat(), output.PublishData(s.Jobs(), final), final); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.ErrOrStderr(), "Dry run: nothing was published")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&add, "add", nil, "Add a student to a job (job=student, repeatable)")
	cmd.Flags().StringArrayVar(&remove, "remove", nil, "Remove a student from a job (job=student, repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be published without sending it")

	return cmd
}

type pair struct {
	job     string
	student string
}

func parsePairs(flag string, values []string) ([]pair, error) {
	pairs := make([]pair, 0, len(values))
	for _, v := range values {
		job, student, ok := strings.Cut(v, "=")
		if !ok || job == "" || student == "" {
			return nil, errors.NewValidationError(flag, v, "must be job=student")
		}
		pairs = append(pairs, pair{job: job, student: student})
	}
	return pairs, nil
}

// apply runs removals after additions so a pair given to both flags ends
// up removed.
func apply(s *pub.Session, adds, removes []pair) error {
	for _, p := range adds {
		if err := s.Add(p.job, p.student); err != nil {
			return err
		}
	}
	for _, p := range removes {
		if err := s.Remove(p.job, p.student); err != nil {
			return err
		}
	}
	return nil
}
