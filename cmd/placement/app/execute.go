package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/placement/cmd/placement/cmd/company"
	"github.com/agentstation/placement/cmd/placement/cmd/drive"
	"github.com/agentstation/placement/cmd/placement/cmd/job"
	"github.com/agentstation/placement/cmd/placement/cmd/publish"
	"github.com/agentstation/placement/cmd/placement/cmd/requirement"
	"github.com/agentstation/placement/cmd/placement/cmd/serve"
	"github.com/agentstation/placement/cmd/placement/cmd/students"
	"github.com/agentstation/placement/internal/cmd/output"
)

// Execute runs the placement CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "placement",
		Short:   "Placement drive management CLI",
		Version: a.version,
		Long: `Placement manages campus recruitment drives on a PMS backend: the
companies taking part, the jobs they offer, each job's eligibility
requirement and the lists of students a drive is published to.

Run "placement serve" for an in-memory backend to work against.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.placement.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml, wide, markdown")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.APIURL, "api-url", a.config.APIURL, "PMS backend URL")
	rootCmd.PersistentFlags().StringVar(&a.config.APIKey, "api-key", a.config.APIKey, "PMS backend API key")

	rootCmd.SetVersionTemplate("placement {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	parsed, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	a.config.UpdateFromFlags(verbose, quiet, noColor, string(parsed), logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(drive.NewCommand(a))
	rootCmd.AddCommand(company.NewCommand(a))
	rootCmd.AddCommand(job.NewCommand(a))
	rootCmd.AddCommand(requirement.NewCommand(a))
	rootCmd.AddCommand(students.NewCommand(a))
	rootCmd.AddCommand(publish.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("placement %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
