// Package commands implements the CLI commands for the busy build tool.
package commands

import (
	"context"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"go.trai.ch/busy/internal/app"
	"go.trai.ch/busy/internal/build"
	"go.trai.ch/busy/internal/core/domain"
)

// CLI represents the command line interface for busy.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	config  string
	jobs    int
	mode    string
	verbose bool
	json    bool
}

// Application represents the application logic interface.
type Application interface {
	ConfigureLogging(verbose, jsonOutput bool)
	Build(ctx context.Context, opts app.BuildOptions) error
	Plan(ctx context.Context, opts app.BuildOptions) error
	Watch(ctx context.Context, opts app.BuildOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "busy",
		Short:         "An incremental build orchestrator for C and C++ projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.ConfigureLogging(c.verbose, c.json)
		},
	}
	rootCmd.SetVersionTemplate(build.String() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.config, "config", "c", domain.ConfigFileName, "Path to busy.yaml or a directory inside the project")
	flags.IntVarP(&c.jobs, "jobs", "j", runtime.NumCPU(), "Number of parallel jobs")
	flags.StringVarP(&c.mode, "mode", "m", string(domain.ModeDebug), "Build mode: debug, release or release_with_symbols")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log every spawned command")
	flags.BoolVar(&c.json, "json", false, "Log in JSON format")

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// buildOptions collects the persistent flags shared by build, plan and watch.
func (c *CLI) buildOptions(targets []string) (app.BuildOptions, error) {
	mode, err := domain.ParseBuildMode(c.mode)
	if err != nil {
		return app.BuildOptions{}, err
	}
	return app.BuildOptions{
		Config:  c.config,
		Targets: targets,
		Mode:    mode,
		Jobs:    c.jobs,
	}, nil
}
