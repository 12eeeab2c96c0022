package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build targets and their dependencies (all targets by default)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(args)
			if err != nil {
				return err
			}
			opts.Force, _ = cmd.Flags().GetBool("force")
			return c.app.Build(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Ignore recorded file stats and rebuild everything")
	return cmd
}

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [targets...]",
		Short: "List the targets a build would visit, dependencies first",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(args)
			if err != nil {
				return err
			}
			return c.app.Plan(cmd.Context(), opts)
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [targets...]",
		Short: "Rebuild whenever project files change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(args)
			if err != nil {
				return err
			}
			return c.app.Watch(cmd.Context(), opts)
		},
	}
}
