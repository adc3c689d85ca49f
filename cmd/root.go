// Package cmd implements the somc CLI commands: the thin driver
// described in the CLI collaborator contract (§6.5). One *cobra.Command
// per subcommand, injectable I/O, and a JSON-schema-shaped output
// struct per command.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/somc-project/somc/internal/config"
)

// NewRootCmd creates the root somc command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "somc",
		Short:         "somc - static analyzer and binary compiler for stylesheet rules",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.AddCommand(NewCompileCmd(config.OSFileReader{}))
	root.AddCommand(NewInspectCmd(config.OSFileReader{}))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
