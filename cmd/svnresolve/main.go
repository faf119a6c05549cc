// Command svnresolve drives the tree-conflict resolution engine against a
// scripted repository and working copy, for demonstration and manual
// testing of every entry point in the engine's public surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "svnresolve:", err)
	os.Exit(1)
}

var rootConfiguration struct {
	manifest string
	logLevel string
}

var rootCommand = &cobra.Command{
	Use:   "svnresolve",
	Short: "Inspect and resolve tree conflicts against a scripted working copy.",
	Run: func(command *cobra.Command, arguments []string) {
		command.Help()
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&rootConfiguration.manifest, "manifest", "", "Path to the YAML repository/working-copy manifest")
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "", "Override TREECONFLICT_LOG_LEVEL (disabled, error, warn, info, debug, trace)")
	rootCommand.MarkPersistentFlagRequired("manifest")

	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		listCommand,
		optionsCommand,
		resolveCommand,
		watchCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}
