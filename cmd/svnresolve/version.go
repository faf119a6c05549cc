package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags; it defaults to "dev" for
// local, non-release builds.
var version = "dev"

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information.",
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println(version)
	},
}
