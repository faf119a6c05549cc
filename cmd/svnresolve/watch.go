package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var watchCommand = &cobra.Command{
	Use:   "watch <root>",
	Short: "Print a summary each time a conflict under root is resolved.",
	Args:  cobra.ExactArgs(1),
	Run:   watchMain,
}

// watchMain long-polls the engine's change tracker instead of re-scanning
// the working copy on a timer, so it only does work when a resolution
// actually occurred.
func watchMain(command *cobra.Command, arguments []string) {
	engine, _, err := buildEngine()
	if err != nil {
		fatal(err)
	}
	defer engine.Close()

	ctx := context.Background()
	root := arguments[0]

	var index uint64
	for {
		index, err = engine.WaitForChange(ctx, index)
		if err != nil {
			fatal(err)
		}
		stats, err := engine.Stats(ctx, root)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("[%d] text=%d prop=%d tree=%d\n", index, stats.TextConflicts, stats.PropConflicts, stats.TreeConflicts)
	}
}
