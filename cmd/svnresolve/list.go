package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCommand = &cobra.Command{
	Use:   "list <root>",
	Short: "Summarize conflicts found under a working copy root.",
	Args:  cobra.ExactArgs(1),
	Run:   listMain,
}

func listMain(command *cobra.Command, arguments []string) {
	engine, _, err := buildEngine()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	stats, err := engine.Stats(ctx, arguments[0])
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Text conflicts: %s\n", humanize.Comma(int64(stats.TextConflicts)))
	fmt.Printf("Property conflicts: %s\n", humanize.Comma(int64(stats.PropConflicts)))
	fmt.Printf("Tree conflicts: %s\n", humanize.Comma(int64(stats.TreeConflicts)))
	for reason, count := range stats.ByLocalReason {
		fmt.Printf("  %s: %s\n", reason, humanize.Comma(int64(count)))
	}
}
