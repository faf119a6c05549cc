package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuidi/subversion/pkg/treeconflict"
)

var optionsCommand = &cobra.Command{
	Use:   "options <path>",
	Short: "List resolution options for the tree conflict at path.",
	Args:  cobra.ExactArgs(1),
	Run:   optionsMain,
}

func optionsMain(command *cobra.Command, arguments []string) {
	engine, _, err := buildEngine()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	conflict, err := engine.OpenConflict(ctx, arguments[0])
	if err != nil {
		fatal(err)
	}

	_, _, treeConflicted := conflict.GetConflicted()
	if !treeConflicted {
		fmt.Println("No open tree conflict at this path.")
		return
	}

	desc, err := conflict.TreeDescription(ctx)
	if err != nil {
		fatal(err)
	}
	fmt.Println(desc)
	fmt.Println()

	var registry treeconflict.OptionRegistry
	for _, opt := range registry.ForTree(conflict) {
		ok, werr := opt.WouldSucceed(ctx)
		status := "ready"
		if !ok {
			status = fmt.Sprintf("blocked: %v", werr)
		}
		fmt.Printf("[%d] %-36s %-60s (%s)\n", opt.ID, opt.ShortLabel(), opt.Description(), status)
	}
}
