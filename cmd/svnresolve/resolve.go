package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cuidi/subversion/pkg/treeconflict"
	"github.com/cuidi/subversion/pkg/treeconflict/conflicterr"
)

var resolveCommand = &cobra.Command{
	Use:   "resolve <path> <option-id>",
	Short: "Resolve the tree conflict at path by option id.",
	Args:  cobra.ExactArgs(2),
	Run:   resolveMain,
}

func resolveMain(command *cobra.Command, arguments []string) {
	engine, _, err := buildEngine()
	if err != nil {
		fatal(err)
	}

	id, err := strconv.Atoi(arguments[1])
	if err != nil {
		fatal(fmt.Errorf("option id must be an integer: %w", err))
	}

	ctx := context.Background()
	conflict, err := engine.OpenConflict(ctx, arguments[0])
	if err != nil {
		fatal(err)
	}

	if err := resolveByID(ctx, conflict, treeconflict.OptionID(id)); err != nil {
		fatal(err)
	}
	fmt.Println("resolved")
}

// resolveByID applies the backwards-compatibility aliases, then requires
// the resulting id be one of this conflict's currently enumerated options
// before invoking it (spec section 6, testable property 4).
func resolveByID(ctx context.Context, c *treeconflict.Conflict, id treeconflict.OptionID) error {
	resolved := treeconflict.ResolveAliasID(c, id)

	var registry treeconflict.OptionRegistry
	for _, opt := range registry.ForTree(c) {
		if opt.ID == resolved {
			return opt.Resolve(ctx)
		}
	}
	return conflicterr.NewOptionNotApplicable(int(id))
}
